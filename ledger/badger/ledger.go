// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/declass/core"
	"github.com/poiesic/declass/ledger"
)

// Ledger is the BadgerDB implementation of ledger.Ledger.
type Ledger struct {
	backend *Backend
}

var _ ledger.Ledger = (*Ledger)(nil)

// NewLedger creates a ledger on top of an open backend.
func NewLedger(backend *Backend) *Ledger {
	return &Ledger{backend: backend}
}

// Open opens (or creates) a ledger at path.
func Open(path string) (*Ledger, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger at %s: %w", path, err)
	}
	return NewLedger(backend), nil
}

// PutEntry inserts or replaces the entry for a record.
func (l *Ledger) PutEntry(ctx context.Context, entry *core.MirrorEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.backend.IsClosed() {
		return ledger.ErrLedgerClosed
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	data := ledger.MarshalMirrorEntry(entry)
	return l.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(entryKey(entry.RecordId), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves the entry for a record ID.
func (l *Ledger) GetEntry(ctx context.Context, id core.ID) (*core.MirrorEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.backend.IsClosed() {
		return nil, ledger.ErrLedgerClosed
	}

	var entry *core.MirrorEntry
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(entryKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ledger.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = ledger.UnmarshalMirrorEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries returns every entry in the ledger in record ID order.
func (l *Ledger) Entries(ctx context.Context) ([]*core.MirrorEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.backend.IsClosed() {
		return nil, ledger.ErrLedgerClosed
	}

	var entries []*core.MirrorEntry
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := ledger.UnmarshalMirrorEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary aggregates entry statuses into run counts.
func (l *Ledger) Summary(ctx context.Context) (core.RunSummary, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return core.RunSummary{}, err
	}

	summary := core.RunSummary{Listed: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case core.MirrorStatusUploaded:
			summary.Uploaded++
			summary.Bytes += entry.Size
		case core.MirrorStatusSkipped:
			summary.Skipped++
		case core.MirrorStatusFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

// Close closes the underlying backend.
func (l *Ledger) Close() error {
	if l.backend.IsClosed() {
		return nil
	}
	return l.backend.Close()
}
