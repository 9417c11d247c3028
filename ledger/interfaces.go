package ledger

import (
	"context"

	"github.com/poiesic/declass/core"
)

// Ledger records the mirror outcome for every catalog record. It is what
// makes re-runs idempotent: entries survive across runs, keyed by the
// record's content-derived ID. Implementations must be thread-safe.
type Ledger interface {
	// PutEntry inserts or replaces the entry for a record.
	// Sets UpdatedAt if not already set.
	PutEntry(ctx context.Context, entry *core.MirrorEntry) error

	// GetEntry retrieves the entry for a record ID.
	// Returns ErrNotFound if no entry exists.
	GetEntry(ctx context.Context, id core.ID) (*core.MirrorEntry, error)

	// Entries returns every entry in the ledger in key order.
	Entries(ctx context.Context) ([]*core.MirrorEntry, error)

	// Summary aggregates entry statuses into run counts.
	Summary(ctx context.Context) (core.RunSummary, error)

	// Close closes the underlying storage and releases resources.
	Close() error
}
