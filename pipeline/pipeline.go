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


package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/declass/core"
	"github.com/poiesic/declass/ledger"
	"github.com/poiesic/declass/objectstore"
)

// Object metadata keys recorded on every uploaded document.
const (
	metaSourceURL = "source-url"
	metaFetchDate = "fetch-date"
)

// defaultWorkers bounds concurrent downloads against the archive host.
const defaultWorkers = 5

// Downloader fetches document bytes and remote sizes.
// fetch.Fetcher satisfies this.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Head(ctx context.Context, url string) (int64, error)
}

// Pipeline mirrors records into an object store and tracks outcomes in a
// ledger.
type Pipeline struct {
	downloader Downloader
	store      objectstore.Store
	ledger     ledger.Ledger
	pool       *ants.Pool
	prefix     string
	logger     *slog.Logger

	mu      sync.Mutex
	summary core.RunSummary
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the worker pool size for concurrent mirroring.
// Default is 5.
func WithWorkers(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline creates a mirror pipeline. prefix is prepended to every
// object key.
func NewPipeline(downloader Downloader, store objectstore.Store, ldg ledger.Ledger, prefix string, opts ...Option) (*Pipeline, error) {
	if downloader == nil {
		return nil, ErrDownloaderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if ldg == nil {
		return nil, ErrLedgerRequired
	}

	pool, err := ants.NewPool(defaultWorkers)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		downloader: downloader,
		store:      store,
		ledger:     ldg,
		pool:       pool,
		prefix:     prefix,
		logger:     slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run mirrors every record in the sequence and returns the run summary.
// Per-record failures are recorded in the ledger and counted; they never
// abort the run. Errors yielded by the sequence itself (failed catalog
// pages) are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, records iter.Seq2[core.Record, error]) (core.RunSummary, error) {
	p.mu.Lock()
	p.summary = core.RunSummary{}
	p.mu.Unlock()

	var wg sync.WaitGroup
	for record, err := range records {
		if err != nil {
			p.logger.Warn("skipping catalog element", "err", err)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		p.mu.Lock()
		p.summary.Listed++
		p.mu.Unlock()

		wg.Add(1)
		rec := record
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.mirrorOne(ctx, rec)
		})
		if submitErr != nil {
			wg.Done()
			p.recordFailure(ctx, rec, 0, submitErr)
		}
	}
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary, ctx.Err()
}

// mirrorOne fetches and uploads a single record, recording the outcome.
func (p *Pipeline) mirrorOne(ctx context.Context, record core.Record) {
	if err := core.ValidateRecord(&record); err != nil {
		p.recordFailure(ctx, record, 0, err)
		return
	}

	key := record.ObjectKey(p.prefix)

	// Size-match skip: an already stored object of the same size as the
	// remote document counts as mirrored.
	remoteSize, headErr := p.downloader.Head(ctx, record.URL)
	if headErr == nil && remoteSize > 0 {
		info, statErr := p.store.Stat(ctx, key)
		if statErr == nil && info.Size == remoteSize {
			p.recordSkip(ctx, record, key, info.Size)
			return
		}
	}

	body, err := p.downloader.Fetch(ctx, record.URL)
	if err != nil {
		p.recordFailure(ctx, record, 0, err)
		return
	}

	opts := objectstore.PutOptions{
		ContentType: objectstore.ContentTypeFor(key),
		Metadata: map[string]string{
			metaSourceURL: record.URL,
			metaFetchDate: time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := p.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), opts); err != nil {
		p.recordFailure(ctx, record, 0, fmt.Errorf("upload failed: %w", err))
		return
	}

	p.recordUpload(ctx, record, key, int64(len(body)))
}

func (p *Pipeline) recordUpload(ctx context.Context, record core.Record, key string, size int64) {
	p.mu.Lock()
	p.summary.Uploaded++
	p.summary.Bytes += size
	p.mu.Unlock()

	p.logger.Info("uploaded document", "identifier", record.Identifier, "key", key, "bytes", size)
	p.putEntry(ctx, record, key, core.MirrorStatusUploaded, size, nil)
}

func (p *Pipeline) recordSkip(ctx context.Context, record core.Record, key string, size int64) {
	p.mu.Lock()
	p.summary.Skipped++
	p.mu.Unlock()

	p.logger.Debug("object up to date, skipping", "identifier", record.Identifier, "key", key)
	p.putEntry(ctx, record, key, core.MirrorStatusSkipped, size, nil)
}

func (p *Pipeline) recordFailure(ctx context.Context, record core.Record, size int64, cause error) {
	p.mu.Lock()
	p.summary.Failed++
	p.mu.Unlock()

	p.logger.Warn("failed to mirror record", "identifier", record.Identifier, "url", record.URL, "err", cause)
	p.putEntry(ctx, record, record.ObjectKey(p.prefix), core.MirrorStatusFailed, size, cause)
}

// putEntry writes the ledger row for a record, carrying the attempt count
// forward from any previous run.
func (p *Pipeline) putEntry(ctx context.Context, record core.Record, key string, status core.MirrorStatus, size int64, cause error) {
	attempts := 1
	if prev, err := p.ledger.GetEntry(ctx, record.Id); err == nil {
		attempts = prev.Attempts + 1
	}

	entry := &core.MirrorEntry{
		RecordId:   record.Id,
		Identifier: record.Identifier,
		URL:        record.URL,
		ObjectKey:  key,
		Status:     status,
		Size:       size,
		Attempts:   attempts,
		UpdatedAt:  time.Now().UTC(),
	}
	if cause != nil {
		entry.LastError = cause.Error()
	}

	if err := p.ledger.PutEntry(ctx, entry); err != nil {
		p.logger.Error("failed to write ledger entry", "identifier", record.Identifier, "err", err)
	}
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
