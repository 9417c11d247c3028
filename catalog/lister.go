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


package catalog

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/url"

	"github.com/poiesic/declass/core"
)

// PageFetcher retrieves one catalog page. *fetch.Fetcher satisfies this;
// tests substitute fakes.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Lister enumerates records from a paginated public catalog. Pages are
// fetched on demand, so downstream stages can start before the full walk
// finishes.
type Lister struct {
	fetcher     PageFetcher
	baseURL     *url.URL
	linkBase    *url.URL
	linkBaseRaw string
	pageParam   string
	maxPages    int
	logger      *slog.Logger
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithMaxPages caps the pagination walk. Default is 100.
func WithMaxPages(n int) ListerOption {
	return func(l *Lister) {
		if n > 0 {
			l.maxPages = n
		}
	}
}

// WithBaseURL overrides the base against which relative document links are
// resolved. Pagination still walks the catalog URL. Default is the catalog
// URL itself.
func WithBaseURL(base string) ListerOption {
	return func(l *Lister) {
		if base != "" {
			l.linkBaseRaw = base
		}
	}
}

// WithPageParam sets the query parameter that drives pagination.
// Default is "page".
func WithPageParam(param string) ListerOption {
	return func(l *Lister) {
		if param != "" {
			l.pageParam = param
		}
	}
}

// WithListerLogger sets a custom logger.
// Default is slog.Default().
func WithListerLogger(logger *slog.Logger) ListerOption {
	return func(l *Lister) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLister creates a lister for the catalog rooted at catalogURL.
func NewLister(fetcher PageFetcher, catalogURL string, opts ...ListerOption) (*Lister, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	base, err := url.Parse(catalogURL)
	if err != nil || !core.IsValidURL(catalogURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, catalogURL)
	}

	l := &Lister{
		fetcher:   fetcher,
		baseURL:   base,
		pageParam: "page",
		maxPages:  100,
		logger:    slog.Default().With("component", "lister"),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.linkBase = base
	if l.linkBaseRaw != "" {
		linkBase, err := url.Parse(l.linkBaseRaw)
		if err != nil || !core.IsValidURL(l.linkBaseRaw) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, l.linkBaseRaw)
		}
		l.linkBase = linkBase
	}
	return l, nil
}

// Records returns a lazy, finite sequence of catalog records.
//
// Pagination walks page 0, 1, 2, ... until an empty page, the page cap, or
// context cancellation. A page that still fails after the fetcher's retries
// is reported as a single error element and the walk continues with the
// next page; per-page failures never abort the run.
func (l *Lister) Records(ctx context.Context) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		for page := 0; page < l.maxPages; page++ {
			if ctx.Err() != nil {
				yield(core.Record{}, ctx.Err())
				return
			}

			pageURL := l.pageURL(page)
			body, err := l.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				l.logger.Warn("catalog page failed, continuing",
					"page", page, "url", pageURL, "err", err)
				if !yield(core.Record{}, fmt.Errorf("%w: page %d: %w", ErrPageFailed, page, err)) {
					return
				}
				continue
			}

			records, err := ParsePage(bytes.NewReader(body), l.linkBase)
			if err != nil {
				l.logger.Warn("catalog page unparseable, continuing",
					"page", page, "url", pageURL, "err", err)
				if !yield(core.Record{}, fmt.Errorf("%w: page %d: %w", ErrPageFailed, page, err)) {
					return
				}
				continue
			}

			if len(records) == 0 {
				l.logger.Debug("empty catalog page, stopping pagination", "page", page)
				return
			}

			l.logger.Info("listed catalog page", "page", page, "records", len(records))
			for _, record := range records {
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

// ListAll drains Records into a slice, separating successes from page
// errors. The record slice is complete on a best-effort basis even when
// some pages failed.
func (l *Lister) ListAll(ctx context.Context) ([]core.Record, []error) {
	var records []core.Record
	var errs []error
	for record, err := range l.Records(ctx) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}
	return records, errs
}

// pageURL builds the URL for a zero-based page index. Page zero is the
// catalog URL itself.
func (l *Lister) pageURL(page int) string {
	if page == 0 {
		return l.baseURL.String()
	}
	u := *l.baseURL
	q := u.Query()
	q.Set(l.pageParam, fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}
