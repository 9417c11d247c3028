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


package declass

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/declass/ai"
	"github.com/poiesic/declass/ai/openai"
	"github.com/poiesic/declass/catalog"
	"github.com/poiesic/declass/config"
	"github.com/poiesic/declass/fetch"
	"github.com/poiesic/declass/ledger"
	ledgerbadger "github.com/poiesic/declass/ledger/badger"
	"github.com/poiesic/declass/objectstore"
	"github.com/poiesic/declass/objectstore/minio"
	"github.com/poiesic/declass/objectstore/s3"
	"github.com/poiesic/declass/pipeline"
	"github.com/poiesic/declass/rag"
)

// Archive wires the scraping and mirroring components from a settings file.
// Open builds the fetcher and lister; OpenMirror additionally opens the
// object store and the ledger.
type Archive struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher
	lister  *catalog.Lister
	store   objectstore.Store
	ledger  ledger.Ledger
	logger  *slog.Logger
}

// Open wires the components every command needs: the retrying fetcher and
// the catalog lister.
func Open(cfg *config.Config) (*Archive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy := fetch.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay(),
		MaxDelay:     cfg.Retry.MaxDelay(),
		Multiplier:   cfg.Retry.BackoffMultiplier,
		Jitter:       cfg.Retry.Jitter,
	}

	fetcher := fetch.NewFetcher(policy,
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithRateLimit(cfg.Fetch.RequestsPerSec),
		fetch.WithMaxBodyBytes(int64(cfg.Fetch.MaxBodyMB)<<20),
	)

	listerOpts := []catalog.ListerOption{
		catalog.WithPageParam(cfg.Catalog.PageParam),
		catalog.WithMaxPages(cfg.Catalog.MaxPages),
	}
	if cfg.Catalog.BaseURL != "" {
		listerOpts = append(listerOpts, catalog.WithBaseURL(cfg.Catalog.BaseURL))
	}

	lister, err := catalog.NewLister(fetcher, cfg.Catalog.URL, listerOpts...)
	if err != nil {
		return nil, err
	}

	return &Archive{
		cfg:     cfg,
		fetcher: fetcher,
		lister:  lister,
		logger:  slog.Default(),
	}, nil
}

// OpenMirror wires everything Open does plus the object store and the
// mirror ledger.
func OpenMirror(ctx context.Context, cfg *config.Config) (*Archive, error) {
	if err := cfg.ValidateMirror(); err != nil {
		return nil, err
	}

	a, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	ldg, err := ledgerbadger.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}

	a.store = store
	a.ledger = ldg
	return a, nil
}

// newStore picks the object-store backend from the settings file.
func newStore(ctx context.Context, cfg config.ObjectStoreConfig) (objectstore.Store, error) {
	switch cfg.Backend {
	case "s3":
		return s3.NewFromConfig(ctx, cfg)
	case "minio":
		return minio.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Backend)
	}
}

// Fetcher returns the shared document fetcher.
func (a *Archive) Fetcher() *fetch.Fetcher {
	return a.fetcher
}

// Lister returns the catalog lister.
func (a *Archive) Lister() *catalog.Lister {
	return a.lister
}

// Ledger returns the mirror ledger, or nil when opened without OpenMirror.
func (a *Archive) Ledger() ledger.Ledger {
	return a.ledger
}

// Store returns the object store, or nil when opened without OpenMirror.
func (a *Archive) Store() objectstore.Store {
	return a.store
}

// NewPipeline creates a mirror pipeline over the archive's fetcher, store,
// and ledger. Requires OpenMirror.
func (a *Archive) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(a.fetcher, a.store, a.ledger, a.cfg.ObjectStore.Prefix, opts...)
}

// Close releases the ledger. Safe to call on an Archive opened with Open.
func (a *Archive) Close() error {
	if a.ledger == nil {
		return nil
	}
	if err := a.ledger.Close(); err != nil {
		a.logger.Error("error closing ledger", "err", err)
		return err
	}
	return nil
}

// Retrieval bundles the rag client with the AI provider whose lifecycle it
// depends on.
type Retrieval struct {
	client   *rag.Client
	provider ai.Provider
}

// NewRetrieval wires the retrieval client from the settings file: the
// external index plus the hosted completion (and optionally embedding)
// services.
func NewRetrieval(cfg *config.Config, opts ...rag.ClientOption) (*Retrieval, error) {
	if err := cfg.ValidateRetrieval(); err != nil {
		return nil, err
	}

	// Unset fields keep the ai package defaults.
	var aiOpts []ai.ConfigOption
	if cfg.AI.EmbeddingHost != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingHost(cfg.AI.EmbeddingHost))
	}
	if cfg.AI.EmbeddingModel != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(cfg.AI.EmbeddingModel))
	}
	if cfg.AI.CompletionHost != "" {
		aiOpts = append(aiOpts, ai.WithCompletionHost(cfg.AI.CompletionHost))
	}
	if cfg.AI.CompletionModel != "" {
		aiOpts = append(aiOpts, ai.WithCompletionModel(cfg.AI.CompletionModel))
	}
	if cfg.AI.APIKey != "" {
		aiOpts = append(aiOpts, ai.WithAPIKey(cfg.AI.APIKey))
	}
	aiCfg := ai.NewConfig(aiOpts...)

	provider, err := openai.NewProvider(aiCfg)
	if err != nil {
		return nil, err
	}

	var indexOpts []rag.HTTPIndexOption
	if cfg.Index.Name != "" {
		indexOpts = append(indexOpts, rag.WithIndexName(cfg.Index.Name))
	}
	index := rag.NewHTTPIndex(cfg.Index.Host, cfg.Index.APIKey, indexOpts...)

	// A configured embedding model means the index expects client-side
	// query vectors; callers can still override via opts.
	clientOpts := opts
	if cfg.AI.EmbeddingModel != "" {
		clientOpts = append([]rag.ClientOption{
			rag.WithEmbedder(provider.Embedder()),
		}, opts...)
	}

	client, err := rag.NewClient(index, provider.Completer(), clientOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &Retrieval{client: client, provider: provider}, nil
}

// Ask answers a question over the external index.
func (r *Retrieval) Ask(ctx context.Context, question string) (*rag.Answer, error) {
	return r.client.Ask(ctx, question)
}

// Close releases the AI provider.
func (r *Retrieval) Close() error {
	return r.provider.Close()
}
