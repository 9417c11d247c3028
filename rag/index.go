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


package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/declass/core"
)

// Query is one request against the external index.
type Query struct {
	// Text is the natural-language question.
	Text string
	// Vector optionally carries a client-side query embedding for indexes
	// that only accept vectors.
	Vector []float32
	// TopK bounds how many elements the index returns.
	TopK int
}

// Index is the external search service holding processed elements derived
// from mirrored documents. This repository never writes to it.
type Index interface {
	// Search returns the top elements for the query, most relevant first.
	Search(ctx context.Context, query Query) ([]core.ProcessedElement, error)
}

// HTTPIndex queries a JSON-over-HTTP index endpoint.
type HTTPIndex struct {
	endpoint string
	apiKey   string
	name     string
	client   *http.Client
	logger   *slog.Logger
}

// HTTPIndexOption configures an HTTPIndex.
type HTTPIndexOption func(*HTTPIndex)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPIndexOption {
	return func(i *HTTPIndex) {
		if client != nil {
			i.client = client
		}
	}
}

// WithIndexName selects a named index on services that host several.
// Default is the service's default index.
func WithIndexName(name string) HTTPIndexOption {
	return func(i *HTTPIndex) {
		i.name = name
	}
}

// WithIndexLogger sets a custom logger.
// Default is slog.Default().
func WithIndexLogger(logger *slog.Logger) HTTPIndexOption {
	return func(i *HTTPIndex) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewHTTPIndex creates an index client for the given endpoint. apiKey may be
// empty for unauthenticated indexes.
func NewHTTPIndex(endpoint, apiKey string, opts ...HTTPIndexOption) *HTTPIndex {
	i := &HTTPIndex{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default().With("component", "index"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// searchRequest is the wire format for the index search endpoint.
type searchRequest struct {
	Query  string    `json:"query"`
	Vector []float32 `json:"vector,omitempty"`
	TopK   int       `json:"top_k"`
	Index  string    `json:"index,omitempty"`
}

type searchResponse struct {
	Elements []elementView `json:"elements"`
}

type elementView struct {
	ElementID string   `json:"element_id"`
	Text      string   `json:"text"`
	Type      string   `json:"type"`
	Filename  string   `json:"filename"`
	SourceURL string   `json:"source_url"`
	Entities  []string `json:"entities"`
	Score     float32  `json:"score"`
}

// Search posts the query to the index and decodes the matching elements.
func (i *HTTPIndex) Search(ctx context.Context, query Query) ([]core.ProcessedElement, error) {
	payload, err := json.Marshal(searchRequest{
		Query:  query.Text,
		Vector: query.Vector,
		TopK:   query.TopK,
		Index:  i.name,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		i.endpoint+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if i.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+i.apiKey)
	}

	start := time.Now()
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s",
			ErrIndexUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrIndexUnavailable, err)
	}

	elements := make([]core.ProcessedElement, len(decoded.Elements))
	for n, e := range decoded.Elements {
		elements[n] = core.ProcessedElement{
			ElementId: e.ElementID,
			Text:      e.Text,
			Type:      e.Type,
			Filename:  e.Filename,
			SourceURL: e.SourceURL,
			Entities:  e.Entities,
			Score:     e.Score,
		}
	}

	i.logger.Debug("index search complete",
		"hits", len(elements), "duration", time.Since(start))

	return elements, nil
}

var _ Index = (*HTTPIndex)(nil)
