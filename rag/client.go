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
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/declass/ai"
)

// defaultTopK bounds retrieval when the caller does not specify a limit.
const defaultTopK = 8

// Citation points an answer back at a mirrored source document.
type Citation struct {
	Filename  string
	SourceURL string
	Score     float32
}

// Answer is the result of one retrieval question.
type Answer struct {
	Text      string
	Citations []Citation
}

// Client answers natural-language questions over the external index. One
// question costs one index search and one completion call; when a query
// embedder is configured, one embedding call is added for vector-only
// indexes.
type Client struct {
	index     Index
	completer ai.Completer
	embedder  ai.Embedder
	topK      int
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTopK sets how many elements are retrieved per question.
// Default is 8.
func WithTopK(k int) ClientOption {
	return func(c *Client) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithEmbedder enables client-side query embeddings for indexes that only
// accept vectors. Without it, the question text is sent as-is.
func WithEmbedder(embedder ai.Embedder) ClientOption {
	return func(c *Client) {
		c.embedder = embedder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a retrieval client over the given index and completer.
func NewClient(index Index, completer ai.Completer, opts ...ClientOption) (*Client, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	c := &Client{
		index:     index,
		completer: completer,
		topK:      defaultTopK,
		logger:    slog.Default().With("component", "rag"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EmbedsQueries reports whether Ask embeds the question client-side before
// searching. Callers can use it to predict the per-question call count.
func (c *Client) EmbedsQueries() bool {
	return c.embedder != nil
}

// Ask retrieves the top elements for the question, builds a prompt carrying
// their text and provenance, and returns the model's answer with citations.
// Returns ErrNoResults when the index has nothing relevant.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	query := Query{Text: question, TopK: c.topK}
	if c.embedder != nil {
		vector, err := c.embedder.EmbedText(ctx, question)
		if err != nil {
			c.logger.Error("failed to embed question", "err", err)
			return nil, err
		}
		query.Vector = vector
	}

	elements, err := c.index.Search(ctx, query)
	if err != nil {
		c.logger.Error("index search failed", "err", err)
		return nil, err
	}
	if len(elements) == 0 {
		return nil, ErrNoResults
	}

	prompt := BuildPrompt(question, elements)
	text, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		c.logger.Error("completion failed", "err", err)
		return nil, err
	}

	citations := make([]Citation, 0, len(elements))
	seen := make(map[string]bool)
	for _, e := range elements {
		if seen[e.Filename] {
			continue
		}
		seen[e.Filename] = true
		citations = append(citations, Citation{
			Filename:  e.Filename,
			SourceURL: e.SourceURL,
			Score:     e.Score,
		})
	}

	return &Answer{Text: text, Citations: citations}, nil
}
