package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/declass/ai/mock"
	"github.com/poiesic/declass/core"
)

// stubIndex returns canned elements and records the queries it saw.
type stubIndex struct {
	elements []core.ProcessedElement
	err      error
	queries  []Query
}

func (s *stubIndex) Search(_ context.Context, query Query) ([]core.ProcessedElement, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.elements, nil
}

func TestNewClient_Validation(t *testing.T) {
	completer := mock.NewMockCompleter("ok")

	_, err := NewClient(nil, completer)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewClient(&stubIndex{}, nil)
	assert.ErrorIs(t, err, ErrCompleterRequired)
}

func TestAsk_GaltSafeDepositBox(t *testing.T) {
	index := &stubIndex{elements: []core.ProcessedElement{
		{
			ElementId: "el-1",
			Text:      "The subject rented Safe Deposit Box No. 5517 at the Bank of Commerce under the name Eric S. Galt.",
			Type:      "NarrativeText",
			Filename:  "104-10001-10002.pdf",
			SourceURL: "https://archive.example.org/docs/104-10001-10002.pdf",
			Entities:  []string{"Eric S. Galt", "Bank of Commerce"},
			Score:     0.91,
		},
		{
			ElementId: "el-2",
			Text:      "Records show the box was opened twice in March 1968.",
			Type:      "NarrativeText",
			Filename:  "104-10001-10088.pdf",
			SourceURL: "https://archive.example.org/docs/104-10001-10088.pdf",
			Score:     0.74,
		},
	}}
	completer := mock.NewMockCompleter(
		"Safe Deposit Box No. 5517 was rented under the alias Eric S. Galt (104-10001-10002.pdf).")

	client, err := NewClient(index, completer, WithTopK(5))
	require.NoError(t, err)

	answer, err := client.Ask(context.Background(), "Who rented safe deposit box 5517?")
	require.NoError(t, err)

	// The prompt must carry the element text and its provenance.
	prompt := completer.LastPrompt()
	assert.Contains(t, prompt, "Safe Deposit Box No. 5517")
	assert.Contains(t, prompt, "Eric S. Galt")
	assert.Contains(t, prompt, "104-10001-10002.pdf")
	assert.Contains(t, prompt, "https://archive.example.org/docs/104-10001-10002.pdf")
	assert.Contains(t, prompt, "Who rented safe deposit box 5517?")

	assert.Contains(t, answer.Text, "Eric S. Galt")
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "104-10001-10002.pdf", answer.Citations[0].Filename)
	assert.Equal(t, "https://archive.example.org/docs/104-10001-10002.pdf", answer.Citations[0].SourceURL)

	// Exactly one search and one completion.
	require.Len(t, index.queries, 1)
	assert.Equal(t, 5, index.queries[0].TopK)
	assert.Equal(t, 1, completer.CallCount())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	client, err := NewClient(&stubIndex{}, mock.NewMockCompleter("ok"))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAsk_NoResults(t *testing.T) {
	completer := mock.NewMockCompleter("ok")
	client, err := NewClient(&stubIndex{}, completer)
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, 0, completer.CallCount(), "no completion without context")
}

func TestAsk_IndexError(t *testing.T) {
	index := &stubIndex{err: errors.New("boom")}
	client, err := NewClient(index, mock.NewMockCompleter("ok"))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "anything")
	assert.EqualError(t, err, "boom")
}

func TestAsk_WithEmbedderSendsVector(t *testing.T) {
	index := &stubIndex{elements: []core.ProcessedElement{{
		ElementId: "el-1",
		Text:      "text",
		Filename:  "a.pdf",
		SourceURL: "https://archive.example.org/docs/a.pdf",
	}}}
	embedder := mock.NewMockEmbedder()
	client, err := NewClient(index, mock.NewMockCompleter("ok"), WithEmbedder(embedder))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "question")
	require.NoError(t, err)

	require.Len(t, index.queries, 1)
	assert.NotEmpty(t, index.queries[0].Vector)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestAsk_DeduplicatesCitations(t *testing.T) {
	index := &stubIndex{elements: []core.ProcessedElement{
		{Text: "one", Filename: "a.pdf", SourceURL: "https://x/a.pdf", Score: 0.9},
		{Text: "two", Filename: "a.pdf", SourceURL: "https://x/a.pdf", Score: 0.8},
		{Text: "three", Filename: "b.pdf", SourceURL: "https://x/b.pdf", Score: 0.7},
	}}
	client, err := NewClient(index, mock.NewMockCompleter("ok"))
	require.NoError(t, err)

	answer, err := client.Ask(context.Background(), "question")
	require.NoError(t, err)
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "a.pdf", answer.Citations[0].Filename)
	assert.Equal(t, "b.pdf", answer.Citations[1].Filename)
}
