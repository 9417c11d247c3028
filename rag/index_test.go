package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPIndex_Search(t *testing.T) {
	var gotAuth string
	var gotBody searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(searchResponse{Elements: []elementView{{
			ElementID: "el-1",
			Text:      "element text",
			Type:      "NarrativeText",
			Filename:  "a.pdf",
			SourceURL: "https://x/a.pdf",
			Entities:  []string{"Someone"},
			Score:     0.8,
		}}})
	}))
	defer server.Close()

	index := NewHTTPIndex(server.URL, "secret")
	elements, err := index.Search(context.Background(), Query{Text: "question", TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "question", gotBody.Query)
	assert.Equal(t, 3, gotBody.TopK)

	require.Len(t, elements, 1)
	assert.Equal(t, "el-1", elements[0].ElementId)
	assert.Equal(t, "a.pdf", elements[0].Filename)
	assert.Equal(t, "https://x/a.pdf", elements[0].SourceURL)
	assert.Equal(t, float32(0.8), elements[0].Score)
}

func TestHTTPIndex_NamedIndex(t *testing.T) {
	var gotRaw map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRaw))
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	t.Run("named", func(t *testing.T) {
		index := NewHTTPIndex(server.URL, "", WithIndexName("mlk-archive"))
		_, err := index.Search(context.Background(), Query{Text: "q", TopK: 1})
		require.NoError(t, err)
		assert.Equal(t, "mlk-archive", gotRaw["index"])
	})

	t.Run("default omits the field", func(t *testing.T) {
		index := NewHTTPIndex(server.URL, "")
		_, err := index.Search(context.Background(), Query{Text: "q", TopK: 1})
		require.NoError(t, err)
		assert.NotContains(t, gotRaw, "index")
	})
}

func TestHTTPIndex_NoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	index := NewHTTPIndex(server.URL, "")
	elements, err := index.Search(context.Background(), Query{Text: "q", TopK: 1})
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestHTTPIndex_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	index := NewHTTPIndex(server.URL, "")
	_, err := index.Search(context.Background(), Query{Text: "q", TopK: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPIndex_Unreachable(t *testing.T) {
	index := NewHTTPIndex("http://127.0.0.1:1", "")
	_, err := index.Search(context.Background(), Query{Text: "q", TopK: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}
