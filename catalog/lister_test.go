package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/declass/core"
	"github.com/poiesic/declass/fetch"
)

func pageWithLinks(n, perPage int) string {
	page := "<html><body>"
	for i := 0; i < perPage; i++ {
		page += fmt.Sprintf(`<a href="/files/doc-%d-%d.pdf">doc-%d-%d.pdf</a>`, n, i, n, i)
	}
	return page + "</body></html>"
}

func testFetcher() *fetch.Fetcher {
	policy := fetch.NewPolicy(2, time.Millisecond).WithSleep(
		func(context.Context, time.Duration) error { return nil })
	return fetch.NewFetcher(policy)
}

func TestRecords_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprint(w, pageWithLinks(0, 3))
		case "1":
			fmt.Fprint(w, pageWithLinks(1, 2))
		default:
			fmt.Fprint(w, "<html><body></body></html>") // empty page ends the walk
		}
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL)
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Empty(t, errs)
	require.Len(t, records, 5)
	for i := range records {
		assert.NoError(t, core.ValidateRecord(&records[i]))
	}
}

func TestRecords_EmptyFirstPageTerminates(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL)
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Empty(t, records)
	assert.Empty(t, errs)
	assert.Equal(t, 1, calls, "pagination stops at the first empty page")
}

func TestRecords_FailedPageIsReportedAndSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprint(w, pageWithLinks(0, 2))
		case "1":
			w.WriteHeader(http.StatusNotFound) // permanent per-page failure
		case "2":
			fmt.Fprint(w, pageWithLinks(2, 1))
		default:
			fmt.Fprint(w, "<html><body></body></html>")
		}
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL)
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Len(t, records, 3, "pages after the failed one are still listed")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPageFailed)
}

func TestRecords_MaxPagesCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageWithLinks(0, 1)) // never empty
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL, WithMaxPages(4))
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, records, 4)
}

func TestRecords_LazyConsumption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageWithLinks(0, 10))
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL)
	require.NoError(t, err)

	// Stop after the first record; the iterator must not keep fetching.
	count := 0
	for _, err := range lister.Records(context.Background()) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestRecords_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageWithLinks(0, 1))
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var lastErr error
	for _, err := range lister.Records(ctx) {
		lastErr = err
	}
	assert.ErrorIs(t, lastErr, context.Canceled)
}

func TestRecords_BaseURLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			fmt.Fprint(w, pageWithLinks(0, 2))
			return
		}
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	lister, err := NewLister(testFetcher(), server.URL,
		WithBaseURL("https://documents.example.org"))
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Empty(t, errs)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.True(t, strings.HasPrefix(record.URL, "https://documents.example.org/files/"),
			"relative links resolve against the override, got %s", record.URL)
	}
}

func TestNewLister_Validation(t *testing.T) {
	t.Run("nil fetcher", func(t *testing.T) {
		_, err := NewLister(nil, "https://example.com")
		assert.Equal(t, ErrFetcherRequired, err)
	})

	t.Run("bad catalog URL", func(t *testing.T) {
		_, err := NewLister(testFetcher(), "not a url")
		assert.ErrorIs(t, err, ErrInvalidBaseURL)
	})

	t.Run("bad base URL override", func(t *testing.T) {
		_, err := NewLister(testFetcher(), "https://example.com",
			WithBaseURL("not a url"))
		assert.ErrorIs(t, err, ErrInvalidBaseURL)
	})
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("network down")
}

func TestRecords_AllPagesFailing(t *testing.T) {
	lister, err := NewLister(failingFetcher{}, "https://example.com/catalog", WithMaxPages(3))
	require.NoError(t, err)

	records, errs := lister.ListAll(context.Background())
	assert.Empty(t, records)
	assert.Len(t, errs, 3, "one error per failed page, run still completes")
}
