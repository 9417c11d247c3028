package objectstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("stat before put", func(t *testing.T) {
		_, err := store.Stat(ctx, "mlk-archive/a.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put then stat", func(t *testing.T) {
		opts := PutOptions{
			ContentType: "application/pdf",
			Metadata:    map[string]string{"source-url": "https://example.com/a.pdf"},
		}
		require.NoError(t, store.Put(ctx, "mlk-archive/a.pdf", strings.NewReader("pdf bytes"), 9, opts))

		info, err := store.Stat(ctx, "mlk-archive/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, int64(9), info.Size)
		assert.Equal(t, "application/pdf", store.ContentType("mlk-archive/a.pdf"))
		assert.Equal(t, "https://example.com/a.pdf", store.Metadata("mlk-archive/a.pdf")["source-url"])
	})

	t.Run("put overwrites, never duplicates", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "mlk-archive/a.pdf", strings.NewReader("new bytes!"), 10, PutOptions{}))

		info, err := store.Stat(ctx, "mlk-archive/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, int64(10), info.Size)

		keys, err := store.List(ctx, "mlk-archive/")
		require.NoError(t, err)
		assert.Equal(t, []string{"mlk-archive/a.pdf"}, keys)
	})

	t.Run("declared size mismatch", func(t *testing.T) {
		err := store.Put(ctx, "bad", strings.NewReader("abc"), 99, PutOptions{})
		assert.Error(t, err)
	})

	t.Run("list is sorted and prefix-filtered", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "mlk-archive/b.pdf", strings.NewReader("x"), 1, PutOptions{}))
		require.NoError(t, store.Put(ctx, "other/c.pdf", strings.NewReader("x"), 1, PutOptions{}))

		keys, err := store.List(ctx, "mlk-archive/")
		require.NoError(t, err)
		assert.Equal(t, []string{"mlk-archive/a.pdf", "mlk-archive/b.pdf"}, keys)
	})
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("doc.pdf"))
	assert.Equal(t, "application/pdf", ContentTypeFor("DOC.PDF"))
	assert.Equal(t, "audio/mpeg", ContentTypeFor("tape.mp3"))
	assert.Equal(t, "text/plain", ContentTypeFor("notes.txt"))
	assert.Equal(t, "application/json", ContentTypeFor("catalog.json"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("image.tiff"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("noext"))
}
