package catalog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/declass/core"
)

func sampleRecords() []core.Record {
	return []core.Record{
		{
			Id:          core.IDFromURL("https://example.com/files/a.pdf"),
			Identifier:  "a.pdf",
			URL:         "https://example.com/files/a.pdf",
			ReleaseDate: "07/21/2025",
		},
		{
			Id:         core.IDFromURL("https://example.com/files/b.mp3"),
			Identifier: "b.mp3",
			URL:        "https://example.com/files/b.mp3",
			Title:      "Interview tape",
		},
	}
}

func TestWriteReadCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "identifier,url,title,release_date", lines[0])

	records, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.pdf", records[0].Identifier)
	assert.Equal(t, "https://example.com/files/a.pdf", records[0].URL)
	assert.Equal(t, "07/21/2025", records[0].ReleaseDate)
	assert.Equal(t, "Interview tape", records[1].Title)
	assert.Equal(t, core.IDFromURL(records[0].URL), records[0].Id, "IDs are rederived from the URL")
}

func TestWriteReadJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))
	assert.Contains(t, buf.String(), `"identifier": "a.pdf"`)

	records, err := ReadJSON(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sampleRecords()[0].URL, records[0].URL)
}

func TestWriteReadURLList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteURLList(&buf, sampleRecords()))
	assert.Equal(t, "https://example.com/files/a.pdf\nhttps://example.com/files/b.mp3\n", buf.String())

	records, err := ReadURLList(strings.NewReader(buf.String() + "\n\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.pdf", records[0].Identifier, "identifier derived from the filename")
}

func TestWriteOutcomes(t *testing.T) {
	entries := []*core.MirrorEntry{
		{
			Identifier: "a.pdf",
			URL:        "https://example.com/files/a.pdf",
			ObjectKey:  "mlk-archive/a.pdf",
			Status:     core.MirrorStatusUploaded,
			Size:       1024,
			Attempts:   1,
		},
		{
			Identifier: "b.pdf",
			URL:        "https://example.com/files/b.pdf",
			Status:     core.MirrorStatusFailed,
			Attempts:   3,
			LastError:  "unexpected status code: 500",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, entries))

	out := buf.String()
	assert.Contains(t, out, "identifier,url,object_key,status,size,attempts,error")
	assert.Contains(t, out, "a.pdf,https://example.com/files/a.pdf,mlk-archive/a.pdf,uploaded,1024,1,")
	// Failed records are still present in the catalog output.
	assert.Contains(t, out, "b.pdf")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "unexpected status code: 500")
}

func TestReadFile(t *testing.T) {
	t.Run("dispatches on extension", func(t *testing.T) {
		records, err := ReadFile(strings.NewReader("https://example.com/x.pdf\n"), "urls.txt")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := ReadFile(strings.NewReader(""), "catalog.parquet")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestTimestampedName(t *testing.T) {
	now := time.Date(2025, 7, 22, 13, 38, 7, 0, time.UTC)
	assert.Equal(t, "mlk_records_20250722_133807.csv", TimestampedName("mlk_records", "csv", now))
}
