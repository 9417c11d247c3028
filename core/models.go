package core

import (
	"encoding/binary"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from record content so that identical sources map to
// identical IDs across runs.
type ID uint64

// IDFromURL generates a deterministic ID from a source URL using BLAKE2b
// hashing. The same URL always produces the same ID, which is what makes
// re-running the mirror idempotent.
func IDFromURL(rawURL string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(rawURL))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Record is one catalog entry identifying a source document to fetch.
// Records are created by the lister and never mutated afterwards.
type Record struct {
	Id          ID
	Identifier  string // record number or link text from the catalog
	URL         string // absolute document URL
	Title       string
	ReleaseDate string
	ListedAt    time.Time
}

// Filename returns the base name of the record's URL path.
// This is the stable input for the object-storage key.
func (r *Record) Filename() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.Path == "" {
		return r.Identifier
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return r.Identifier
	}
	return name
}

// ObjectKey returns the object-storage key for this record under the given
// prefix. The key is a pure function of the record so that downstream
// processing can re-associate stored objects with their provenance.
func (r *Record) ObjectKey(prefix string) string {
	name := r.Filename()
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

// MirrorStatus describes the outcome of mirroring a single record.
type MirrorStatus int

const (
	// MirrorStatusPending means the record has been listed but not mirrored yet.
	MirrorStatusPending MirrorStatus = iota + 1
	// MirrorStatusUploaded means the document was fetched and stored.
	MirrorStatusUploaded
	// MirrorStatusSkipped means the stored object already matched the remote size.
	MirrorStatusSkipped
	// MirrorStatusFailed means all attempts for this record were exhausted.
	MirrorStatusFailed
)

// String returns the lowercase name of the status for logs and catalogs.
func (s MirrorStatus) String() string {
	switch s {
	case MirrorStatusPending:
		return "pending"
	case MirrorStatusUploaded:
		return "uploaded"
	case MirrorStatusSkipped:
		return "skipped"
	case MirrorStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MirrorEntry is the ledger row for one record: what we tried, what
// happened, and where the bytes ended up.
type MirrorEntry struct {
	RecordId   ID
	Identifier string
	URL        string
	ObjectKey  string
	Status     MirrorStatus
	Size       int64
	Attempts   int
	LastError  string
	UpdatedAt  time.Time
}

// ProcessedElement is an externally produced, embedded and entity-annotated
// text chunk derived from a source document. This repository only reads
// these; it never constructs or mutates them.
type ProcessedElement struct {
	ElementId string
	Text      string
	Type      string
	Filename  string
	SourceURL string
	Entities  []string
	Score     float32
}

// RunSummary aggregates per-item outcomes for a scrape or mirror run.
type RunSummary struct {
	Listed   int
	Uploaded int
	Skipped  int
	Failed   int
	Bytes    int64
}

// Completed returns the number of records that did not fail.
func (s RunSummary) Completed() int {
	return s.Uploaded + s.Skipped
}
