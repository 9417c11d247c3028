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


package objectstore

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// PutOptions carries the provenance metadata attached to every stored
// document.
type PutOptions struct {
	ContentType string
	// Metadata holds free-form key/value pairs; the mirror records the
	// source URL and fetch date here so external processing can trace
	// objects back to their records.
	Metadata map[string]string
}

// Store is the destination for mirrored documents. Put must be idempotent
// per key: writing the same key twice overwrites rather than duplicates.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes size bytes from r under key, overwriting any existing
	// object with that key.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error

	// Stat returns metadata for a stored object.
	// Returns ErrNotFound if no object exists under key.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// contentTypes maps document extensions to MIME types for stored objects.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".mp3":  "audio/mpeg",
	".txt":  "text/plain",
	".json": "application/json",
}

// ContentTypeFor returns the MIME type for a document filename, defaulting
// to application/octet-stream.
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
