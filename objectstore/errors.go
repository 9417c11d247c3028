package objectstore

import "errors"

// ErrNotFound is returned by Stat when no object exists under the key.
//
// Backends map their provider-specific "no such key" responses to this so
// callers can use errors.Is.
var ErrNotFound = errors.New("object not found")
