// Package objectstore abstracts the cloud object storage that mirrored
// documents are copied into. The s3 and minio subpackages provide the real
// backends; MemoryStore backs tests.
//
// Keys are derived deterministically from catalog records (see
// core.Record.ObjectKey), which is the one cross-component contract the
// mirror enforces: a stored object must always be traceable back to its
// record.
package objectstore
