// Package minio provides the MinIO / S3-compatible backend for the
// mirror's object store.
package minio
