// Package s3 provides the Amazon S3 backend for the mirror's object store.
package s3
