// Package pipeline mirrors catalog records into object storage: fetch the
// document, upload it under a deterministic key, and record the outcome in
// the ledger. Records are processed concurrently on a bounded worker pool,
// and a failure on one record never aborts the run.
package pipeline
