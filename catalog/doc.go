// Package catalog enumerates source documents from a paginated public
// catalog and persists the resulting record set.
//
// The lister walks catalog pages lazily and tolerates per-page failures;
// the parser understands both the records table published on the catalog
// page and a fallback scan of raw document links; the writers serialize a
// run's records to CSV, JSON, and plain-text URL lists for auditability.
package catalog
