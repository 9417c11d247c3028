// Package ledger persists per-record mirror outcomes. The badger
// subpackage provides the durable implementation; entries are serialized
// in MUS format.
package ledger
