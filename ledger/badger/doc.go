// Package badger provides the BadgerDB-backed mirror ledger.
package badger
