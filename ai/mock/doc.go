// Package mock provides test doubles for the ai interfaces so retrieval
// logic can be tested without external model services.
package mock
