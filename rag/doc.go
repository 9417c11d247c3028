// Package rag answers questions over the external search index built from
// mirrored documents. It retrieves processed elements, assembles a prompt
// with their text and provenance, and asks a hosted model for the answer.
// The index and the documents themselves are maintained elsewhere; this
// package only reads.
package rag
