// Package fetch provides the HTTP document fetcher and the reusable
// retry-with-backoff policy shared by the lister, downloader, and uploader.
// The policy accepts an injected sleep function so retry behavior is
// testable against a fake clock.
package fetch
