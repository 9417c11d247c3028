package catalog

import "errors"

var (
	// ErrMalformedPage indicates a catalog page that could not be parsed as HTML.
	ErrMalformedPage = errors.New("malformed catalog page")

	// ErrInvalidBaseURL indicates the configured catalog URL does not parse.
	ErrInvalidBaseURL = errors.New("invalid catalog URL")

	// ErrFetcherRequired is returned when a page fetcher is not provided.
	ErrFetcherRequired = errors.New("page fetcher required")

	// ErrPageFailed wraps per-page fetch failures reported by the lister.
	ErrPageFailed = errors.New("catalog page failed")

	// ErrUnsupportedFormat indicates an unrecognized catalog file format.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)
