package fetch

import "errors"

var (
	// ErrInvalidMaxAttempts indicates a retry policy with fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrUnexpectedStatusCode indicates an HTTP response with a non-2xx status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")

	// ErrBodyTooLarge indicates a response body exceeded the configured cap.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrPermanent marks a failure that retrying cannot fix (404, malformed
	// request). Wrap with Permanent to stop a retry loop immediately.
	ErrPermanent = errors.New("permanent failure")
)

// Permanent wraps err so that Policy.Do gives up without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{ErrPermanent, e.err} }
