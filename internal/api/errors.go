package api

import (
	"errors"
	"net/http"
)

// FetchError reports a non-2xx response or an undecodable body.
// Error() is always the operation's fixed message (e.g. "Failed to create bug");
// the server's own error text, if any, is kept in Detail.
type FetchError struct {
	Op         string // operation name, e.g. "createBug"
	Message    string // fixed, user-facing message
	StatusCode int    // HTTP status, 0 if unknown
	Detail     string // server-provided error payload
	Err        error  // decode error, if the body could not be parsed
}

func (e *FetchError) Error() string {
	return e.Message
}

// Unwrap exposes the decode error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a FetchError for a 404 response.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status behind err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
