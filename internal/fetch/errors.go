package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRoot is returned by New when the root URL lacks a scheme or host.
	ErrInvalidRoot = errors.New("invalid root URL: must be absolute with scheme and host")

	// ErrForeignSuffix is returned by Resolve for a suffix that names its own
	// scheme or host, such as the protocol-relative "//cdn.example/x.png".
	ErrForeignSuffix = errors.New("suffix points outside the site root")

	// ErrBodyTooLarge is returned when a response exceeds the configured size limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	// URL is the resolved request URL with any password masked.
	URL string

	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
