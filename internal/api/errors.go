package api

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network attempt when no
// credential is configured.
var ErrMissingAPIKey = errors.New("no API key configured (run 'jules auth set')")

// TransportError wraps connection-level failures (DNS, refused, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx HTTP response. Body holds a snippet of the raw
// response body for diagnostics.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: HTTP %d", e.Status)
}

// DecodingError means a 2xx response body did not match the expected shape.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
