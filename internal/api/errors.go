// ABOUTME: Error taxonomy for blog API calls.
// ABOUTME: Separates transport failures from non-2xx responses.
package api

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Login on any non-2xx response.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError means the server answered with a non-2xx status.
type HTTPError struct {
	Op     string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: API returned %d: %s", e.Op, e.Status, e.Body)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
