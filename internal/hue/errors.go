package hue

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers connection failures, timeouts and non-2xx responses.
	ErrTransport         = errors.New("bridge transport failure")
	// ErrProtocol means the bridge answered but not with the expected shape.
	ErrProtocol          = errors.New("unexpected bridge response")
	ErrUnsupportedMethod = errors.New("unsupported request method")
)

// APIError is returned by every Session operation that fails.
type APIError struct {
	Op  string
	URL string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hue %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
