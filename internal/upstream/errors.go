package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the upstream request exceeded the configured timeout.
	ErrTimeout = errors.New("upstream request timed out")
	// ErrConnection indicates the upstream service could not be reached.
	ErrConnection = errors.New("upstream connection failed")
	// ErrMalformed indicates the upstream response body could not be decoded.
	ErrMalformed = errors.New("malformed upstream response")
)

// ServerError indicates the upstream service answered with a non-success status.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
