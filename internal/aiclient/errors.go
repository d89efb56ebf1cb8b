package aiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout marks a collaborator call aborted by its deadline. Callers
// surface it with a different message than a generic network failure.
var ErrTimeout = errors.New("collaborator call timed out")

// APIError is a non-2xx response from a collaborator. Message holds the
// error/message field of a JSON body when one was present, otherwise the
// raw body text.
type APIError struct {
	Collaborator string
	StatusCode   int
	Message      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Collaborator, e.StatusCode, e.Message)
}

// FieldError is a 200 response from the scoring collaborator that failed
// structural validation. Field names the first missing or malformed field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("scoring response is missing required field %s", e.Field)
}

// classifyTransport maps a transport-level failure onto the error taxonomy:
// deadline aborts become ErrTimeout, everything else stays a plain network
// error.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("network error: %w", err)
}
