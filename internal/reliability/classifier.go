// Package reliability classifies generation provider failures into stable
// labels so metrics and logs stay low-cardinality.
package reliability

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrMalformedPayload marks a provider response that could not be decoded.
var ErrMalformedPayload = errors.New("malformed provider payload")

// ErrEmptyCompletion marks a well-formed provider response with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// StatusError is a non-2xx HTTP response from a provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider http status %d: %s", e.Code, e.Body)
}

// Classify maps a provider error to one of: timeout, canceled, http_status,
// malformed, empty, unreachable.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	default:
		var se *StatusError
		if errors.As(err, &se) {
			return "http_status"
		}
		return "unreachable"
	}
}
