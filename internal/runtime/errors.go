package runtime

import (
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// snippetLimit bounds the raw body kept on a ProtocolError
const snippetLimit = 512

// ConnectionError is returned when the engine socket cannot be reached
type ConnectionError struct {
	Socket string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Socket, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError is returned when the engine's response cannot be
// interpreted: an undecodable body or a status the operation never yields.
type ProtocolError struct {
	Op      string
	Status  int
	Snippet string // leading bytes of the raw body
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s: invalid engine response", e.Op)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" [body: %q]", e.Snippet)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// APIError is a non-success status returned by the engine. Message is the
// engine's own error text.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: engine returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: engine returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap exposes the errdefs class of the status code, so callers can use
// errdefs.IsNotFound, errdefs.IsConflict and friends.
func (e *APIError) Unwrap() error {
	return classify(e.StatusCode)
}

func classify(status int) error {
	switch status {
	case http.StatusNotModified:
		return errdefs.ErrNotModified
	case http.StatusBadRequest:
		return errdefs.ErrInvalidArgument
	case http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case http.StatusNotFound:
		return errdefs.ErrNotFound
	case http.StatusConflict:
		return errdefs.ErrConflict
	case http.StatusNotImplemented:
		return errdefs.ErrNotImplemented
	case http.StatusServiceUnavailable:
		return errdefs.ErrUnavailable
	}
	if status >= 500 {
		return errdefs.ErrInternal
	}
	return errdefs.ErrUnknown
}

func snippet(body []byte) string {
	if len(body) > snippetLimit {
		return string(body[:snippetLimit])
	}
	return string(body)
}
