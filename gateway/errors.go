package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed means the remote call errored or was rejected.
	ErrRequestFailed = errors.New("gateway: request failed")
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("gateway: not found")
)

// RequestError carries the details of a failed remote call.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
	kind    error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s: status %d: %s", e.kind, e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.Op, msg)
}

// Is matches ErrRequestFailed or ErrNotFound depending on the failure kind.
func (e *RequestError) Is(target error) bool {
	return target == e.kind
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func failed(op string, status int, message string, err error) *RequestError {
	return &RequestError{Op: op, Status: status, Message: message, Err: err, kind: ErrRequestFailed}
}

func notFound(op string, status int, err error) *RequestError {
	return &RequestError{Op: op, Status: status, Message: "Post not found", Err: err, kind: ErrNotFound}
}

// Message returns the text to show a user for err, or "" when none is known.
func Message(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
