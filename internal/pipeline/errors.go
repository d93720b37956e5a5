package pipeline

import (
	"errors"
	"fmt"
)

// Caller-facing messages
const (
	MsgNoInput          = "Either content or url must be provided"
	MsgExtractionFailed = "Failed to extract content from URL"
	MsgInternal         = "Internal server error during analysis"
)

// ErrNoInput is wrapped by the InputError returned when neither content nor url is given
var ErrNoInput = errors.New("no content or url")

// InputError is a caller mistake or an unreadable URL. The pipeline never starts.
type InputError struct {
	Message string // Safe to return to the caller
	Err     error
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// InternalError is an unexpected failure while analyzing. Only MsgInternal
// may be shown to the caller; Err carries the logged detail.
type InternalError struct {
	RequestID string
	Err       error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("request %s: %v", e.RequestID, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// PublicMessage returns the message that may be shown for err and whether
// it is a caller error
func PublicMessage(err error) (string, bool) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Message, true
	}
	return MsgInternal, false
}
