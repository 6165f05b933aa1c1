package telegram

import (
	"errors"
	"fmt"
)

var (
	ErrRequestFailed   = errors.New("telegram request failed")
	ErrUnsupportedKind = errors.New("unsupported file kind")
	ErrInvalidLogin    = errors.New("invalid telegram login")
	ErrLoginExpired    = errors.New("telegram login expired")
)

// Error describes a failed Bot API call. It matches ErrRequestFailed.
type Error struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("telegram %s: %v", e.Method, e.Err)
	case e.Description != "":
		return fmt.Sprintf("telegram %s: %d %s", e.Method, e.ErrorCode, e.Description)
	default:
		return fmt.Sprintf("telegram %s: http status %d", e.Method, e.StatusCode)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestFailed, e.Err}
	}
	return []error{ErrRequestFailed}
}
