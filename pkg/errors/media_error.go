package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeDecode       = "decode_error"
	CodeEncode       = "encode_error"
	CodeNotFound     = "not_found"
	CodeInvalidInput = "invalid_input"
	CodeUnsupported  = "unsupported"
	CodeToolFailed   = "tool_failed"
	CodeInternal     = "internal_error"
)

// MediaError is the error shape every pipeline stage returns. Message is safe
// to show to an end user as is.
type MediaError struct {
	Code    string
	Message string
	Err     error
}

func (e *MediaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

var (
	ErrDecode = func(path string, err error) *MediaError {
		return &MediaError{Code: CodeDecode, Message: fmt.Sprintf("could not read %s", path), Err: err}
	}
	ErrEncode = func(path string, err error) *MediaError {
		return &MediaError{Code: CodeEncode, Message: fmt.Sprintf("could not write %s", path), Err: err}
	}
	ErrNotFound = func(path string, err error) *MediaError {
		return &MediaError{Code: CodeNotFound, Message: fmt.Sprintf("not found: %s", path), Err: err}
	}
	ErrInvalidInput = func(msg string) *MediaError {
		return &MediaError{Code: CodeInvalidInput, Message: msg}
	}
	ErrUnsupported = func(msg string) *MediaError {
		return &MediaError{Code: CodeUnsupported, Message: msg}
	}
	// ErrToolFailed keeps the external tool's stderr verbatim.
	ErrToolFailed = func(stderr string, err error) *MediaError {
		return &MediaError{Code: CodeToolFailed, Message: stderr, Err: err}
	}
	ErrInternal = func(err error) *MediaError {
		msg := "internal error"
		if err != nil {
			msg = err.Error()
		}
		return &MediaError{Code: CodeInternal, Message: msg, Err: err}
	}
)

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var me *MediaError
	if stderrors.As(err, &me) {
		return me.Message
	}
	return err.Error()
}

// HasCode reports whether err is a MediaError with the given code.
func HasCode(err error, code string) bool {
	var me *MediaError
	return stderrors.As(err, &me) && me.Code == code
}
