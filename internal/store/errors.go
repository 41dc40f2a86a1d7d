package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeLoad indicates the document could not be read or parsed.
	// The store substitutes a default document and stays usable.
	ErrCodeLoad ErrorCode = "LOAD_FAILED"

	// ErrCodeDuplicateIngredient indicates an ingredient id is already taken.
	ErrCodeDuplicateIngredient ErrorCode = "DUPLICATE_INGREDIENT"

	// ErrCodeNotFound indicates a referenced record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeIncomplete indicates required fields are empty.
	ErrCodeIncomplete ErrorCode = "INCOMPLETE_RECORD"
)

// Error is returned by store operations that fail for a domain reason rather
// than an I/O one.
type Error struct {
	Code    ErrorCode
	Message string
	Subject string // record id or file path the error is about
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Subject != "" {
		msg += fmt.Sprintf(" (%s)", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsLoadError reports whether err is a non-fatal load failure.
func IsLoadError(err error) bool { return hasCode(err, ErrCodeLoad) }

// IsDuplicateIngredient reports whether err is an ingredient id collision.
func IsDuplicateIngredient(err error) bool { return hasCode(err, ErrCodeDuplicateIngredient) }

// IsNotFound reports whether err refers to a missing record.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsIncomplete reports whether err is a missing-required-fields error.
func IsIncomplete(err error) bool { return hasCode(err, ErrCodeIncomplete) }

func newLoadError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeLoad,
		Message: "could not load catalog, using a fresh default document",
		Subject: path,
		Err:     err,
	}
}
