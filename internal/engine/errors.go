package engine

import (
	"errors"
	"fmt"
)

// CombinationError is returned when a combination cannot be created.
type CombinationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the uniqueness key of the rejected combination, when known.
	Key string

	// Existing is the id of the potion already recorded for Key
	// (DUPLICATE_COMBINATION only).
	Existing string
}

// ErrorCode categorizes combination errors.
type ErrorCode string

const (
	// ErrCodeDuplicate indicates the combination was already recorded.
	ErrCodeDuplicate ErrorCode = "DUPLICATE_COMBINATION"

	// ErrCodeUnknownBase indicates the base id does not exist.
	ErrCodeUnknownBase ErrorCode = "UNKNOWN_BASE"

	// ErrCodeUnknownIngredient indicates an ingredient id does not exist.
	ErrCodeUnknownIngredient ErrorCode = "UNKNOWN_INGREDIENT"

	// ErrCodeSameIngredient indicates both ingredient ids are equal.
	ErrCodeSameIngredient ErrorCode = "SAME_INGREDIENT"

	// ErrCodeNoSuggestion indicates no untried compatible combination is left.
	ErrCodeNoSuggestion ErrorCode = "NO_SUGGESTION"
)

// Error implements the error interface.
func (e *CombinationError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("%s: %s (existing=%s)", e.Code, e.Message, e.Existing)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, codes ...ErrorCode) bool {
	var ce *CombinationError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether err is a duplicate combination error.
// Uses errors.As to handle wrapped errors.
func IsDuplicate(err error) bool { return hasCode(err, ErrCodeDuplicate) }

// IsUnknownReference reports whether err names a missing base or ingredient.
func IsUnknownReference(err error) bool {
	return hasCode(err, ErrCodeUnknownBase, ErrCodeUnknownIngredient)
}

// IsSameIngredient reports whether err rejects a combination of an
// ingredient with itself.
func IsSameIngredient(err error) bool { return hasCode(err, ErrCodeSameIngredient) }

// IsNoSuggestion reports whether Suggest ran out of candidates.
func IsNoSuggestion(err error) bool { return hasCode(err, ErrCodeNoSuggestion) }
