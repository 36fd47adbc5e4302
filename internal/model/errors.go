package model

import (
	"fmt"
	"strings"
)

// ValidationError reports invalid user input. BadIDs carries every
// offending identifier so callers can fix all of them in one pass —
// validation never fails on just the first bad entry.
type ValidationError struct {
	Msg    string
	BadIDs []string
}

func (e *ValidationError) Error() string {
	if len(e.BadIDs) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.BadIDs, ", "))
}

// NewValidationError builds a ValidationError with offending IDs.
func NewValidationError(msg string, badIDs ...string) *ValidationError {
	return &ValidationError{Msg: msg, BadIDs: badIDs}
}
