package participant

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned when a participant record misses a required attribute
	// or carries a value outside its domain.
	ErrMalformedInput = errors.New("participant: malformed input")
	// ErrDimensionMismatch is returned when response vectors differ in length or the
	// question distribution does not cover every question position.
	ErrDimensionMismatch = errors.New("participant: dimension mismatch")
	// ErrUnknownCategory is returned for gender or preference labels outside the closed sets.
	ErrUnknownCategory = errors.New("participant: unknown category")
)

// InputError points at the participant and field that made a dataset unusable.
// Index is -1 when the problem is not tied to a single participant.
type InputError struct {
	Index int
	Field string
	Err   error
	Msg   string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: participant %d: %s: %s", e.Err, e.Index, e.Field, e.Msg)
}

func (e *InputError) Unwrap() error { return e.Err }

func inputErrorf(kind error, index int, field, format string, args ...any) *InputError {
	return &InputError{Index: index, Field: field, Err: kind, Msg: fmt.Sprintf(format, args...)}
}
