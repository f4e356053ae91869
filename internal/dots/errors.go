package dots

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID indicates a body creation request without an identifier.
	ErrEmptyID = errors.New("dots: empty body id")

	// ErrDuplicateID indicates a body with the same id is already live.
	ErrDuplicateID = errors.New("dots: duplicate body id")

	// ErrClosed indicates the engine has been shut down.
	ErrClosed = errors.New("dots: engine shut down")

	// ErrParameterBounds indicates a tuning value outside its valid range.
	ErrParameterBounds = errors.New("dots: parameter out of valid bounds")
)

// BodyError wraps an error with the body it concerns.
type BodyError struct {
	ID      ID
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %q: %v", e.ID, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
