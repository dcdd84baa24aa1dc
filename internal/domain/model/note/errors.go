package note

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every *ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports content that does not satisfy the block document shape
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
