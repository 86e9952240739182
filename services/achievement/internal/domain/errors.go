package domain

import (
	"errors"
	"fmt"
)

// ErrDefinitionNotFound is matched by every DefinitionNotFoundError.
var ErrDefinitionNotFound = errors.New("achievement definition not found")

// DefinitionNotFoundError reports a record whose id is missing from the
// catalog. It is a data-integrity failure and is never recovered locally.
type DefinitionNotFoundError struct {
	ID uint32
}

func (e *DefinitionNotFoundError) Error() string {
	return fmt.Sprintf("achievement definition %d not found", e.ID)
}

func (e *DefinitionNotFoundError) Is(target error) bool {
	return target == ErrDefinitionNotFound
}
