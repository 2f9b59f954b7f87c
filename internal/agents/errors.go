package agents

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for agent operations.
var (
	ErrNotFound   = errors.New("agent not found")
	ErrForbidden  = errors.New("agent belongs to another user")
	ErrValidation = errors.New("model, name, role, and instructions are required")
	ErrLinked     = errors.New("agent is linked to conversations")
)

// LinkedError reports how many conversations still reference an agent whose
// deletion was refused.
type LinkedError struct {
	Count int
}

func (e *LinkedError) Error() string {
	return fmt.Sprintf("agent is linked to %d conversation(s)", e.Count)
}

// Unwrap makes LinkedError match ErrLinked under errors.Is.
func (e *LinkedError) Unwrap() error {
	return ErrLinked
}

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrLinked) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
