package identity

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("identity not found")
	ErrAlreadyExists = errors.New("identity with this national ID already exists")
	ErrInvalidRole   = errors.New("invalid role value")
)

// ValidationError lists the row invariants an identity violates.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid identity: " + strings.Join(e.Fields, "; ")
}
