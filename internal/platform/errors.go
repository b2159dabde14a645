package platform

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("platform: not found")
	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("platform: conflict")
	// ErrInvalidInput is returned when a request payload fails validation.
	ErrInvalidInput = errors.New("platform: invalid input")
)
