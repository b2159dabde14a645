package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers missing, malformed, tampered and expired
	// bearer tokens alike, so the response never acts as an oracle.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrInactiveAccount marks a valid token whose account is disabled.
	ErrInactiveAccount = errors.New("auth: inactive account")

	ErrNotFound     = errors.New("auth: not found")
	ErrConflict     = errors.New("auth: already exists")
	ErrInvalidInput = errors.New("auth: invalid input")
)
