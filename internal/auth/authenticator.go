package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// dummyHash keeps the cost of the unknown-email path close to the cost of
// a real mismatch so the two remain indistinguishable from the outside.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticator verifies credentials against the user store and issues
// bearer tokens through the codec. Email is the canonical login
// identifier.
type Authenticator struct {
	users UserStore
	codec *Codec
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(users UserStore, codec *Codec) (*Authenticator, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	return &Authenticator{users: users, codec: codec}, nil
}

// Authenticate looks up the user by email and verifies the password.
// Unknown email, wrong password and disabled account all surface as the
// same ErrInvalidCredentials to resist account enumeration.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = VerifyPassword(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken mints a bearer token for an authenticated user. A
// non-positive ttl selects the configured default lifetime.
func (a *Authenticator) IssueToken(user *User, ttl time.Duration) (string, time.Time, error) {
	return a.codec.Encode(user, ttl)
}
