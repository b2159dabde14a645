package auth

import "context"

// UserStore describes persistence operations required by the auth subsystem.
type UserStore interface {
	// Create persists a new user. A duplicate email or name yields
	// ErrConflict.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	// Update applies the whitelisted partial update.
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	// SetDisabled flips the soft-delete flag; rows are never hard-deleted.
	SetDisabled(ctx context.Context, id string, disabled bool) error
}
