package auth

import (
	"context"
	"errors"
)

// Resolver turns an inbound bearer token into a trusted identity. By
// default the decoded subject is refetched so disabled accounts and role
// changes take effect immediately; stateless mode trusts the claim set
// alone, trading that consistency for one less store round-trip per
// request.
type Resolver struct {
	codec     *Codec
	users     UserStore
	stateless bool
}

// NewResolver constructs a Resolver. The user store may only be nil in
// stateless mode.
func NewResolver(codec *Codec, users UserStore, stateless bool) (*Resolver, error) {
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	if !stateless && users == nil {
		return nil, errors.New("auth: user store is required unless stateless")
	}
	return &Resolver{codec: codec, users: users, stateless: stateless}, nil
}

// Resolve validates the token and returns the request identity. Decode
// failures of any kind yield ErrInvalidToken; a valid token for a
// since-disabled account yields ErrInactiveAccount.
func (r *Resolver) Resolve(ctx context.Context, token string) (*User, error) {
	claims, err := r.codec.Decode(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if r.stateless {
		return &User{
			ID:      claims.Subject,
			Name:    claims.Name,
			Email:   claims.Email,
			Role:    Role(claims.Role),
			GroupID: claims.GroupID,
		}, nil
	}
	user, err := r.users.Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Disabled {
		return nil, ErrInactiveAccount
	}
	return user, nil
}
