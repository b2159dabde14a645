package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolveRefetchesUser(t *testing.T) {
	store := NewMemoryStore()
	codec, _ := NewCodec("test-secret", 15*time.Minute)
	resolver, err := NewResolver(codec, store, false)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	u := registerUser(t, store, "alice", "alice@example.com", "secret1")
	token, _, err := codec.Encode(u, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("unexpected identity: %+v", got)
	}

	// A role change after issuance is visible on the next request.
	admin := RoleAdmin
	if _, err := store.Update(context.Background(), u.ID, UserUpdate{Role: &admin}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve after role change: %v", err)
	}
	if got.Role != RoleAdmin {
		t.Fatalf("expected refreshed role, got %s", got.Role)
	}
}

func TestResolveInactiveAccount(t *testing.T) {
	store := NewMemoryStore()
	codec, _ := NewCodec("test-secret", 15*time.Minute)
	resolver, _ := NewResolver(codec, store, false)

	u := registerUser(t, store, "alice", "alice@example.com", "secret1")
	token, _, _ := codec.Encode(u, 0)

	if err := store.SetDisabled(context.Background(), u.ID, true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestResolveStatelessSkipsStore(t *testing.T) {
	codec, _ := NewCodec("test-secret", 15*time.Minute)
	resolver, err := NewResolver(codec, nil, true)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	u := &User{ID: "u-1", Name: "bob", Email: "bob@example.com", Role: RoleInvestor, GroupID: "g-1"}
	token, _, _ := codec.Encode(u, 0)

	got, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "u-1" || got.Role != RoleInvestor || got.GroupID != "g-1" {
		t.Fatalf("claims not carried into identity: %+v", got)
	}
}

func TestResolveUnknownSubject(t *testing.T) {
	store := NewMemoryStore()
	codec, _ := NewCodec("test-secret", 15*time.Minute)
	resolver, _ := NewResolver(codec, store, false)

	ghost := &User{ID: "gone", Name: "ghost", Email: "ghost@example.com", Role: RoleUser}
	token, _, _ := codec.Encode(ghost, 0)

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown subject, got %v", err)
	}
}

func TestResolveGarbageToken(t *testing.T) {
	codec, _ := NewCodec("test-secret", 15*time.Minute)
	resolver, _ := NewResolver(codec, NewMemoryStore(), false)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := resolver.Resolve(context.Background(), tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
