package authz

import (
	"context"
	"errors"
	"testing"

	"ideora.org/internal/auth"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return e
}

func TestEnforceGrantMembership(t *testing.T) {
	e := newTestEnforcer(t)
	ctx := context.Background()

	if err := e.AddPolicies(ctx, [3]string{"user-a", "res-1", ActionWrite}); err != nil {
		t.Fatalf("AddPolicies: %v", err)
	}

	allowed, err := e.Enforce("user-a", "res-1", ActionWrite)
	if err != nil || !allowed {
		t.Fatalf("expected grant to allow, got allowed=%v err=%v", allowed, err)
	}
	allowed, err = e.Enforce("user-b", "res-1", ActionWrite)
	if err != nil || allowed {
		t.Fatalf("ungranted subject must be denied, got allowed=%v err=%v", allowed, err)
	}
	allowed, err = e.Enforce("user-a", "res-2", ActionWrite)
	if err != nil || allowed {
		t.Fatalf("ungranted resource must be denied, got allowed=%v err=%v", allowed, err)
	}
}

func TestEnforceEmptySubjectDenied(t *testing.T) {
	e := newTestEnforcer(t)
	ctx := context.Background()

	// A blank subject must never be recorded as a grant nor match one.
	if err := e.AddPolicies(ctx, [3]string{"", "res-1", ActionWrite}); err != nil {
		t.Fatalf("AddPolicies: %v", err)
	}
	allowed, err := e.Enforce("", "res-1", ActionWrite)
	if err != nil || allowed {
		t.Fatalf("empty subject must be denied, got allowed=%v err=%v", allowed, err)
	}
}

func TestAuthorizerOwnerGrant(t *testing.T) {
	e := newTestEnforcer(t)
	a := NewAuthorizer(e)
	ctx := context.Background()

	owner := &auth.User{ID: "user-a", Role: auth.RoleUser}
	other := &auth.User{ID: "user-b", Role: auth.RoleUser}

	// Before the grant lands the window fails closed, even for the owner.
	if err := a.Require(ctx, owner, ResourceIdeation, "idea-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("pre-grant access must be denied, got %v", err)
	}

	if err := a.GrantWrite(ctx, "idea-1", owner.ID); err != nil {
		t.Fatalf("GrantWrite: %v", err)
	}
	if err := a.Require(ctx, owner, ResourceIdeation, "idea-1"); err != nil {
		t.Fatalf("owner should be allowed: %v", err)
	}
	if err := a.Require(ctx, other, ResourceIdeation, "idea-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("non-owner must be denied, got %v", err)
	}
}

func TestAuthorizerGroupScopes(t *testing.T) {
	e := newTestEnforcer(t)
	a := NewAuthorizer(e)
	ctx := context.Background()

	member := &auth.User{ID: "user-a", GroupID: "grp-1", Role: auth.RoleInvestor}
	outsider := &auth.User{ID: "user-b", GroupID: "grp-2", Role: auth.RoleInvestor}
	solo := &auth.User{ID: "user-c", Role: auth.RoleUser}

	if err := a.GrantWrite(ctx, "inv-1", member.ID, member.GroupID); err != nil {
		t.Fatalf("GrantWrite: %v", err)
	}

	// Investments accept either the personal or the group grant.
	groupMate := &auth.User{ID: "user-z", GroupID: "grp-1", Role: auth.RoleInvestor}
	if err := a.Require(ctx, groupMate, ResourceInvestment, "inv-1"); err != nil {
		t.Fatalf("group member should be allowed: %v", err)
	}
	if err := a.Require(ctx, outsider, ResourceInvestment, "inv-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("other group must be denied, got %v", err)
	}

	// A groupless creator's personal grant authorizes their investor
	// profile; grants issued at creation must never be unreachable.
	if err := a.GrantWrite(ctx, "investor-1", solo.ID); err != nil {
		t.Fatalf("GrantWrite: %v", err)
	}
	if err := a.Require(ctx, solo, ResourceInvestor, "investor-1"); err != nil {
		t.Fatalf("groupless creator should keep their grant: %v", err)
	}
	if err := a.Require(ctx, outsider, ResourceInvestor, "investor-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("unrelated investor must be denied, got %v", err)
	}
}

func TestAuthorizerBoardRole(t *testing.T) {
	e := newTestEnforcer(t)
	a := NewAuthorizer(e)
	ctx := context.Background()

	admin := &auth.User{ID: "user-a", Role: auth.RoleAdmin}
	user := &auth.User{ID: "user-b", Role: auth.RoleUser}

	if err := a.Require(ctx, admin, ResourceBoard, "board-1"); err != nil {
		t.Fatalf("admin should write boards: %v", err)
	}
	if err := a.Require(ctx, user, ResourceBoard, "board-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("non-admin must be denied, got %v", err)
	}
}

func TestAuthorizerFailClosed(t *testing.T) {
	a := NewAuthorizer(newTestEnforcer(t))
	ctx := context.Background()

	if err := a.Require(ctx, nil, ResourceIdeation, "idea-1"); !errors.Is(err, ErrDenied) {
		t.Fatalf("nil user must be denied, got %v", err)
	}
	u := &auth.User{ID: "user-a", Role: auth.RoleUser}
	if err := a.Require(ctx, u, Resource("unknown"), "x"); !errors.Is(err, ErrDenied) {
		t.Fatalf("unknown resource type must be denied, got %v", err)
	}
}

func TestEnforcerFilePersistence(t *testing.T) {
	path := t.TempDir() + "/policy.csv"
	e, err := NewEnforcer(path)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	ctx := context.Background()
	if err := e.AddPolicies(ctx, [3]string{"user-a", "res-1", ActionWrite}); err != nil {
		t.Fatalf("AddPolicies: %v", err)
	}

	reloaded, err := NewEnforcer(path)
	if err != nil {
		t.Fatalf("NewEnforcer reload: %v", err)
	}
	allowed, err := reloaded.Enforce("user-a", "res-1", ActionWrite)
	if err != nil || !allowed {
		t.Fatalf("grant should survive reload, got allowed=%v err=%v", allowed, err)
	}
}
