package authz

import (
	"context"
	"errors"

	"ideora.org/internal/auth"
)

// ErrDenied is returned for every refused authorization, regardless of
// whether the subject, the grant or the resource itself was missing.
var ErrDenied = errors.New("authz: permission denied")

// Resource names the owned-resource types whose mutations are gated.
type Resource string

const (
	ResourceIdeation   Resource = "ideation"
	ResourceComment    Resource = "comment"
	ResourceInvestment Resource = "investment"
	ResourceInvestor   Resource = "investor"
	ResourceFinancial  Resource = "financial"
	ResourceBoard      Resource = "board"
)

// policyFunc decides whether the user may write the identified resource.
type policyFunc func(e *Enforcer, user *auth.User, resourceID string) (bool, error)

// Authorizer is the single authorization surface for handlers. Each
// resource type maps to one policy; handlers never compare role enums or
// owner fields inline.
type Authorizer struct {
	enforcer *Enforcer
	policies map[Resource]policyFunc
}

// NewAuthorizer wires the per-resource-type policies:
// ideations, comments and financial records require the caller's own
// write grant; investors and investments accept the caller's or their
// group's grant, so a grant issued to a groupless creator still
// authorizes them; boards are admin-only.
func NewAuthorizer(enforcer *Enforcer) *Authorizer {
	return &Authorizer{
		enforcer: enforcer,
		policies: map[Resource]policyFunc{
			ResourceIdeation:   ownerGrant,
			ResourceComment:    ownerGrant,
			ResourceFinancial:  ownerGrant,
			ResourceInvestment: ownerOrGroupGrant,
			ResourceInvestor:   ownerOrGroupGrant,
			ResourceBoard:      roleIs(auth.RoleAdmin),
		},
	}
}

// Require returns nil when the user may write the resource and ErrDenied
// otherwise. Unknown resource types and nil users deny.
func (a *Authorizer) Require(_ context.Context, user *auth.User, resource Resource, resourceID string) error {
	if user == nil {
		return ErrDenied
	}
	policy, ok := a.policies[resource]
	if !ok {
		return ErrDenied
	}
	allowed, err := policy(a.enforcer, user, resourceID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrDenied
	}
	return nil
}

// GrantWrite records write grants for the given subjects on the resource.
// Called by the creating handler immediately after persistence assigns
// the resource identifier.
func (a *Authorizer) GrantWrite(ctx context.Context, resourceID string, subjects ...string) error {
	triples := make([][3]string, 0, len(subjects))
	for _, sub := range subjects {
		triples = append(triples, [3]string{sub, resourceID, ActionWrite})
	}
	return a.enforcer.AddPolicies(ctx, triples...)
}

func ownerGrant(e *Enforcer, user *auth.User, resourceID string) (bool, error) {
	return e.Enforce(user.ID, resourceID, ActionWrite)
}

func ownerOrGroupGrant(e *Enforcer, user *auth.User, resourceID string) (bool, error) {
	allowed, err := e.Enforce(user.ID, resourceID, ActionWrite)
	if err != nil || allowed {
		return allowed, err
	}
	return e.Enforce(user.GroupID, resourceID, ActionWrite)
}

func roleIs(roles ...auth.Role) policyFunc {
	return func(_ *Enforcer, user *auth.User, _ string) (bool, error) {
		for _, r := range roles {
			if user.Role == r {
				return true, nil
			}
		}
		return false, nil
	}
}
