// Package authz gates every mutation of an owned resource behind
// (subject, resource, action) grant triples backed by Casbin. A grant is
// inserted by the creating handler as soon as the resource id is known;
// until it lands, enforcement denies by construction, so the
// create-then-grant window fails closed.
package authz

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

// ActionWrite is the only action in the grant vocabulary today.
const ActionWrite = "write"

// Enforcer wraps a Casbin synced enforcer behind the two operations the
// platform needs: add grants, answer allow/deny.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	persist  bool
}

// NewEnforcer builds an enforcer from the embedded ACL model. A non-empty
// policyPath loads and persists grants from/to that CSV file; otherwise
// grants live in memory only.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	persist := false
	if policyPath != "" {
		if err := ensureFile(policyPath); err != nil {
			return nil, fmt.Errorf("create policy file: %w", err)
		}
		adapter := fileadapter.NewAdapter(policyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
		persist = true
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	// The file adapter cannot apply incremental writes; policies are saved
	// wholesale after each mutation instead.
	enforcer.EnableAutoSave(false)

	return &Enforcer{enforcer: enforcer, persist: persist}, nil
}

// AddPolicies inserts grant triples. Blank subjects are skipped so a user
// without a group affiliation does not produce an empty-subject grant.
func (e *Enforcer) AddPolicies(_ context.Context, triples ...[3]string) error {
	rules := make([][]string, 0, len(triples))
	for _, t := range triples {
		if strings.TrimSpace(t[0]) == "" || strings.TrimSpace(t[1]) == "" || strings.TrimSpace(t[2]) == "" {
			continue
		}
		rules = append(rules, []string{t[0], t[1], t[2]})
	}
	if len(rules) == 0 {
		return nil
	}
	if _, err := e.enforcer.AddPolicies(rules); err != nil {
		return fmt.Errorf("add policies: %w", err)
	}
	if e.persist {
		if err := e.enforcer.SavePolicy(); err != nil {
			return fmt.Errorf("save policies: %w", err)
		}
	}
	return nil
}

func ensureFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Enforce answers whether the subject may perform the action on the
// resource. Absence of a grant is a deny; there are no explicit denies.
func (e *Enforcer) Enforce(subject, resource, action string) (bool, error) {
	if strings.TrimSpace(subject) == "" {
		return false, nil
	}
	allowed, err := e.enforcer.Enforce(subject, resource, action)
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}
	return allowed, nil
}
