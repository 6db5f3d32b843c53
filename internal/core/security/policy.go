// Package security provides the authorization policy for warehouse operations.
package security

import (
	"context"

	"stockward/internal/core/apperror"
	appctx "stockward/internal/core/context"
)

// Permission names guarded by the policy.
const (
	PermCreateTransaction = "create_transaction"
	PermCompleteTask      = "complete_task"
	PermStartLoading      = "start_loading"
	PermCompleteLoading   = "complete_loading"
	PermViewStock         = "view_stock"
	PermManageCatalogs    = "manage_catalogs"
)

// Warehouse role codes.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
	RoleLoader     = "loader"
)

// Policy is an immutable role-to-permission mapping built once at startup and
// injected where authorization checks happen. It is never mutated after
// construction, so concurrent reads need no locking.
type Policy struct {
	grants map[string]map[string]struct{} // role -> set of permissions
}

// NewPolicy builds a Policy from role-to-permissions pairs.
func NewPolicy(roleGrants map[string][]string) *Policy {
	grants := make(map[string]map[string]struct{}, len(roleGrants))
	for role, perms := range roleGrants {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Policy{grants: grants}
}

// DefaultPolicy returns the standard warehouse role mapping.
func DefaultPolicy() *Policy {
	return NewPolicy(map[string][]string{
		RoleAdmin: {
			PermCreateTransaction, PermCompleteTask,
			PermStartLoading, PermCompleteLoading,
			PermViewStock, PermManageCatalogs,
		},
		RoleSupervisor: {
			PermCreateTransaction, PermCompleteTask,
			PermStartLoading, PermCompleteLoading,
			PermViewStock,
		},
		RoleOperator: {
			PermCompleteTask, PermViewStock,
		},
		RoleLoader: {
			PermStartLoading, PermCompleteLoading, PermViewStock,
		},
	})
}

// Allows reports whether any of the roles grants the permission.
func (p *Policy) Allows(roles []string, permission string) bool {
	for _, role := range roles {
		if set, ok := p.grants[role]; ok {
			if _, ok := set[permission]; ok {
				return true
			}
		}
	}
	return false
}

// Require returns a Forbidden error unless the actor in ctx holds the
// permission. Admin actors pass all checks.
func (p *Policy) Require(ctx context.Context, permission string) error {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if actor.IsAdmin {
		return nil
	}
	if !p.Allows(actor.Roles, permission) {
		return apperror.NewForbidden("missing permission: " + permission)
	}
	return nil
}
