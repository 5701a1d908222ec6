package rbac

import (
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

// Resolver computes effective role membership for an (account, organization)
// scope. Role names are case-sensitive strings; the seeded system roles
// Admin and Employee are immutable, and organizations may define custom
// roles scoped to themselves.
type Resolver struct {
	roles *repositories.RoleRepository
}

func NewResolver(roles *repositories.RoleRepository) *Resolver {
	return &Resolver{roles: roles}
}

// EffectiveRoles is the union of every assignment for the pair. The result
// is a set: assignment is idempotent at the store layer.
func (r *Resolver) EffectiveRoles(accountID, orgID string) (map[string]bool, error) {
	names, err := r.roles.RoleNamesFor(accountID, orgID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}

// IsAdmin gates every organization-admin operation.
func (r *Resolver) IsAdmin(accountID, orgID string) (bool, error) {
	set, err := r.EffectiveRoles(accountID, orgID)
	if err != nil {
		return false, err
	}
	return set[models.RoleAdmin], nil
}
