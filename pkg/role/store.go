package role

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port for roles. Lookups that take a tenant id
// resolve across the union of that tenant's roles and all global roles.
//
// Implementations must enforce the name-uniqueness invariant themselves
// (unique per (tenant, name) for tenant roles, unique per name across
// global roles) and return ErrRoleAlreadyExists on violation: the
// application-level existence check alone cannot prevent duplicates when
// several processes bootstrap concurrently. Name comparison is
// case-insensitive.
type Store interface {
	// Create persists a new role. Returns ErrRoleAlreadyExists when the
	// name is taken within the role's uniqueness scope.
	Create(ctx context.Context, r Role) error

	// FindByID resolves a role by id within the tenant ∪ global partition.
	// Returns ErrRoleNotFound when the id is unknown or belongs to another
	// tenant.
	FindByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Role, error)

	// FindByName resolves a role by name within the tenant ∪ global
	// partition. Tenant roles shadow global roles of the same name.
	FindByName(ctx context.Context, name string, tenantID uuid.UUID) (Role, error)

	// FindAll returns the tenant's roles plus all global roles.
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]Role, error)

	// FindGlobalRoles returns every global role.
	FindGlobalRoles(ctx context.Context) ([]Role, error)

	// Update persists changes to an existing role. Returns ErrRoleNotFound
	// when the role no longer exists and ErrRoleAlreadyExists when a rename
	// collides.
	Update(ctx context.Context, r Role) error

	// Delete removes a role by id within the tenant partition.
	// Global roles are never deleted through this method.
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	// Exists reports whether a role with the name exists in the tenant ∪
	// global partition.
	Exists(ctx context.Context, name string, tenantID uuid.UUID) (bool, error)
}
