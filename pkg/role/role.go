package role

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Role is the aggregate root for a named set of permissions.
// TenantID is nil for global roles and required for tenant roles.
type Role struct {
	ID           uuid.UUID               `json:"id"`
	TenantID     *uuid.UUID              `json:"tenant_id,omitempty"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	IsSystemRole bool                    `json:"is_system_role"`
	IsGlobal     bool                    `json:"is_global"`
	Permissions  []permission.Permission `json:"permissions"`
	ParentRoleID *uuid.UUID              `json:"parent_role_id,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Option customizes role construction.
type Option func(*Role)

// AsSystemRole marks the new role as a seeded, immutable system role.
func AsSystemRole() Option {
	return func(r *Role) { r.IsSystemRole = true }
}

// WithParentRole links the new role to a parent role.
func WithParentRole(id uuid.UUID) Option {
	return func(r *Role) { r.ParentRoleID = &id }
}

// WithID overrides the generated id. Useful for deterministic tests.
func WithID(id uuid.UUID) Option {
	return func(r *Role) { r.ID = id }
}

// New creates a tenant-owned custom role. The role is never global;
// global roles are created through NewGlobal by privileged seeding only.
func New(tenantID uuid.UUID, name, description string, perms []permission.Permission, opts ...Option) (Role, error) {
	if tenantID == uuid.Nil {
		return Role{}, errors.Join(ErrInvalidRole, errors.New("tenant id is required"))
	}

	r := Role{
		ID:          uuid.New(),
		TenantID:    &tenantID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Permissions: clonePermissions(perms),
	}
	for _, opt := range opts {
		opt(&r)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := r.Validate(); err != nil {
		return Role{}, err
	}
	return r, nil
}

// NewGlobal creates a global role shared across all tenants. This is the
// privileged path used by bootstrap seeding; tenant-facing lifecycle
// operations never call it.
func NewGlobal(name, description string, perms []permission.Permission, opts ...Option) (Role, error) {
	r := Role{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		IsGlobal:     true,
		IsSystemRole: true,
		Permissions:  clonePermissions(perms),
	}
	for _, opt := range opts {
		opt(&r)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := r.Validate(); err != nil {
		return Role{}, err
	}
	return r, nil
}

// Validate checks the aggregate invariants: name constraints, the
// tenant/global split and every permission's shape.
func (r *Role) Validate() error {
	if r.Name == "" {
		return errors.Join(ErrInvalidRole, errors.New("name is required"))
	}
	if len(r.Name) > maxNameLength {
		return errors.Join(ErrInvalidRole, fmt.Errorf("name exceeds %d characters", maxNameLength))
	}
	if len(r.Description) > maxDescriptionLength {
		return errors.Join(ErrInvalidRole, fmt.Errorf("description exceeds %d characters", maxDescriptionLength))
	}

	if r.IsGlobal && r.TenantID != nil {
		return errors.Join(ErrInvalidRole, errors.New("global roles must not carry a tenant id"))
	}
	if !r.IsGlobal && (r.TenantID == nil || *r.TenantID == uuid.Nil) {
		return errors.Join(ErrInvalidRole, errors.New("tenant roles require a tenant id"))
	}

	for _, p := range r.Permissions {
		if err := p.Validate(); err != nil {
			return errors.Join(ErrInvalidRole, err)
		}
	}
	return nil
}

// HasPermission reports whether some permission covers the resource and
// allows the action. A "*" resource matches anything; manage implies every
// action.
func (r *Role) HasPermission(resource string, action permission.Action) bool {
	for _, p := range r.Permissions {
		if p.Matches(resource) && p.Allows(action) {
			return true
		}
	}
	return false
}

// HasWildcardGrant reports whether the role holds a "*" resource permission
// or any manage action. Seeding uses it to detect administrative roles that
// lost their broad grant.
func (r *Role) HasWildcardGrant() bool {
	for _, p := range r.Permissions {
		if p.Resource == permission.WildcardResource {
			return true
		}
		if slices.Contains(p.Actions, permission.ActionManage) {
			return true
		}
	}
	return false
}

// AddPermission appends the permission unless an entry with the same
// (resource, scope) already exists. Returns true when appended; UpdatedAt
// is bumped only then.
func (r *Role) AddPermission(p permission.Permission) bool {
	for _, existing := range r.Permissions {
		if existing.Resource == p.Resource && existing.Scope == p.Scope {
			return false
		}
	}
	r.Permissions = append(r.Permissions, p.Clone())
	r.UpdatedAt = time.Now().UTC()
	return true
}

// RemovePermission drops every permission for the resource. Returns true
// when at least one entry was removed; UpdatedAt is bumped only then.
func (r *Role) RemovePermission(resource string) bool {
	kept := r.Permissions[:0]
	removed := false
	for _, p := range r.Permissions {
		if p.Resource == resource {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	r.Permissions = kept
	if removed {
		r.UpdatedAt = time.Now().UTC()
	}
	return removed
}

// ReplacePermissions swaps the permission list wholesale and bumps UpdatedAt.
// Lifecycle updates use it when a patch supplies a full permission set.
func (r *Role) ReplacePermissions(perms []permission.Permission) {
	r.Permissions = clonePermissions(perms)
	r.UpdatedAt = time.Now().UTC()
}

// ValidateModifiable fails with ErrImmutableRole for system or global roles.
// Callers must invoke it before any rename, permission change or deletion.
func (r *Role) ValidateModifiable() error {
	if r.IsSystemRole || r.IsGlobal {
		return errors.Join(ErrImmutableRole, fmt.Errorf("role %q", r.Name))
	}
	return nil
}

// BelongsTo reports whether the role is visible to the tenant: its own
// roles plus all global roles.
func (r *Role) BelongsTo(tenantID uuid.UUID) bool {
	if r.IsGlobal {
		return true
	}
	return r.TenantID != nil && *r.TenantID == tenantID
}

// Clone returns a deep copy safe to mutate independently.
func (r *Role) Clone() Role {
	out := *r
	if r.TenantID != nil {
		id := *r.TenantID
		out.TenantID = &id
	}
	if r.ParentRoleID != nil {
		id := *r.ParentRoleID
		out.ParentRoleID = &id
	}
	out.Permissions = clonePermissions(r.Permissions)
	return out
}

func clonePermissions(perms []permission.Permission) []permission.Permission {
	if perms == nil {
		return nil
	}
	out := make([]permission.Permission, len(perms))
	for i, p := range perms {
		out[i] = p.Clone()
	}
	return out
}
