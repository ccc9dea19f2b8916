// Package role provides the role lifecycle use-cases of the
// school-management RBAC core: tenant-scoped create/update/delete with
// uniqueness and immutability enforcement, and the idempotent bootstrap of
// the global role set.
package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/schoolkit/pkg/catalog"
	"github.com/dmitrymomot/schoolkit/pkg/permission"
	"github.com/dmitrymomot/schoolkit/pkg/role"
)

// AssignmentChecker reports whether any user still references a role.
// Deletion is blocked while assigned, so tenants never end up with users
// pointing at a dangling role id.
type AssignmentChecker interface {
	RoleAssigned(ctx context.Context, roleID uuid.UUID, tenantID uuid.UUID) (bool, error)
}

// AssignmentCheckerFunc adapts a function to the AssignmentChecker interface.
type AssignmentCheckerFunc func(ctx context.Context, roleID uuid.UUID, tenantID uuid.UUID) (bool, error)

// RoleAssigned calls the function.
func (f AssignmentCheckerFunc) RoleAssigned(ctx context.Context, roleID uuid.UUID, tenantID uuid.UUID) (bool, error) {
	return f(ctx, roleID, tenantID)
}

// Service implements the role lifecycle use-cases over a role.Store.
type Service struct {
	store       role.Store
	assignments AssignmentChecker
	cat         *catalog.Catalog
	cache       ResolverCache
	log         *slog.Logger
}

// Option configures Service construction.
type Option func(*Service)

// WithAssignmentChecker wires the port that blocks deletion of assigned roles.
// Without it, deletion skips the assignment check.
func WithAssignmentChecker(c AssignmentChecker) Option {
	return func(s *Service) { s.assignments = c }
}

// WithCatalog overrides the permission catalog used for seeding.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.cat = c
		}
	}
}

// WithResolverCache wires a cache to invalidate on role updates and deletes.
func WithResolverCache(c ResolverCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService builds a role lifecycle service over the given store.
func NewService(store role.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		cat:   catalog.Default(),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the input of Create. IsGlobal is accepted only to be
// rejected: creating global roles is a separate privileged path, never the
// tenant-scoped one.
type CreateParams struct {
	Name        string
	Description string
	Permissions []permission.Permission
	IsGlobal    bool
}

// Create persists a new custom role for the tenant. The name must be free
// in the union of the tenant's roles and all global roles.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, params CreateParams) (role.Role, error) {
	if params.IsGlobal {
		return role.Role{}, role.ErrGlobalRoleTenantScoped
	}

	// Early existence check for a friendly error; the store's uniqueness
	// constraint remains the authoritative guard under races.
	exists, err := s.store.Exists(ctx, params.Name, tenantID)
	if err != nil {
		return role.Role{}, fmt.Errorf("check role name: %w", err)
	}
	if exists {
		return role.Role{}, errors.Join(role.ErrRoleAlreadyExists, fmt.Errorf("name %q", params.Name))
	}

	r, err := role.New(tenantID, params.Name, params.Description, params.Permissions)
	if err != nil {
		return role.Role{}, err
	}

	if err := s.store.Create(ctx, r); err != nil {
		return role.Role{}, err
	}

	s.log.InfoContext(ctx, "role created",
		slog.String("role_id", r.ID.String()),
		slog.String("tenant_id", tenantID.String()),
		slog.String("name", r.Name),
	)
	return r, nil
}

// UpdateParams carries the patch of Update. Nil fields are left untouched;
// a non-nil Permissions replaces the permission list wholesale.
type UpdateParams struct {
	Name        *string
	Description *string
	Permissions *[]permission.Permission
}

// Update applies the patch to a modifiable role resolved within the
// tenant ∪ global partition.
func (s *Service) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params UpdateParams) (role.Role, error) {
	r, err := s.store.FindByID(ctx, id, tenantID)
	if err != nil {
		return role.Role{}, err
	}
	if err := r.ValidateModifiable(); err != nil {
		return role.Role{}, err
	}

	oldName := r.Name

	if params.Name != nil && *params.Name != r.Name {
		// Renames respect the same union uniqueness as creation.
		exists, err := s.store.Exists(ctx, *params.Name, tenantID)
		if err != nil {
			return role.Role{}, fmt.Errorf("check role name: %w", err)
		}
		if exists {
			return role.Role{}, errors.Join(role.ErrRoleAlreadyExists, fmt.Errorf("name %q", *params.Name))
		}
		r.Name = *params.Name
	}
	if params.Description != nil {
		r.Description = *params.Description
	}
	if params.Permissions != nil {
		r.ReplacePermissions(*params.Permissions)
	}

	if err := r.Validate(); err != nil {
		return role.Role{}, err
	}
	if err := s.store.Update(ctx, r); err != nil {
		return role.Role{}, err
	}

	s.invalidate(ctx, tenantID, oldName, r.Name)
	s.log.InfoContext(ctx, "role updated",
		slog.String("role_id", r.ID.String()),
		slog.String("tenant_id", tenantID.String()),
	)
	return r, nil
}

// Delete removes a modifiable role. When an AssignmentChecker is wired,
// deletion is blocked with ErrRoleInUse while any user references the role.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	r, err := s.store.FindByID(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if err := r.ValidateModifiable(); err != nil {
		return err
	}

	if s.assignments != nil {
		assigned, err := s.assignments.RoleAssigned(ctx, id, tenantID)
		if err != nil {
			return fmt.Errorf("check role assignments: %w", err)
		}
		if assigned {
			return errors.Join(role.ErrRoleInUse, fmt.Errorf("role %q", r.Name))
		}
	}

	if err := s.store.Delete(ctx, id, tenantID); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID, r.Name)
	s.log.InfoContext(ctx, "role deleted",
		slog.String("role_id", id.String()),
		slog.String("tenant_id", tenantID.String()),
	)
	return nil
}

// List returns the tenant's roles plus all global roles.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]role.Role, error) {
	return s.store.FindAll(ctx, tenantID)
}

// Get resolves a single role within the tenant ∪ global partition.
func (s *Service) Get(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (role.Role, error) {
	return s.store.FindByID(ctx, id, tenantID)
}

func (s *Service) invalidate(ctx context.Context, tenantID uuid.UUID, names ...string) {
	if s.cache == nil {
		return
	}
	for _, name := range names {
		s.cache.Delete(ctx, ResolverCacheKey(tenantID, name))
	}
}
