package role

import "errors"

// Domain errors for role lifecycle and persistence.
var (
	// ErrRoleNotFound is returned when no role matches the id or name within
	// the tenant-scoped + global partition.
	ErrRoleNotFound = errors.New("role.not_found")

	// ErrRoleAlreadyExists is returned when a role name is already taken
	// within its uniqueness scope.
	ErrRoleAlreadyExists = errors.New("role.already_exists")

	// ErrImmutableRole is returned when a mutation or deletion is attempted
	// on a system or global role.
	ErrImmutableRole = errors.New("role.immutable")

	// ErrGlobalRoleTenantScoped is returned when a global role is requested
	// through a tenant-scoped entry point.
	ErrGlobalRoleTenantScoped = errors.New("role.global_requires_privileged_path")

	// ErrRoleInUse is returned when deletion is blocked because users still
	// reference the role.
	ErrRoleInUse = errors.New("role.in_use")

	// ErrInvalidRole is returned when role input fails validation.
	ErrInvalidRole = errors.New("role.invalid")
)
