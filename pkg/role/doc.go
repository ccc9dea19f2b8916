// Package role defines the role aggregate of the school-management RBAC
// core and the persistence port it is stored through.
//
// A role belongs to exactly one tenant or is global (shared across all
// tenants, tenant id nil). Role names are unique within their scope: per
// tenant for tenant roles, across the whole system for global roles.
// System and global roles are immutable through normal lifecycle
// operations; callers must check ValidateModifiable before mutating.
//
// The Store interface resolves roles across the tenant-scoped + global
// partition: lookups by id or name consult the union of the tenant's own
// roles and all global roles. Stores are the authoritative guard for the
// name-uniqueness invariant; a duplicate create must fail with
// ErrRoleAlreadyExists regardless of any application-level existence check
// performed first.
//
// NewMemoryStore provides a thread-safe in-memory implementation for tests
// and development; production stores live in svc/role.
package role
