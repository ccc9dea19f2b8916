// Package permission defines the permission value object used across the
// school-management RBAC core.
//
// A permission pairs a resource identifier with a set of allowed actions and
// a visibility scope. Resources are dot-separated capability domains
// (e.g., "students", "finance.fees"); the special resource "*" matches any
// resource. The "manage" action implies every other action for the same
// resource, so a permission holding only "manage" allows create, read,
// update, delete, export, import and approve as well.
//
// Scope (own/department/all) is descriptive metadata for downstream
// data-filtering logic. Authorization checks compare resource and action
// only; scope-aware filtering is each resource module's own responsibility.
//
// Permissions have a canonical string form used by persistence and
// client-facing key lists:
//
//	"<resource>:<action1>|<action2>:<scope>"
//
// ParseKey is the exact inverse of Key, so any permission survives a
// round-trip through its string form.
//
// Basic usage:
//
//	p := permission.Permission{
//	    Resource: "students",
//	    Actions:  []permission.Action{permission.ActionRead, permission.ActionUpdate},
//	    Scope:    permission.ScopeOwn,
//	}
//	p.Allows(permission.ActionRead)   // true
//	p.Allows(permission.ActionDelete) // false
//
//	admin := permission.Wildcard("*")
//	admin.Allows(permission.ActionDelete) // true, manage implies everything
package permission
