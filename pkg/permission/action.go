package permission

import (
	"errors"
	"fmt"
)

// Action is an operation kind a permission can allow on a resource.
// The set is closed; ParseAction rejects anything outside it.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionApprove Action = "approve"

	// ActionManage implies every other action for the same resource.
	ActionManage Action = "manage"
)

// AllActions lists every action in declaration order, manage last.
func AllActions() []Action {
	return []Action{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionExport, ActionImport, ActionApprove, ActionManage,
	}
}

// ManagedActions lists the actions implied by manage.
func ManagedActions() []Action {
	return []Action{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionExport, ActionImport, ActionApprove,
	}
}

// Valid reports whether the action belongs to the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionExport, ActionImport, ActionApprove, ActionManage:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (a Action) String() string { return string(a) }

// ParseAction converts a string into an Action.
// Returns ErrUnknownAction for anything outside the closed set.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", errors.Join(ErrUnknownAction, fmt.Errorf("action %q", s))
	}
	return a, nil
}

// Scope describes the breadth of data visibility a permission grants.
// Scopes widen in the order own < department < all.
type Scope string

const (
	ScopeOwn        Scope = "own"
	ScopeDepartment Scope = "department"
	ScopeAll        Scope = "all"
)

// scopeRank orders scopes by breadth for comparison.
var scopeRank = map[Scope]int{
	ScopeOwn:        0,
	ScopeDepartment: 1,
	ScopeAll:        2,
}

// Valid reports whether the scope is one of own, department or all.
func (s Scope) Valid() bool {
	_, ok := scopeRank[s]
	return ok
}

// String implements fmt.Stringer.
func (s Scope) String() string { return string(s) }

// Wider reports whether s grants at least as broad visibility as other.
// Unknown scopes never compare as wider.
func (s Scope) Wider(other Scope) bool {
	sr, ok := scopeRank[s]
	if !ok {
		return false
	}
	or, ok := scopeRank[other]
	if !ok {
		return false
	}
	return sr >= or
}

// ParseScope converts a string into a Scope.
// Returns ErrUnknownScope for anything outside the closed set.
func ParseScope(s string) (Scope, error) {
	sc := Scope(s)
	if !sc.Valid() {
		return "", errors.Join(ErrUnknownScope, fmt.Errorf("scope %q", s))
	}
	return sc, nil
}
