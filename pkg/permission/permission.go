package permission

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// WildcardResource matches any resource in an authorization check.
	WildcardResource = "*"

	// keySeparator splits resource, actions and scope in the canonical key form.
	keySeparator = ":"

	// actionSeparator splits actions inside the canonical key form.
	actionSeparator = "|"
)

// Permission is a value object granting a set of actions on a resource
// within a visibility scope. Conditions carry optional free-form metadata
// consumed by downstream business logic; they do not affect Allows.
type Permission struct {
	Resource   string         `json:"resource" yaml:"resource"`
	Actions    []Action       `json:"actions" yaml:"actions"`
	Scope      Scope          `json:"scope" yaml:"scope"`
	Conditions map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Wildcard builds a manage-everything permission for the given resource.
// The scope defaults to all; pass a single scope to narrow it.
// Wildcard("*") is the conventional grant for administrative roles.
func Wildcard(resource string, scope ...Scope) Permission {
	s := ScopeAll
	if len(scope) > 0 && scope[0].Valid() {
		s = scope[0]
	}
	return Permission{
		Resource: resource,
		Actions:  []Action{ActionManage},
		Scope:    s,
	}
}

// Allows reports whether the permission grants the action, either directly
// or through the manage implication.
func (p Permission) Allows(action Action) bool {
	for _, a := range p.Actions {
		if a == action || a == ActionManage {
			return true
		}
	}
	return false
}

// Matches reports whether the permission applies to the resource,
// honoring the "*" wildcard.
func (p Permission) Matches(resource string) bool {
	return p.Resource == WildcardResource || p.Resource == resource
}

// Validate checks that the permission has a resource, at least one valid
// action and a valid scope.
func (p Permission) Validate() error {
	if p.Resource == "" {
		return ErrEmptyResource
	}
	if len(p.Actions) == 0 {
		return errors.Join(ErrUnknownAction, fmt.Errorf("resource %q has no actions", p.Resource))
	}
	for _, a := range p.Actions {
		if !a.Valid() {
			return errors.Join(ErrUnknownAction, fmt.Errorf("resource %q action %q", p.Resource, a))
		}
	}
	if !p.Scope.Valid() {
		return errors.Join(ErrUnknownScope, fmt.Errorf("resource %q scope %q", p.Resource, p.Scope))
	}
	return nil
}

// Key returns the canonical string form "<resource>:<a1>|<a2>:<scope>".
// ParseKey is its exact inverse.
func (p Permission) Key() string {
	actions := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		actions[i] = string(a)
	}
	return p.Resource + keySeparator + strings.Join(actions, actionSeparator) + keySeparator + string(p.Scope)
}

// String implements fmt.Stringer using the canonical key form.
func (p Permission) String() string { return p.Key() }

// ParseKey rebuilds a Permission from its canonical key form.
// Resources may themselves contain ":" (legacy identifiers), so the actions
// and scope segments are taken from the right.
func ParseKey(key string) (Permission, error) {
	parts := strings.Split(key, keySeparator)
	if len(parts) < 3 {
		return Permission{}, errors.Join(ErrInvalidKey, fmt.Errorf("key %q", key))
	}

	scope, err := ParseScope(parts[len(parts)-1])
	if err != nil {
		return Permission{}, errors.Join(ErrInvalidKey, err)
	}

	rawActions := strings.Split(parts[len(parts)-2], actionSeparator)
	actions := make([]Action, 0, len(rawActions))
	for _, raw := range rawActions {
		a, err := ParseAction(raw)
		if err != nil {
			return Permission{}, errors.Join(ErrInvalidKey, err)
		}
		actions = append(actions, a)
	}

	resource := strings.Join(parts[:len(parts)-2], keySeparator)
	if resource == "" {
		return Permission{}, errors.Join(ErrInvalidKey, ErrEmptyResource)
	}

	return Permission{Resource: resource, Actions: actions, Scope: scope}, nil
}

// Equal reports whether two permissions grant the same resource, action set
// (order-insensitive) and scope. Conditions are ignored.
func (p Permission) Equal(other Permission) bool {
	if p.Resource != other.Resource || p.Scope != other.Scope {
		return false
	}
	if len(p.Actions) != len(other.Actions) {
		return false
	}
	a1 := slices.Clone(p.Actions)
	a2 := slices.Clone(other.Actions)
	slices.Sort(a1)
	slices.Sort(a2)
	return slices.Equal(a1, a2)
}

// Clone returns a deep copy safe to mutate independently.
func (p Permission) Clone() Permission {
	return Permission{
		Resource:   p.Resource,
		Actions:    slices.Clone(p.Actions),
		Scope:      p.Scope,
		Conditions: maps.Clone(p.Conditions),
	}
}
