package permission

import "errors"

// Domain errors for permission parsing and validation.
var (
	// ErrInvalidKey is returned when a permission key cannot be parsed.
	ErrInvalidKey = errors.New("permission.invalid_key")

	// ErrUnknownAction is returned when an action name is not part of the
	// closed action set.
	ErrUnknownAction = errors.New("permission.unknown_action")

	// ErrUnknownScope is returned when a scope name is not own, department or all.
	ErrUnknownScope = errors.New("permission.unknown_scope")

	// ErrEmptyResource is returned when a permission is built without a resource.
	ErrEmptyResource = errors.New("permission.empty_resource")
)
