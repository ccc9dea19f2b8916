package catalog

import "errors"

// Domain errors for catalog construction.
var (
	// ErrDuplicateID is returned when two nodes in the tree share an id.
	ErrDuplicateID = errors.New("catalog.duplicate_id")

	// ErrParentMismatch is returned when a child's parent id does not match
	// the node it is nested under.
	ErrParentMismatch = errors.New("catalog.parent_mismatch")

	// ErrInvalidNode is returned when a node is missing its id or resource,
	// or carries an unknown action or scope.
	ErrInvalidNode = errors.New("catalog.invalid_node")

	// ErrEmptyTree is returned when a catalog is built without any nodes.
	ErrEmptyTree = errors.New("catalog.empty_tree")
)
