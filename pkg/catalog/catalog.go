package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
)

// Node is a single entry in the permission catalog tree.
// ID is unique across the whole tree; Children nest recursively and each
// child's ParentID equals its parent's ID.
type Node struct {
	ID          string              `json:"id" yaml:"id"`
	Resource    string              `json:"resource" yaml:"resource"`
	DisplayName string              `json:"display_name" yaml:"display_name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Actions     []permission.Action `json:"actions" yaml:"actions"`
	Scope       permission.Scope    `json:"scope" yaml:"scope"`
	ParentID    string              `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Children    []Node              `json:"children,omitempty" yaml:"children,omitempty"`
	Icon        string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Order       int                 `json:"order" yaml:"order"`
}

// Permission converts the node into its default permission value.
func (n Node) Permission() permission.Permission {
	return permission.Permission{
		Resource: n.Resource,
		Actions:  slices.Clone(n.Actions),
		Scope:    n.Scope,
	}
}

// Catalog is an immutable permission catalog. Construct one with New or
// LoadYAML, or use the process-wide Default. All methods are safe for
// unlimited concurrent use.
type Catalog struct {
	tree []Node
	// flat caches the pre-order traversal; byID indexes into it.
	flat []Node
	byID map[string]int
}

// New validates the node tree and builds a catalog over it.
// Empty parent ids on children are filled in from the enclosing node;
// a non-empty mismatching parent id is rejected.
func New(nodes []Node) (*Catalog, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyTree
	}

	tree := cloneNodes(nodes)
	if err := normalize(tree, ""); err != nil {
		return nil, err
	}

	flat := flattenNodes(tree, nil)
	byID := make(map[string]int, len(flat))
	for i, n := range flat {
		if _, exists := byID[n.ID]; exists {
			return nil, errors.Join(ErrDuplicateID, fmt.Errorf("id %q", n.ID))
		}
		byID[n.ID] = i
	}

	return &Catalog{tree: tree, flat: flat, byID: byID}, nil
}

// Tree returns the nested node structure. The result is a deep copy,
// safe for callers to modify.
func (c *Catalog) Tree() []Node {
	return cloneNodes(c.tree)
}

// Flatten returns every node in pre-order: parents before children,
// depth-first, original sibling order preserved. The result is a deep copy.
func (c *Catalog) Flatten() []Node {
	return cloneNodes(c.flat)
}

// FindByID returns the first node whose id matches, searched depth-first.
// The second return value reports whether a node was found.
func (c *Catalog) FindByID(id string) (Node, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Node{}, false
	}
	n := c.flat[i]
	n.Children = cloneNodes(n.Children)
	n.Actions = slices.Clone(n.Actions)
	return n, true
}

// DescendantIDs returns the node's id followed by every transitive child id
// in pre-order, without duplicates. Unknown ids yield nil.
func (c *Catalog) DescendantIDs(id string) []string {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}

	ids := []string{id}
	var walk func(children []Node)
	walk = func(children []Node) {
		for _, child := range children {
			ids = append(ids, child.ID)
			walk(child.Children)
		}
	}
	walk(c.flat[i].Children)
	return ids
}

// Len returns the total number of nodes in the catalog.
func (c *Catalog) Len() int {
	return len(c.flat)
}

// normalize validates every node and fills in empty child parent ids.
func normalize(nodes []Node, parentID string) error {
	for i := range nodes {
		n := &nodes[i]
		if n.ID == "" || n.Resource == "" {
			return errors.Join(ErrInvalidNode, fmt.Errorf("node %q: id and resource are required", n.ID))
		}
		for _, a := range n.Actions {
			if !a.Valid() {
				return errors.Join(ErrInvalidNode, fmt.Errorf("node %q: unknown action %q", n.ID, a))
			}
		}
		if n.Scope != "" && !n.Scope.Valid() {
			return errors.Join(ErrInvalidNode, fmt.Errorf("node %q: unknown scope %q", n.ID, n.Scope))
		}

		switch n.ParentID {
		case "":
			n.ParentID = parentID
		case parentID:
		default:
			return errors.Join(ErrParentMismatch,
				fmt.Errorf("node %q: parent id %q, nested under %q", n.ID, n.ParentID, parentID))
		}

		if err := normalize(n.Children, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// flattenNodes appends nodes depth-first, parents first, keeping the nested
// children on each flattened entry so descendant walks stay cheap.
func flattenNodes(nodes []Node, acc []Node) []Node {
	for _, n := range nodes {
		acc = append(acc, n)
		acc = flattenNodes(n.Children, acc)
	}
	return acc
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Actions = slices.Clone(n.Actions)
		n.Children = cloneNodes(n.Children)
		out[i] = n
	}
	return out
}
