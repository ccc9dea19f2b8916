// Package catalog provides the static hierarchical catalog of every
// definable permission in the system.
//
// A Catalog is an immutable tree of nodes, each pairing a permission
// resource with its allowed actions, default scope and display metadata.
// It is built once per process (Default is a cached constant) and shared
// read-only by unlimited concurrent callers without synchronization.
//
// The catalog is pure data plus traversal: administrative UIs use Tree and
// Flatten to render permission pickers, and seeding logic uses node
// definitions to derive default role permissions. Lookups that miss return
// a zero value, never an error.
//
// Deployments that need a custom tree can load one from YAML:
//
//	c, err := catalog.LoadYAML(file)
//	if err != nil {
//	    // malformed tree: duplicate ids, broken parent links, unknown actions
//	}
//	node, ok := c.FindByID("academics.classes")
package catalog
