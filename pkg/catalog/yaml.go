package catalog

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the top-level shape of a catalog overlay file.
type yamlDocument struct {
	Permissions []Node `yaml:"permissions"`
}

// LoadYAML builds a catalog from a YAML tree, applying the same validation
// as New. The document root is a "permissions" list of nested nodes:
//
//	permissions:
//	  - id: academics
//	    resource: academics
//	    display_name: Academics
//	    actions: [read, manage]
//	    scope: all
//	    children:
//	      - id: academics.classes
//	        resource: academics.classes
//	        display_name: Classes
//	        actions: [create, read, update, delete]
//	        scope: all
func LoadYAML(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidNode, err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrInvalidNode, err)
	}

	return New(doc.Permissions)
}
