package model

import "sort"

// Criteria is one search request: simple form field values plus the
// criterion tree roots.
type Criteria struct {
	// Fields maps a form field id to its value. A nil value means the field
	// is empty and its basic definition is skipped.
	Fields map[string]any

	// Nodes are the criterion tree roots in form order.
	Nodes []Node
}

// FieldValue returns the value of a field and whether it is set.
func (c *Criteria) FieldValue(id string) (any, bool) {
	if c == nil || c.Fields == nil {
		return nil, false
	}
	v, ok := c.Fields[id]
	return v, ok && v != nil
}

// DataModel describes which entities, attributes and fields a search form
// offers. It drives the completeness check; the composer never reads it.
type DataModel struct {
	// Root is the entity type of the outer statement, the parent of every
	// root entity (CUSTOMER for a customer search).
	Root string

	// Roots are the entity types offered at the top of the tree.
	Roots []string

	// Attributes offered at the top of the tree, outside any entity.
	Attributes []string

	// Entities maps an entity type to its shape.
	Entities map[string]*EntityType

	// Fields are the simple form field ids.
	Fields []string
}

// EntityType is the shape of one entity in the data model.
type EntityType struct {
	Name string

	// Table is the physical table name, used for skeleton templates.
	Table string

	Attributes []string

	// Entities are the child entity types reachable from this one.
	Entities []string
}

// EntityNames returns the entity type names in sorted order.
func (dm *DataModel) EntityNames() []string {
	names := make([]string, 0, len(dm.Entities))
	for name := range dm.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits every node of the trees depth first.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children(), fn)
	}
}
