// Package registry holds the SQL template definitions the composer works
// from: one EntityDef per entity type, one AttributeDef per attribute type
// and BasicDefs for simple form fields.
//
// Definitions are usually loaded from CUE files (see LoadDir) but can be
// registered in code, which is the only way to attach a Rewrite hook.
package registry

import (
	"sort"

	"github.com/roach88/sqlcomposer/internal/alias"
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/model"
)

// RewriteFunc adjusts an entity template before markers are collected.
// parent is the alias scope of the enclosing entity (the root scope for
// top-level entities); its Lookup sees every alias visible to the node.
// It may return the template unchanged.
type RewriteFunc func(node *model.EntityNode, es contrib.EntityStrategy, template string, parent *alias.Scope) (string, error)

// EntityDef is the template pair of an entity type.
type EntityDef struct {
	Type string

	// Select is used when the entity contributes to a query.
	Select string

	// Where is used when the entity contributes constraints.
	Where string

	// OneToMany selects consume mode for query building. Nil means the
	// composer's default policy.
	OneToMany *bool

	Rewrite RewriteFunc
}

// Template returns the template for es.
func (d *EntityDef) Template(es contrib.EntityStrategy) string {
	if es == contrib.BuildQuery {
		return d.Select
	}
	return d.Where
}

// Consume reports whether the query template consumes its children,
// falling back to def when OneToMany is unset.
func (d *EntityDef) Consume(def bool) bool {
	if d.OneToMany == nil {
		return def
	}
	return *d.OneToMany
}

// AttributeDef is the template pair of an attribute type.
type AttributeDef struct {
	Type string

	Select string
	Where  string

	// PlainBind renders values as literals instead of binds.
	PlainBind bool
}

// Template returns the select template for query strategies and the where
// template otherwise. A missing template falls back to the other one.
func (d *AttributeDef) Template(as contrib.AttributeStrategy) string {
	if as == contrib.QueryOfAttributeAndConstraintOfContext {
		if d.Select != "" {
			return d.Select
		}
		return d.Where
	}
	if d.Where != "" {
		return d.Where
	}
	return d.Select
}

// BasicDef binds simple form fields to one constraint on the root entity.
type BasicDef struct {
	Name string

	// Fields are the form field ids whose values feed the operator, in
	// value order.
	Fields []string

	// Attribute is the constraint template.
	Attribute string

	Operator  model.Operator
	PlainBind bool
}

// Registry maps type names to definitions.
type Registry struct {
	entities   map[string]*EntityDef
	attributes map[string]*AttributeDef
	basics     []*BasicDef
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entities:   make(map[string]*EntityDef),
		attributes: make(map[string]*AttributeDef),
	}
}

// SetEntity registers or replaces the definition of def.Type.
func (r *Registry) SetEntity(def *EntityDef) {
	r.entities[def.Type] = def
}

// SetAttribute registers or replaces the definition of def.Type.
func (r *Registry) SetAttribute(def *AttributeDef) {
	r.attributes[def.Type] = def
}

// AddBasic appends a basic definition. Basic definitions apply in the order
// they were added.
func (r *Registry) AddBasic(def *BasicDef) {
	r.basics = append(r.basics, def)
}

// Entity returns the definition of an entity type.
func (r *Registry) Entity(typ string) (*EntityDef, bool) {
	d, ok := r.entities[typ]
	return d, ok
}

// Attribute returns the definition of an attribute type.
func (r *Registry) Attribute(typ string) (*AttributeDef, bool) {
	d, ok := r.attributes[typ]
	return d, ok
}

// Basics returns the basic definitions in registration order.
func (r *Registry) Basics() []*BasicDef {
	return r.basics
}

// Basic returns the basic definition that reads field id.
func (r *Registry) Basic(id string) (*BasicDef, bool) {
	for _, b := range r.basics {
		for _, f := range b.Fields {
			if f == id {
				return b, true
			}
		}
	}
	return nil, false
}

// EntityTypes returns the registered entity types, sorted.
func (r *Registry) EntityTypes() []string {
	return sortedKeys(r.entities)
}

// AttributeTypes returns the registered attribute types, sorted.
func (r *Registry) AttributeTypes() []string {
	return sortedKeys(r.attributes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
