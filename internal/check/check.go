// Package check reports the entities, attributes and form fields of a
// search form that have no template definition.
//
// The composer skips such nodes with a warning; the report makes the gaps
// visible at development time and proposes skeleton templates to fill them.
package check

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
)

// Kind is the definition kind of an entry.
type Kind string

const (
	KindEntity    Kind = "entity"
	KindAttribute Kind = "attribute"
	KindField     Kind = "field"
)

// Entry is one missing definition.
type Entry struct {
	Kind Kind `json:"kind"`

	// Path locates the type: the entity chain from the root for data model
	// types, "criteria" for types only found in a criterion tree, "form"
	// for fields.
	Path string `json:"path"`

	// Type is the entity or attribute type or the field id.
	Type string `json:"type"`

	// Skeleton is a template to start the definition from.
	Skeleton string `json:"skeleton"`
}

// Report is the result of Check.
type Report struct {
	Entries []Entry `json:"missing"`

	// Checked counts the types and fields looked at.
	Checked int `json:"checked"`
}

// OK reports whether every checked type has a definition.
func (r *Report) OK() bool {
	return len(r.Entries) == 0
}

// Check walks the data model and the criterion trees and reports every type
// reg cannot build. Each type is reported once, at the first path it is
// reached by. Entity cycles in the data model are followed once.
func Check(dm *model.DataModel, reg *registry.Registry, criteria ...*model.Criteria) *Report {
	c := &checker{dm: dm, reg: reg, seen: make(map[string]bool), report: &Report{}}
	if dm != nil {
		root := dm.Root
		for _, a := range dm.Attributes {
			c.attribute(a, root, root)
		}
		for _, e := range dm.Roots {
			c.entity(e, root, e, make(map[string]bool))
		}
		for _, f := range dm.Fields {
			c.field(f)
		}
	}
	for _, cr := range criteria {
		if cr == nil {
			continue
		}
		model.Walk(cr.Nodes, func(n model.Node) {
			parent := c.rootName()
			if p := model.ParentEntity(n); p != nil {
				parent = p.Type
			}
			switch v := n.(type) {
			case *model.EntityNode:
				c.entity(v.Type, parent, "criteria", nil)
			case *model.AttributeNode:
				if v.Aggregation == model.AggCount {
					if _, ok := reg.Attribute(v.Type); !ok {
						return
					}
				}
				c.attribute(v.Type, parent, "criteria")
			}
		})
		for id := range cr.Fields {
			c.field(id)
		}
	}
	return c.report
}

type checker struct {
	dm     *model.DataModel
	reg    *registry.Registry
	seen   map[string]bool
	report *Report
}

func (c *checker) rootName() string {
	if c.dm == nil {
		return ""
	}
	return c.dm.Root
}

func (c *checker) mark(k Kind, typ string) bool {
	key := string(k) + ":" + typ
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	c.report.Checked++
	return true
}

// entity checks typ and, with a visited set, its attributes and child
// entities from the data model.
func (c *checker) entity(typ, parent, path string, visited map[string]bool) {
	if c.mark(KindEntity, typ) {
		if _, ok := c.reg.Entity(typ); !ok {
			c.add(KindEntity, path, typ, entitySkeleton(typ, c.table(typ), parent))
		}
	}
	if visited == nil || visited[typ] || c.dm == nil {
		return
	}
	visited[typ] = true
	et, ok := c.dm.Entities[typ]
	if !ok {
		return
	}
	for _, a := range et.Attributes {
		c.attribute(a, typ, path)
	}
	for _, child := range et.Entities {
		c.entity(child, typ, path+"/"+child, visited)
	}
}

func (c *checker) attribute(typ, parent, path string) {
	if !c.mark(KindAttribute, typ) {
		return
	}
	if _, ok := c.reg.Attribute(typ); !ok {
		c.add(KindAttribute, path, typ, attributeSkeleton(typ, parent))
	}
}

func (c *checker) field(id string) {
	if !c.mark(KindField, id) {
		return
	}
	if _, ok := c.reg.Basic(id); !ok {
		c.add(KindField, "form", id, "<attribute>"+ColumnName(id)+"</attribute>")
	}
}

func (c *checker) add(k Kind, path, typ, skeleton string) {
	c.report.Entries = append(c.report.Entries, Entry{Kind: k, Path: path, Type: typ, Skeleton: skeleton})
}

func (c *checker) table(typ string) string {
	if c.dm != nil {
		if et, ok := c.dm.Entities[typ]; ok && et.Table != "" {
			return et.Table
		}
	}
	return ColumnName(typ)
}

func entitySkeleton(typ, table, parent string) string {
	name := ColumnName(typ)
	if parent == "" {
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s @%s@ WHERE 1=1 <whereParts/> <groupBy/>)", table, name)
	}
	p := ColumnName(parent)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s @%s@ WHERE @%s@.%s_ID=@parent.%s@.%s_ID <whereParts/> <groupBy/>)",
		table, name, name, p, p, p)
}

func attributeSkeleton(typ, parent string) string {
	col := ColumnName(typ)
	if parent == "" {
		return col
	}
	return "@" + ColumnName(parent) + "@." + col
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// ColumnName derives an SQL column name from the last segment of a dotted
// type name: "Order.createdAt" becomes "CREATED_AT".
func ColumnName(typ string) string {
	if i := strings.LastIndex(typ, "."); i >= 0 {
		typ = typ[i+1:]
	}
	typ = camelBoundary.ReplaceAllString(strings.TrimSpace(typ), "${1}_${2}")
	typ = strings.NewReplacer("-", "_", " ", "_").Replace(typ)
	return cases.Upper(language.Und).String(typ)
}

var identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func label(name string) ast.Label {
	if identifier.MatchString(name) {
		return ast.NewIdent(name)
	}
	return ast.NewString(name)
}

// String renders the missing definitions as CUE that can be pasted into a
// definitions file. Entries are grouped by kind and sorted by type.
func (r *Report) String() string {
	if r.OK() {
		return ""
	}
	entries := append([]Entry(nil), r.Entries...)
	order := map[Kind]int{KindEntity: 0, KindAttribute: 1, KindField: 2}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return order[entries[i].Kind] < order[entries[j].Kind]
		}
		return entries[i].Type < entries[j].Type
	})

	f := &ast.File{}
	for _, e := range entries {
		var value ast.Expr
		switch e.Kind {
		case KindEntity:
			value = ast.NewStruct(ast.NewIdent("where"), ast.NewString(e.Skeleton))
		case KindAttribute:
			value = ast.NewString(e.Skeleton)
		case KindField:
			value = ast.NewStruct(
				ast.NewIdent("attribute"), ast.NewString(e.Skeleton),
				ast.NewIdent("operator"), ast.NewString("eq"),
			)
		}
		f.Decls = append(f.Decls, &ast.Field{
			Label: ast.NewIdent(string(e.Kind)),
			Value: ast.NewStruct(label(e.Type), value),
		})
	}
	b, err := format.Node(f)
	if err != nil {
		return "// " + err.Error() + "\n"
	}
	return string(b)
}
