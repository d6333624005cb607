package alias

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/tmpl"
)

// Mapper hands out aliases and tracks them per tree node.
//
// The root scope holds aliases of the outer statement (set by the caller,
// e.g. the main table of a search). Every entity node gets its own scope
// extending the scope of its parent entity, or the root scope.
type Mapper struct {
	seq   *Sequence
	root  *Scope
	nodes map[model.Node]*Scope
}

// NewMapper creates a mapper drawing aliases from seq. A nil seq gets a
// private sequence.
func NewMapper(seq *Sequence) *Mapper {
	if seq == nil {
		seq = NewSequence()
	}
	return &Mapper{
		seq:   seq,
		root:  NewScope(nil),
		nodes: make(map[model.Node]*Scope),
	}
}

// Clone returns a mapper with empty scopes sharing this mapper's sequence.
// Use it for nested builders of the same statement.
func (m *Mapper) Clone() *Mapper {
	return NewMapper(m.seq)
}

// Sequence returns the shared id generator.
func (m *Mapper) Sequence() *Sequence {
	return m.seq
}

// NextAlias returns a fresh alias: "a" followed by the zero padded
// sequence value (a00001, a00002, ...).
func (m *Mapper) NextAlias() string {
	return fmt.Sprintf("a%05d", m.seq.Next())
}

// RootScope returns the root scope.
func (m *Mapper) RootScope() *Scope {
	return m.root
}

// SetRootAlias binds name to alias in the root scope.
func (m *Mapper) SetRootAlias(name, alias string) {
	m.root.Set(name, alias)
}

// RootAlias returns the root alias of name.
func (m *Mapper) RootAlias(name string) (string, bool) {
	return m.root.Own(name)
}

// NodeScope returns the scope of node, creating it as an extension of
// parent when it does not exist yet. A nil parent means the root scope.
func (m *Mapper) NodeScope(node model.Node, parent *Scope) *Scope {
	if s, ok := m.nodes[node]; ok {
		return s
	}
	if parent == nil {
		parent = m.root
	}
	s := NewScope(parent)
	m.nodes[node] = s
	return s
}

// SetNodeAlias binds name to alias in the scope of node.
func (m *Mapper) SetNodeAlias(node model.Node, name, alias string) {
	m.NodeScope(node, nil).Set(name, alias)
}

// NodeAlias returns the alias of name owned by node's scope.
func (m *Mapper) NodeAlias(node model.Node, name string) (string, bool) {
	s, ok := m.nodes[node]
	if !ok {
		return "", false
	}
	return s.Own(name)
}

// CollectEntityMarkers assigns aliases in scope for every entity definition
// marker of text. Without onlyMissing every defined name gets a fresh alias,
// shadowing inherited ones; with onlyMissing names the scope already owns
// keep their alias.
func (m *Mapper) CollectEntityMarkers(scope *Scope, text string, onlyMissing bool) {
	seen := make(map[string]bool)
	for _, name := range tmpl.Parse(text).DefinitionMarkers() {
		name = CleanName(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		if onlyMissing {
			if _, ok := scope.Own(name); ok {
				continue
			}
		}
		scope.Set(name, m.NextAlias())
	}
}

// ResolveMarkers replaces every marker of text by its alias. @parent.X@ is
// resolved in parent, plain @X@ in scope.
func (m *Mapper) ResolveMarkers(text string, scope, parent *Scope) (string, error) {
	out, err := tmpl.Parse(text).MapMarkers(func(mk *tmpl.Marker) (string, error) {
		lookup := scope
		if mk.Parent {
			lookup = parent
		}
		if a, ok := lookup.Lookup(mk.Name); ok {
			return a, nil
		}
		return "", &MissingAliasError{Name: CleanName(mk.Name), Parent: mk.Parent, Context: text}
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

var plainAttribute = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*$`)

// AutoPrefix qualifies bare column names inside <attribute> tags with the
// single alias owned by scope. A scope without aliases leaves the text
// unchanged; a scope with several aliases cannot pick one.
func AutoPrefix(text string, scope *Scope) (string, error) {
	var err error
	out := tmpl.Parse(text).Replace(tmpl.TagAttribute, func(e *tmpl.Element) tmpl.Template {
		keep := tmpl.Template{e}
		if err != nil || len(e.Children) != 1 {
			return keep
		}
		txt, ok := e.Children[0].(*tmpl.Text)
		if !ok {
			return keep
		}
		match := plainAttribute.FindStringSubmatch(txt.Value)
		if match == nil {
			return keep
		}
		switch scope.Len() {
		case 0:
			return keep
		case 1:
			name := scope.Names()[0]
			return tmpl.Template{&tmpl.Element{
				Name: tmpl.TagAttribute,
				Children: tmpl.Template{
					&tmpl.Marker{Name: name, Parent: true},
					&tmpl.Text{Value: "." + match[1]},
				},
			}}
		default:
			err = &AmbiguousAliasError{Expression: match[1], Aliases: scope.Names()}
			return keep
		}
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// CleanName returns the canonical entity name: marker decoration removed,
// NFC normalized and upper cased. "Person", "@Person@" and
// "@parent.Person@" are the same entity.
func CleanName(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "@")
	s = strings.TrimPrefix(s, "parent.")
	s = strings.TrimSpace(s)
	return cases.Upper(language.Und).String(norm.NFC.String(s))
}
