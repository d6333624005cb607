package tmpl

import "strings"

// Contributing tags lift a literal fragment into the caller's contribution.
const (
	TagAttribute   = "attribute"
	TagSelectPart  = "selectPart"
	TagFromPart    = "fromPart"
	TagWherePart   = "wherePart"
	TagGroupByPart = "groupByPart"
	TagHavingPart  = "havingPart"
)

// Collecting tags accept child contributions.
const (
	TagSelectParts  = "selectParts"
	TagFromParts    = "fromParts"
	TagWhereParts   = "whereParts"
	TagGroupBy      = "groupBy"
	TagGroupByParts = "groupByParts"
	TagHavingParts  = "havingParts"
)

// Tags is the set of recognized tag names.
var Tags = map[string]bool{
	TagAttribute:    true,
	TagSelectPart:   true,
	TagFromPart:     true,
	TagWherePart:    true,
	TagGroupByPart:  true,
	TagHavingPart:   true,
	TagSelectParts:  true,
	TagFromParts:    true,
	TagWhereParts:   true,
	TagGroupBy:      true,
	TagGroupByParts: true,
	TagHavingParts:  true,
}

// Node is one node of a template.
type Node interface {
	render(b *strings.Builder)
}

// Text is literal SQL.
type Text struct {
	Value string
}

// Marker is an alias marker, @Name@ or @parent.Name@.
type Marker struct {
	Name   string
	Parent bool
}

// Element is a structural tag with its content.
type Element struct {
	Name        string
	SelfClosing bool
	Children    Template
}

func (t *Text) render(b *strings.Builder) { b.WriteString(t.Value) }

func (m *Marker) render(b *strings.Builder) {
	b.WriteByte('@')
	if m.Parent {
		b.WriteString("parent.")
	}
	b.WriteString(m.Name)
	b.WriteByte('@')
}

func (e *Element) render(b *strings.Builder) {
	if e.SelfClosing {
		b.WriteString("<" + e.Name + "/>")
		return
	}
	b.WriteString("<" + e.Name + ">")
	e.Children.render(b)
	b.WriteString("</" + e.Name + ">")
}

// String renders the marker back to template syntax.
func (m *Marker) String() string {
	var b strings.Builder
	m.render(&b)
	return b.String()
}

// Content renders the element's children.
func (e *Element) Content() string {
	return e.Children.String()
}

// Template is an ordered list of nodes.
type Template []Node

func (t Template) render(b *strings.Builder) {
	for _, n := range t {
		n.render(b)
	}
}

// String renders the template back to text.
func (t Template) String() string {
	var b strings.Builder
	t.render(&b)
	return b.String()
}

// Find returns the first element named name, searching depth first.
func (t Template) Find(name string) (*Element, bool) {
	for _, n := range t {
		e, ok := n.(*Element)
		if !ok {
			continue
		}
		if e.Name == name {
			return e, true
		}
		if found, ok := e.Children.Find(name); ok {
			return found, true
		}
	}
	return nil, false
}

// Has reports whether an element named name exists.
func (t Template) Has(name string) bool {
	_, ok := t.Find(name)
	return ok
}

// FindAll returns every outermost element named name in document order.
func (t Template) FindAll(name string) []*Element {
	var out []*Element
	for _, n := range t {
		e, ok := n.(*Element)
		if !ok {
			continue
		}
		if e.Name == name {
			out = append(out, e)
			continue
		}
		out = append(out, e.Children.FindAll(name)...)
	}
	return out
}

// Replace substitutes every outermost element named name with the nodes
// returned by fn. Content of a replaced element is not searched further.
func (t Template) Replace(name string, fn func(e *Element) Template) Template {
	out := make(Template, 0, len(t))
	for _, n := range t {
		e, ok := n.(*Element)
		if !ok {
			out = append(out, n)
			continue
		}
		if e.Name == name {
			out = append(out, fn(e)...)
			continue
		}
		out = append(out, &Element{
			Name:        e.Name,
			SelfClosing: e.SelfClosing,
			Children:    e.Children.Replace(name, fn),
		})
	}
	return out.normalize()
}

// ReplaceText substitutes every element named name with literal text.
func (t Template) ReplaceText(name string, fn func(e *Element) string) Template {
	return t.Replace(name, func(e *Element) Template {
		return Template{&Text{Value: fn(e)}}
	})
}

// Remove drops every element named name together with its content.
func (t Template) Remove(name string) Template {
	return t.Replace(name, func(*Element) Template { return nil })
}

// Unwrap replaces every element named name by its children.
func (t Template) Unwrap(name string) Template {
	return t.Replace(name, func(e *Element) Template { return e.Children })
}

// DefinitionMarkers returns the names of entity definition markers in
// document order: plain @Name@ markers not directly followed by a dot.
// @Name@.COLUMN is a usage; @Name@ after a table name defines the alias.
func (t Template) DefinitionMarkers() []string {
	var out []string
	for i, n := range t {
		switch v := n.(type) {
		case *Marker:
			if v.Parent {
				continue
			}
			if i+1 < len(t) {
				if next, ok := t[i+1].(*Text); ok && strings.HasPrefix(next.Value, ".") {
					continue
				}
			}
			out = append(out, v.Name)
		case *Element:
			out = append(out, v.Children.DefinitionMarkers()...)
		}
	}
	return out
}

// Markers returns every marker in document order.
func (t Template) Markers() []*Marker {
	var out []*Marker
	for _, n := range t {
		switch v := n.(type) {
		case *Marker:
			out = append(out, v)
		case *Element:
			out = append(out, v.Children.Markers()...)
		}
	}
	return out
}

// MapMarkers replaces every marker by the text fn returns for it.
// The first error aborts the walk.
func (t Template) MapMarkers(fn func(m *Marker) (string, error)) (Template, error) {
	out := make(Template, 0, len(t))
	for _, n := range t {
		switch v := n.(type) {
		case *Marker:
			s, err := fn(v)
			if err != nil {
				return nil, err
			}
			out = append(out, &Text{Value: s})
		case *Element:
			children, err := v.Children.MapMarkers(fn)
			if err != nil {
				return nil, err
			}
			out = append(out, &Element{Name: v.Name, SelfClosing: v.SelfClosing, Children: children})
		default:
			out = append(out, n)
		}
	}
	return out.normalize(), nil
}

// normalize merges adjacent text nodes and drops empty ones.
func (t Template) normalize() Template {
	out := t[:0:0]
	for _, n := range t {
		txt, ok := n.(*Text)
		if !ok {
			out = append(out, n)
			continue
		}
		if txt.Value == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok {
				out[len(out)-1] = &Text{Value: prev.Value + txt.Value}
				continue
			}
		}
		out = append(out, txt)
	}
	return out
}
