package tmpl

import "fmt"

// SyntaxError reports a tag that does not nest.
type SyntaxError struct {
	Tag     string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template offset %d: <%s>: %s", e.Offset, e.Tag, e.Message)
}

type tokenKind int

const (
	tokOpen tokenKind = iota
	tokClose
	tokSelfClose
)

type frame struct {
	name     string
	offset   int
	children Template
}

// Parse parses a template string. It never fails; see Validate for the
// strict variant.
func Parse(s string) Template {
	t, _ := parse(s)
	return t
}

// Validate reports the first tag nesting problem in s, or nil.
func Validate(s string) error {
	_, errs := parse(s)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func parse(s string) (Template, []error) {
	var errs []error
	stack := []*frame{{}}
	var text []byte

	top := func() *frame { return stack[len(stack)-1] }
	flushText := func() {
		if len(text) > 0 {
			f := top()
			f.children = append(f.children, &Text{Value: string(text)})
			text = text[:0]
		}
	}
	// fold pops the top frame back into its parent as literal text.
	fold := func() {
		f := top()
		stack = stack[:len(stack)-1]
		p := top()
		p.children = append(p.children, &Text{Value: "<" + f.name + ">"})
		p.children = append(p.children, f.children...)
		errs = append(errs, &SyntaxError{Tag: f.name, Offset: f.offset, Message: "not closed"})
	}

	for i := 0; i < len(s); {
		switch s[i] {
		case '<':
			kind, name, end, ok := scanTag(s, i)
			if !ok {
				break
			}
			flushText()
			switch kind {
			case tokSelfClose:
				f := top()
				f.children = append(f.children, &Element{Name: name, SelfClosing: true})
			case tokOpen:
				stack = append(stack, &frame{name: name, offset: i})
			case tokClose:
				j := len(stack) - 1
				for j > 0 && stack[j].name != name {
					j--
				}
				if j == 0 {
					f := top()
					f.children = append(f.children, &Text{Value: s[i:end]})
					errs = append(errs, &SyntaxError{Tag: name, Offset: i, Message: "closing tag without opening tag"})
					break
				}
				for len(stack)-1 > j {
					fold()
				}
				f := top()
				stack = stack[:len(stack)-1]
				p := top()
				p.children = append(p.children, &Element{Name: name, Children: f.children.normalize()})
			}
			i = end
			continue
		case '@':
			m, end, ok := scanMarker(s, i)
			if !ok {
				break
			}
			flushText()
			f := top()
			f.children = append(f.children, m)
			i = end
			continue
		}
		text = append(text, s[i])
		i++
	}
	flushText()
	for len(stack) > 1 {
		fold()
	}
	return stack[0].children.normalize(), errs
}

// scanTag recognizes <name>, </name> and <name/> for known tag names.
func scanTag(s string, i int) (kind tokenKind, name string, end int, ok bool) {
	j := i + 1
	kind = tokOpen
	if j < len(s) && s[j] == '/' {
		kind = tokClose
		j++
	}
	start := j
	for j < len(s) && isNameByte(s[j], j == start) {
		j++
	}
	name = s[start:j]
	if !Tags[name] {
		return 0, "", 0, false
	}
	if j < len(s) && s[j] == '>' {
		return kind, name, j + 1, true
	}
	if kind == tokOpen && j+1 < len(s) && s[j] == '/' && s[j+1] == '>' {
		return tokSelfClose, name, j + 2, true
	}
	return 0, "", 0, false
}

const parentPrefix = "parent."

// scanMarker recognizes @Name@ and @parent.Name@.
func scanMarker(s string, i int) (*Marker, int, bool) {
	j := i + 1
	parent := false
	if len(s)-j > len(parentPrefix) && s[j:j+len(parentPrefix)] == parentPrefix {
		parent = true
		j += len(parentPrefix)
	}
	start := j
	for j < len(s) && isIdentByte(s[j], j == start) {
		j++
	}
	if j == start || j >= len(s) || s[j] != '@' {
		return nil, 0, false
	}
	return &Marker{Name: s[start:j], Parent: parent}, j + 1, true
}

func isNameByte(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

func isIdentByte(c byte, first bool) bool {
	return c == '_' || isNameByte(c, first)
}
