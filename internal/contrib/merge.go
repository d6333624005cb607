package contrib

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/sqlcomposer/internal/tmpl"
)

var contributingTags = []string{
	tmpl.TagSelectPart,
	tmpl.TagFromPart,
	tmpl.TagWherePart,
	tmpl.TagGroupByPart,
	tmpl.TagHavingPart,
}

var collectingTags = []string{
	tmpl.TagSelectParts,
	tmpl.TagFromParts,
	tmpl.TagWhereParts,
	tmpl.TagGroupBy,
	tmpl.TagGroupByParts,
	tmpl.TagHavingParts,
}

// DefaultGroupBy is the expansion of a bare <groupBy/> tag.
const DefaultGroupBy = "<groupBy>GROUP BY <groupByParts/> HAVING 1=1 <havingParts/></groupBy>"

var (
	selectWord   = regexp.MustCompile(`(?i)\bSELECT\b`)
	ansiJoin     = regexp.MustCompile(`(?i)^\s*((LEFT|RIGHT|FULL)\s+)?((INNER|OUTER|CROSS)\s+)?JOIN\s`)
	groupByWords = regexp.MustCompile(`(?i)GROUP\s+BY\s*$`)
)

// Merger folds child contributions into entity templates.
type Merger struct {
	Logger *slog.Logger
}

// NewMerger returns a merger logging to logger, or to slog.Default when nil.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{Logger: logger}
}

// AutoComplete appends the collecting tags an untagged template lacks:
// " <whereParts/>" and " <groupBy/>". Templates with contributing tags are
// left alone. A bare <groupBy/> is expanded to DefaultGroupBy.
func AutoComplete(template string) string {
	t := tmpl.Parse(template)
	if !hasContributing(t) {
		if !t.Has(tmpl.TagWhereParts) {
			template += " <whereParts/>"
		}
		if !t.Has(tmpl.TagGroupBy) {
			template += " <groupBy/>"
		}
	}
	return expandGroupBy(tmpl.Parse(template)).String()
}

// Merge folds child into template and returns the contribution the template
// makes to its own parent.
//
// With consume set, child fragments fill the collecting tags of the template;
// fragments without a matching tag are passed up unchanged. Without consume
// the child is passed up whole and the collecting tags are dropped.
//
// Contributing tags of the template are then lifted into the result. A
// template without contributing tags becomes one where part (constraints) or
// one select part grouped by "1" (query).
func (m *Merger) Merge(es EntityStrategy, template string, child *Contribution, consume bool) (*Contribution, error) {
	if child == nil {
		child = New()
	}
	parent := New()
	t := tmpl.Parse(template)
	contributing := hasContributing(t)

	if consume {
		var err error
		t, err = fill(t, child, parent, contributing)
		if err != nil {
			return nil, err
		}
	} else {
		parent.Add(child)
	}
	for _, name := range collectingTags {
		t = t.Remove(name)
	}

	for _, name := range contributingTags {
		for _, e := range t.FindAll(name) {
			if part := strings.TrimSpace(e.Content()); part != "" {
				l := parent.list(name)
				*l = append(*l, part)
			}
		}
		t = t.Remove(name)
	}

	rest := strings.TrimSpace(t.String())
	switch {
	case contributing && rest != "":
		m.logger().Warn("template text outside contributing tags ignored", "text", rest)
	case !contributing && rest != "":
		if es == BuildQuery {
			parent.Select = append(parent.Select, rest)
			parent.GroupBy = append(parent.GroupBy, "1")
		} else {
			parent.Where = append(parent.Where, rest)
		}
	}
	return parent, nil
}

func (m *Merger) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// fill substitutes the collecting tags of t with child fragments. Lists
// without a tag are added to parent. In a template with contributing tags
// only collecting tags inside contributing tags count; text outside them
// is discarded anyway.
func fill(t tmpl.Template, child, parent *Contribution, contributing bool) (tmpl.Template, error) {
	has := func(name string) bool {
		if !contributing {
			return t.Has(name)
		}
		for _, c := range contributingTags {
			for _, e := range t.FindAll(c) {
				if e.Children.Has(name) {
					return true
				}
			}
		}
		return false
	}

	t = expandGroupBy(t)

	if has(tmpl.TagSelectParts) {
		t = t.ReplaceText(tmpl.TagSelectParts, func(*tmpl.Element) string { return selectText(child.Select) })
	} else {
		parent.Select = append(parent.Select, child.Select...)
	}

	if has(tmpl.TagFromParts) {
		t = splice(t, tmpl.TagFromParts, fromText(child.From))
	} else {
		parent.From = append(parent.From, child.From...)
	}

	if has(tmpl.TagWhereParts) {
		t = splice(t, tmpl.TagWhereParts, andText(child.Where))
	} else {
		parent.Where = append(parent.Where, child.Where...)
	}

	groupByConsumed := false
	havingConsumed := false
	if has(tmpl.TagGroupBy) {
		materialize := len(child.Select) != len(child.GroupBy) || len(child.Having) > 0
		if materialize {
			for _, part := range child.GroupBy {
				if err := CheckGroupByPart(part); err != nil {
					return nil, err
				}
			}
		}
		t = t.Replace(tmpl.TagGroupBy, func(e *tmpl.Element) tmpl.Template {
			body := e.Children
			static := !body.Has(tmpl.TagGroupByParts) && !body.Has(tmpl.TagHavingParts)
			if static {
				return body
			}
			if !materialize {
				return nil
			}
			if len(child.GroupBy) == 0 {
				body = dropGroupByKeyword(body)
			}
			body = groupByText(body, child.GroupBy)
			return splice(body, tmpl.TagHavingParts, andText(child.Having))
		})
		groupByConsumed = true
		havingConsumed = true
	}
	if !groupByConsumed && has(tmpl.TagGroupByParts) {
		for _, part := range child.GroupBy {
			if err := CheckGroupByPart(part); err != nil {
				return nil, err
			}
		}
		t = groupByText(t, child.GroupBy)
		groupByConsumed = true
	}
	if !havingConsumed && has(tmpl.TagHavingParts) {
		t = splice(t, tmpl.TagHavingParts, andText(child.Having))
		havingConsumed = true
	}
	if !groupByConsumed {
		parent.GroupBy = append(parent.GroupBy, child.GroupBy...)
	}
	if !havingConsumed {
		parent.Having = append(parent.Having, child.Having...)
	}
	return t, nil
}

// Constraints turns a contribution into a filter. Fragments without from
// parts stay as they are; with from parts they are wrapped into a
// correlated EXISTS sub-select. Returns nil for an empty contribution.
//
// The sub-select needs a plain table to start its FROM list; from parts
// that are all JOIN clauses give a MissingBaseTableError.
func Constraints(c *Contribution) (*Contribution, error) {
	if c.IsEmpty() {
		return nil, nil
	}
	if len(c.From) == 0 {
		return &Contribution{
			Where:   append([]string(nil), c.Where...),
			GroupBy: append([]string(nil), c.GroupBy...),
			Having:  append([]string(nil), c.Having...),
		}, nil
	}
	from := fromText(c.From)
	if !strings.HasPrefix(from, ", ") {
		return nil, &MissingBaseTableError{From: append([]string(nil), c.From...)}
	}
	var b strings.Builder
	b.WriteString("EXISTS (SELECT 1 FROM ")
	b.WriteString(strings.TrimPrefix(from, ", "))
	if len(c.Where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(c.Where, " AND "))
	}
	if len(c.Having) > 0 {
		if len(c.GroupBy) > 0 {
			b.WriteString(" GROUP BY ")
			b.WriteString(strings.Join(c.GroupBy, ", "))
		}
		b.WriteString(" HAVING ")
		b.WriteString(strings.Join(c.Having, " AND "))
	}
	b.WriteString(")")
	return FromWhere(b.String()), nil
}

// CheckGroupByPart rejects group-by fragments containing a sub-select.
func CheckGroupByPart(part string) error {
	if selectWord.MatchString(part) {
		return &InvalidGroupByError{Part: part}
	}
	return nil
}

// IsANSIJoin reports whether a from part is an explicit JOIN clause.
func IsANSIJoin(part string) bool {
	return ansiJoin.MatchString(part)
}

// ContainsSelect reports whether s contains the word SELECT.
func ContainsSelect(s string) bool {
	return selectWord.MatchString(s)
}

func hasContributing(t tmpl.Template) bool {
	for _, name := range contributingTags {
		if t.Has(name) {
			return true
		}
	}
	return false
}

func expandGroupBy(t tmpl.Template) tmpl.Template {
	return t.Replace(tmpl.TagGroupBy, func(e *tmpl.Element) tmpl.Template {
		if e.SelfClosing {
			return tmpl.Parse(DefaultGroupBy)
		}
		return tmpl.Template{e}
	})
}

// selectText joins select parts, parenthesizing sub-selects.
func selectText(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if ContainsSelect(p) && !wrapped(p) {
			p = "(" + p + ")"
		}
		out[i] = p
	}
	return strings.Join(out, ", ")
}

// fromText renders from parts as a continuation of an existing FROM list:
// plain tables sorted and de-duplicated, each prefixed ", "; JOIN clauses
// de-duplicated in encounter order after them, prefixed " ".
func fromText(parts []string) string {
	seen := make(map[string]bool)
	var tables, joins []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if IsANSIJoin(p) {
			joins = append(joins, p)
		} else {
			tables = append(tables, p)
		}
	}
	sort.Strings(tables)
	var b strings.Builder
	for _, p := range tables {
		b.WriteString(", ")
		b.WriteString(p)
	}
	for _, p := range joins {
		b.WriteString(" ")
		b.WriteString(p)
	}
	return b.String()
}

// andText renders parts as " AND p1 AND p2".
func andText(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(" AND ")
		b.WriteString(p)
	}
	return b.String()
}

// splice replaces every tag named name with text. When text is not empty,
// whitespace directly before the tag is trimmed since text brings its own
// separator.
func splice(t tmpl.Template, name, text string) tmpl.Template {
	out := make(tmpl.Template, 0, len(t))
	for _, n := range t {
		e, ok := n.(*tmpl.Element)
		if !ok {
			out = append(out, n)
			continue
		}
		if e.Name != name {
			out = append(out, &tmpl.Element{Name: e.Name, SelfClosing: e.SelfClosing, Children: splice(e.Children, name, text)})
			continue
		}
		if text == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*tmpl.Text); ok {
				out[len(out)-1] = &tmpl.Text{Value: strings.TrimRight(prev.Value, " \t\r\n")}
			}
		}
		out = append(out, &tmpl.Text{Value: text})
	}
	return out
}

// groupByText replaces <groupByParts/> with parts joined by ", ". When the
// text before the tag already ends in a group-by expression rather than the
// GROUP BY keyword, parts continue that list.
func groupByText(t tmpl.Template, parts []string) tmpl.Template {
	text := strings.Join(parts, ", ")
	out := make(tmpl.Template, 0, len(t))
	for _, n := range t {
		e, ok := n.(*tmpl.Element)
		if !ok {
			out = append(out, n)
			continue
		}
		if e.Name != tmpl.TagGroupByParts {
			out = append(out, &tmpl.Element{Name: e.Name, SelfClosing: e.SelfClosing, Children: groupByText(e.Children, parts)})
			continue
		}
		value := text
		if text != "" && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*tmpl.Text); ok && continuesList(prev.Value) {
				out[len(out)-1] = &tmpl.Text{Value: strings.TrimRight(prev.Value, " \t\r\n")}
				value = ", " + text
			}
		}
		out = append(out, &tmpl.Text{Value: value})
	}
	return out
}

// continuesList reports whether s ends in a group-by expression.
func continuesList(s string) bool {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" || groupByWords.MatchString(s) {
		return false
	}
	last := s[len(s)-1]
	return last != ',' && last != '('
}

// dropGroupByKeyword removes "GROUP BY" right before <groupByParts/>.
func dropGroupByKeyword(t tmpl.Template) tmpl.Template {
	out := make(tmpl.Template, 0, len(t))
	for _, n := range t {
		if e, ok := n.(*tmpl.Element); ok && e.Name == tmpl.TagGroupByParts && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*tmpl.Text); ok {
				out[len(out)-1] = &tmpl.Text{Value: groupByWords.ReplaceAllString(prev.Value, "")}
			}
		}
		out = append(out, n)
	}
	return out
}

// wrapped reports whether the outermost parentheses of s enclose all of it.
func wrapped(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i < len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}
