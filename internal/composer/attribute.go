package composer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/sqlcomposer/internal/alias"
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/dialect"
	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
	"github.com/roach88/sqlcomposer/internal/tmpl"
)

// countDefault stands in for attributes without a definition that are only
// counted.
var countDefault = &registry.AttributeDef{Select: "1", Where: "1"}

func (c *Composer) buildAttribute(node *model.AttributeNode, as contrib.AttributeStrategy) (*contrib.Contribution, error) {
	def, ok := c.reg.Attribute(node.Type)
	if !ok {
		if node.Aggregation != model.AggCount {
			c.logger.Warn("no definition for attribute", "attribute", node.Type)
			return contrib.New(), nil
		}
		def = countDefault
	}
	if err := checkArity(node.Type, node.Operator, node.Values); err != nil {
		return nil, err
	}

	scope := c.scopeOf(model.ParentEntity(node))
	c.logger.Debug("building attribute", "attribute", node.Type, "strategy", as.String(),
		"operator", node.Operator.String(), "aggregation", node.Aggregation.String())

	out, err := c.createAttributePart(as, node.Aggregation, def.Template(as), node.Operator,
		bindNames(len(node.Values)), node.Values, def.PlainBind, scope)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", node.Type, err)
	}
	if as == contrib.QueryOfAttributeAndConstraintOfContext && len(out.Select) == 0 {
		out.Select = append(out.Select, "NULL")
		out.GroupBy = append(out.GroupBy, "NULL")
	}
	for _, inj := range c.injections {
		inj.PostBuildAttribute(node, as, out)
	}
	return out, nil
}

// createAttributePart splits an attribute template into its from part,
// where part and attribute expression and emits what as asks for.
//
// A template without <attribute> is the attribute expression. A template
// with text besides the attribute and no <wherePart> is a where part as a
// whole, with the comparison rendered in place of <attribute>.
func (c *Composer) createAttributePart(as contrib.AttributeStrategy, agg model.Aggregation, stm string,
	op model.Operator, names []string, values []any, plain bool, scope *alias.Scope) (*contrib.Contribution, error) {
	out := contrib.New()
	if strings.TrimSpace(stm) == "" {
		return out, nil
	}
	if !tmpl.HasTag(stm, tmpl.TagAttribute) {
		stm = tmpl.Wrap(tmpl.TagAttribute, stm)
	}
	stm, err := alias.AutoPrefix(stm, scope)
	if err != nil {
		return nil, err
	}
	positive, negate := op.Normalize()
	isAgg := agg != model.AggNone

	fromPart, hasFrom := tmpl.Tag(stm, tmpl.TagFromPart)
	stm = strings.TrimSpace(tmpl.RemoveTag(stm, tmpl.TagFromPart))
	wherePart, hasWhere := tmpl.Tag(stm, tmpl.TagWherePart)
	if !hasWhere && strings.TrimSpace(tmpl.RemoveTag(stm, tmpl.TagAttribute)) != "" {
		wherePart, hasWhere = stm, true
		stm = ""
	}
	stm = strings.TrimSpace(tmpl.RemoveTag(stm, tmpl.TagWherePart))
	attPart, hasAtt := tmpl.Tag(stm, tmpl.TagAttribute)
	stm = strings.TrimSpace(tmpl.RemoveTag(stm, tmpl.TagAttribute))
	if stm != "" {
		c.logger.Warn("attribute template text outside tags ignored", "text", stm)
	}

	if hasFrom {
		// from part aliases are private to this attribute
		local := alias.NewScope(scope)
		c.mapper.CollectEntityMarkers(local, fromPart, true)
		if fromPart, err = c.mapper.ResolveMarkers(fromPart, local, local); err != nil {
			return nil, err
		}
		out.From = append(out.From, fromPart)
		scope = local
	}

	context := func() (string, error) {
		w := tmpl.ReplaceTag(wherePart, tmpl.TagAttribute, func(string) string { return "1=1" })
		return c.createSqlPart(model.AggNone, strings.TrimSpace(w), model.OpNone, names, values, plain, scope)
	}
	not := func(s string) string {
		if negate {
			return "NOT (" + s + ")"
		}
		return s
	}

	switch as {
	case contrib.QueryOfAttributeAndConstraintOfContext:
		if hasAtt {
			sql, err := c.createSqlPart(agg, attPart, model.OpNone, names, values, plain, scope)
			if err != nil {
				return nil, err
			}
			out.Select = append(out.Select, sql)
			if !isAgg {
				out.GroupBy = append(out.GroupBy, sql)
			}
		}
		if hasWhere {
			sql, err := context()
			if err != nil {
				return nil, err
			}
			out.Where = append(out.Where, sql)
		}
	case contrib.ConstraintOfAttribute:
		if hasAtt {
			sql, err := c.createSqlPart(agg, attPart, positive, names, values, plain, scope)
			if err != nil {
				return nil, err
			}
			if isAgg {
				out.Having = append(out.Having, not(sql))
			} else {
				out.Where = append(out.Where, not(sql))
			}
		}
	case contrib.ConstraintOfContext:
		if hasWhere {
			sql, err := context()
			if err != nil {
				return nil, err
			}
			out.Where = append(out.Where, sql)
		}
	case contrib.ConstraintOfAttributeWithContext:
		var parts []string
		if hasWhere {
			parts = append(parts, wherePart)
		}
		if hasAtt {
			parts = append(parts, tmpl.Wrap(tmpl.TagAttribute, attPart))
		}
		if len(parts) > 0 {
			sql, err := c.createSqlPart(agg, strings.Join(parts, " AND "), positive, names, values, plain, scope)
			if err != nil {
				return nil, err
			}
			out.Where = append(out.Where, not(sql))
		}
	}
	return out, nil
}

// createSqlPart resolves markers, localizes bind names and renders every
// <attribute> of sql with op.
func (c *Composer) createSqlPart(agg model.Aggregation, sql string, op model.Operator,
	names []string, values []any, plain bool, scope *alias.Scope) (string, error) {
	if !tmpl.HasTag(sql, tmpl.TagAttribute) {
		sql = tmpl.Wrap(tmpl.TagAttribute, sql)
	}
	sql, err := alias.AutoPrefix(sql, scope)
	if err != nil {
		return "", err
	}
	if sql, err = c.mapper.ResolveMarkers(sql, scope, scope); err != nil {
		return "", err
	}

	local := make([]string, len(names))
	for i, name := range names {
		local[i] = c.localBindName(name)
		sql = localize(sql, name, local[i], c.style.PlainText(values[i]), plain)
	}

	var rerr error
	out := tmpl.Parse(sql).ReplaceText(tmpl.TagAttribute, func(e *tmpl.Element) string {
		s, err := c.createSqlOpValuePart(agg, e.Content(), op, local, values, plain)
		if err != nil && rerr == nil {
			rerr = err
		}
		return s
	})
	if rerr != nil {
		return "", rerr
	}
	return out.String(), nil
}

// localBindName makes a template bind name unique within the statement:
// "a" becomes "__a17".
func (c *Composer) localBindName(name string) string {
	return fmt.Sprintf("__%s%d", name, c.mapper.Sequence().Next())
}

// localize renames the template bind name old in sql. :old and #old# become
// :new, &old& becomes the literal. With plain every form becomes the literal.
func localize(sql, old, new, literal string, plain bool) string {
	q := regexp.QuoteMeta(old)
	bind := ":" + new
	if plain {
		bind = literal
	}
	sql = strings.ReplaceAll(sql, "&"+old+"&", literal)
	sql = strings.ReplaceAll(sql, "#"+old+"#", bind)
	return regexp.MustCompile(`(^|[^:]):`+q+`\b`).ReplaceAllStringFunc(sql, func(m string) string {
		if m[0] == ':' {
			return bind
		}
		return m[:1] + bind
	})
}

// createSqlOpValuePart applies aggregation and operator to one attribute
// expression and records the binds it uses.
func (c *Composer) createSqlOpValuePart(agg model.Aggregation, sql string, op model.Operator,
	names []string, values []any, plain bool) (string, error) {
	info, ok := op.Info()
	if !ok {
		return "", &dialect.UnsupportedOperatorError{Operator: op, Dialect: c.style.Name()}
	}
	refs := names
	if plain && op != model.OpNone {
		refs = make([]string, len(names))
		for i := range names {
			v := values[i]
			if info.Binding == model.BindLike {
				v = c.style.LikePattern(v)
			}
			refs[i] = "&" + c.style.PlainText(v)
		}
	}

	var err error
	if agg != model.AggNone {
		if sql, err = c.style.Aggregate(agg, sql); err != nil {
			return "", err
		}
	} else if model.ZeroTraversing(op, values) {
		sql = c.style.Coalesce(sql, "0")
	}

	if op == model.OpNone {
		if !plain {
			for i, name := range names {
				if referenced(sql, name) {
					c.binds[name] = values[i]
				}
			}
		}
		return sql, nil
	}

	out, err := c.style.Render(op, sql, refs, values)
	if err != nil {
		return "", err
	}
	if !plain {
		c.addBinds(info, names, values)
	}
	return out, nil
}

func (c *Composer) addBinds(info model.OperatorInfo, names []string, values []any) {
	switch info.Binding {
	case model.BindValue:
		for i, name := range names {
			if info.Arity == model.ArityRange && values[i] == nil {
				continue
			}
			c.binds[name] = values[i]
		}
	case model.BindLike:
		for i, name := range names {
			c.binds[name] = c.style.LikePattern(values[i])
		}
	}
}

func referenced(sql, name string) bool {
	return regexp.MustCompile(`:` + regexp.QuoteMeta(name) + `\b`).MatchString(sql)
}
