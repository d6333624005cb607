// Package composer turns criterion trees into SQL constraints.
//
// A Composer walks the tree, looks up an entity or attribute template for
// every node in the registry, assigns table aliases and unique bind names,
// renders comparisons through a dialect Style and folds the fragments into
// the entity templates. The result is a WHERE text plus a bind map, or a full
// statement when an outer template is supplied (CreateSelectStatement).
//
// A Composer is single use and not safe for concurrent use. Several
// composers may share one alias.Sequence to build parts of one statement.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/roach88/sqlcomposer/internal/alias"
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/dialect"
	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
)

// Composer builds SQL from criterion trees.
type Composer struct {
	style      dialect.Style
	reg        *registry.Registry
	mapper     *alias.Mapper
	merger     *contrib.Merger
	logger     *slog.Logger
	injections []Injection

	// consume is the default for entities without a OneToMany flag.
	consume bool

	binds map[string]any
	where strings.Builder
}

// Option configures a Composer.
type Option func(*Composer)

// WithSequence draws aliases and bind numbers from seq.
func WithSequence(seq *alias.Sequence) Option {
	return func(c *Composer) {
		c.mapper = alias.NewMapper(seq)
	}
}

// WithMapper uses m for aliases, typically a clone of another composer's
// mapper.
func WithMapper(m *alias.Mapper) Option {
	return func(c *Composer) {
		c.mapper = m
	}
}

// WithLogger sets the logger for skipped definitions and residual template
// text. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = l
	}
}

// WithInjection adds an injection. Injections run in the order added.
func WithInjection(inj Injection) Option {
	return func(c *Composer) {
		c.injections = append(c.injections, inj)
	}
}

// WithConsumePolicy sets whether entities without an explicit OneToMany
// flag consume their children's contributions in query builds.
// Default: true.
func WithConsumePolicy(consume bool) Option {
	return func(c *Composer) {
		c.consume = consume
	}
}

// New creates a composer rendering with style and reading templates from reg.
func New(style dialect.Style, reg *registry.Registry, opts ...Option) *Composer {
	c := &Composer{
		style:   style,
		reg:     reg,
		logger:  slog.Default(),
		consume: true,
		binds:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mapper == nil {
		c.mapper = alias.NewMapper(nil)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.merger = contrib.NewMerger(c.logger)
	return c
}

// Mapper returns the alias mapper. Set root aliases on it before Build when
// templates reference the outer statement (@parent.X@ at the top level).
func (c *Composer) Mapper() *alias.Mapper {
	return c.mapper
}

// Style returns the rendering dialect.
func (c *Composer) Style() dialect.Style {
	return c.style
}

// SetRootAlias binds an entity name of the outer statement to its alias.
func (c *Composer) SetRootAlias(name, alias string) {
	c.mapper.SetRootAlias(name, alias)
}

// BindMap returns a copy of the accumulated binds.
func (c *Composer) BindMap() map[string]any {
	return maps.Clone(c.binds)
}

// WhereConstraints returns the text accumulated by Build and AddWhere.
// Every constraint starts with " AND ".
func (c *Composer) WhereConstraints() string {
	return c.where.String()
}

// AddWhere appends a constraint and its binds. sql must start with its
// own connective, usually " AND ".
func (c *Composer) AddWhere(sql string, binds map[string]any) {
	c.where.WriteString(sql)
	maps.Copy(c.binds, binds)
}

// Reset clears binds, constraints and node aliases. The sequence keeps
// counting so aliases of earlier builds are never reused.
func (c *Composer) Reset() {
	c.binds = make(map[string]any)
	c.where.Reset()
	root := c.mapper.RootScope().Aliases()
	c.mapper = c.mapper.Clone()
	for name, a := range root {
		c.mapper.SetRootAlias(name, a)
	}
}

// Build composes the constraints of criteria: first the basic definitions
// whose form fields are set, then the criterion tree. It returns the
// accumulated WHERE text.
func (c *Composer) Build(ctx context.Context, criteria *model.Criteria) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.where.Reset()
	if criteria == nil {
		return "", nil
	}

	for _, def := range c.reg.Basics() {
		values, set := basicValues(def, criteria)
		if !set {
			continue
		}
		c.logger.Debug("building basic definition", "field", def.Name, "operator", def.Operator.String())
		if err := checkArity(def.Name, def.Operator, values); err != nil {
			return "", err
		}
		part, err := c.createAttributePart(contrib.ConstraintOfAttributeWithContext, model.AggNone,
			def.Attribute, def.Operator, bindNames(len(values)), values, def.PlainBind, c.mapper.RootScope())
		if err != nil {
			return "", fmt.Errorf("field %s: %w", def.Name, err)
		}
		if err := c.appendWhere(part); err != nil {
			return "", fmt.Errorf("field %s: %w", def.Name, err)
		}
	}

	if len(criteria.Nodes) > 0 {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tree, err := c.BuildTreeNodes(criteria.Nodes, contrib.BuildConstraints, contrib.ConstraintOfAttributeWithContext)
		if err != nil {
			return "", err
		}
		if err := c.appendWhere(tree); err != nil {
			return "", err
		}
	}
	return c.WhereConstraints(), nil
}

// BuildQuery builds nodes with the entities' select templates. The result
// carries select, from, where and group-by parts for CreateSelectStatement.
func (c *Composer) BuildQuery(ctx context.Context, nodes []model.Node) (*contrib.Contribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.BuildTreeNodes(nodes, contrib.BuildQuery, contrib.QueryOfAttributeAndConstraintOfContext)
}

func (c *Composer) appendWhere(part *contrib.Contribution) error {
	cons, err := contrib.Constraints(part)
	if err != nil {
		return err
	}
	if cons == nil || len(cons.Where) == 0 {
		return nil
	}
	c.where.WriteString(" AND ")
	c.where.WriteString(strings.Join(cons.Where, " AND "))
	return nil
}

// CreateSelectStatement merges contributions and the accumulated WHERE
// constraints into stm, an outer statement with collecting tags.
func (c *Composer) CreateSelectStatement(stm string, contributions ...*contrib.Contribution) (string, error) {
	merged := contrib.New()
	for _, o := range contributions {
		merged.Add(o)
	}
	if where := strings.TrimSpace(c.WhereConstraints()); where != "" {
		if len(where) >= 3 && strings.EqualFold(where[:3], "AND") {
			where = strings.TrimSpace(where[3:])
		}
		merged.Where = append(merged.Where, where)
	}
	out, err := c.merger.Merge(contrib.BuildConstraints, contrib.AutoComplete(stm), merged, true)
	if err != nil {
		return "", err
	}
	return firstPart(out), nil
}

// firstPart is the text a consumed template reduces to.
func firstPart(c *contrib.Contribution) string {
	for _, l := range [][]string{c.Where, c.From, c.Select} {
		if len(l) > 0 {
			return l[0]
		}
	}
	return "1=1"
}

func basicValues(def *registry.BasicDef, criteria *model.Criteria) ([]any, bool) {
	values := make([]any, len(def.Fields))
	set := false
	for i, f := range def.Fields {
		if v, ok := criteria.FieldValue(f); ok {
			values[i] = v
			set = true
		}
	}
	return values, set
}

// bindNames returns the template bind names of n values: a, b, c, ...
func bindNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	return names
}

func checkArity(name string, op model.Operator, values []any) error {
	info, ok := op.Info()
	if !ok {
		return &dialect.UnsupportedOperatorError{Operator: op, Dialect: "composer"}
	}
	switch info.Arity {
	case model.ArityOne:
		if len(values) < 1 {
			return &ValueError{Attribute: name, Operator: op, Got: len(values), Message: "expects one value"}
		}
	case model.ArityRange:
		if len(values) != 2 {
			return &ValueError{Attribute: name, Operator: op, Got: len(values), Message: "expects a lower and an upper bound"}
		}
		if values[0] == nil && values[1] == nil {
			return &ValueError{Attribute: name, Operator: op, Got: len(values), Message: "both bounds are empty"}
		}
	case model.ArityList:
		if len(values) != 1 {
			return &ValueError{Attribute: name, Operator: op, Got: len(values), Message: "expects one list value"}
		}
	}
	return nil
}
