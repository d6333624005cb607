// Package contrib accumulates SQL fragments of a criterion subtree and merges
// them into entity templates.
package contrib

// EntityStrategy selects how an entity template is used.
type EntityStrategy int

const (
	// BuildQuery selects output columns; entity select templates are used.
	BuildQuery EntityStrategy = iota
	// BuildConstraints only filters; entity where templates are used.
	BuildConstraints
)

func (s EntityStrategy) String() string {
	switch s {
	case BuildQuery:
		return "query"
	case BuildConstraints:
		return "constraints"
	default:
		return "unknown"
	}
}

// AttributeStrategy selects which parts of an attribute template are emitted.
type AttributeStrategy int

const (
	// ConstraintOfAttribute emits the comparison only. Aggregating
	// attributes go to HAVING, others to WHERE.
	ConstraintOfAttribute AttributeStrategy = iota
	// ConstraintOfContext emits the structural context only, with the
	// comparison replaced by 1=1.
	ConstraintOfContext
	// ConstraintOfAttributeWithContext emits context AND comparison.
	ConstraintOfAttributeWithContext
	// QueryOfAttributeAndConstraintOfContext emits the attribute as a select
	// part and its context as a where part.
	QueryOfAttributeAndConstraintOfContext
)

func (s AttributeStrategy) String() string {
	switch s {
	case ConstraintOfAttribute:
		return "attribute"
	case ConstraintOfContext:
		return "context"
	case ConstraintOfAttributeWithContext:
		return "attribute_with_context"
	case QueryOfAttributeAndConstraintOfContext:
		return "query_with_context"
	default:
		return "unknown"
	}
}

// Contribution holds the SQL fragments produced by one subtree.
//
// A non-aggregating select fragment is always paired with the same fragment
// in GroupBy; aggregating fragments never appear in GroupBy. Merge relies on
// the count difference to decide whether a GROUP BY is needed.
type Contribution struct {
	Select  []string
	From    []string
	Where   []string
	GroupBy []string
	Having  []string
}

// New returns an empty contribution.
func New() *Contribution {
	return &Contribution{}
}

// FromWhere returns a contribution holding where parts.
func FromWhere(parts ...string) *Contribution {
	return &Contribution{Where: parts}
}

// FromSelect returns a contribution holding select parts, each paired
// with a group-by part when grouped is set.
func FromSelect(grouped bool, parts ...string) *Contribution {
	c := &Contribution{Select: parts}
	if grouped {
		c.GroupBy = append([]string(nil), parts...)
	}
	return c
}

// Add appends every list of o to c. A nil o is ignored.
func (c *Contribution) Add(o *Contribution) {
	if o == nil {
		return
	}
	c.Select = append(c.Select, o.Select...)
	c.From = append(c.From, o.From...)
	c.Where = append(c.Where, o.Where...)
	c.GroupBy = append(c.GroupBy, o.GroupBy...)
	c.Having = append(c.Having, o.Having...)
}

// IsEmpty reports whether c carries no fragment at all.
func (c *Contribution) IsEmpty() bool {
	return c == nil ||
		len(c.Select) == 0 && len(c.From) == 0 && len(c.Where) == 0 &&
			len(c.GroupBy) == 0 && len(c.Having) == 0
}

// Clone returns a deep copy of c.
func (c *Contribution) Clone() *Contribution {
	if c == nil {
		return nil
	}
	return &Contribution{
		Select:  append([]string(nil), c.Select...),
		From:    append([]string(nil), c.From...),
		Where:   append([]string(nil), c.Where...),
		GroupBy: append([]string(nil), c.GroupBy...),
		Having:  append([]string(nil), c.Having...),
	}
}

func (c *Contribution) list(tag string) *[]string {
	switch tag {
	case "selectPart":
		return &c.Select
	case "fromPart":
		return &c.From
	case "wherePart":
		return &c.Where
	case "groupByPart":
		return &c.GroupBy
	case "havingPart":
		return &c.Having
	}
	return nil
}
