// Package criteria reads search criteria from YAML documents.
//
// A document holds the simple form field values and the criterion tree,
// plus optional composition settings (dialect, outer statement, root
// aliases) the CLI uses when building from the document alone.
package criteria

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlcomposer/internal/model"
)

// Document is one criterion document.
type Document struct {
	// Name identifies the search, e.g. in golden file names.
	Name string `yaml:"name,omitempty"`

	Description string `yaml:"description,omitempty"`

	// Dialect overrides the default style ("oracle", "sqlite", ...).
	Dialect string `yaml:"dialect,omitempty"`

	// Select is the outer statement contributions are merged into. Without
	// it only the WHERE constraints are built.
	Select string `yaml:"select,omitempty"`

	// RootAliases binds entity names of the outer statement to their
	// aliases, e.g. CUSTOMER: c.
	RootAliases map[string]string `yaml:"root_aliases,omitempty"`

	// Fields are simple form field values read by basic definitions.
	Fields map[string]yaml.Node `yaml:"fields,omitempty"`

	// Nodes is the criterion tree.
	Nodes []NodeDoc `yaml:"nodes,omitempty"`
}

// NodeDoc is one tree node. Exactly one of Entity, Attribute, Or and Group
// is set.
type NodeDoc struct {
	// Entity is the entity type of an entity node.
	Entity string `yaml:"entity,omitempty"`

	// Attribute is the attribute type of an attribute node.
	Attribute string `yaml:"attribute,omitempty"`

	// Or marks an either-or branch: "begin" opens an OR block, "next"
	// continues it.
	Or string `yaml:"or,omitempty"`

	// Group marks a plain grouping node.
	Group bool `yaml:"group,omitempty"`

	// Negative negates an entity or either-or branch.
	Negative bool `yaml:"negative,omitempty"`

	// Op is the operator name or code of an attribute node. Default: eq
	// when values are given, none otherwise.
	Op string `yaml:"op,omitempty"`

	// Aggregation of an attribute node: count, sum, min, max, avg, median.
	Aggregation string `yaml:"aggregation,omitempty"`

	// Values of an attribute node. A YAML sequence value is an IN list.
	Values []yaml.Node `yaml:"values,omitempty"`

	Children []NodeDoc `yaml:"children,omitempty"`
}

// Load reads and parses a criterion document. Unknown keys are rejected.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a criterion document from YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateNodes("nodes", doc.Nodes); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}
	return &doc, nil
}

func validateNodes(path string, nodes []NodeDoc) error {
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		kinds := 0
		for _, set := range []bool{n.Entity != "", n.Attribute != "", n.Or != "", n.Group} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			return fmt.Errorf("%s: exactly one of entity, attribute, or, group is required", p)
		}
		if n.Or != "" && n.Or != "begin" && n.Or != "next" {
			return fmt.Errorf("%s: or must be begin or next, got %q", p, n.Or)
		}
		if n.Attribute != "" && len(n.Children) > 0 {
			return fmt.Errorf("%s: attribute nodes have no children", p)
		}
		if n.Attribute == "" && (n.Op != "" || n.Aggregation != "" || len(n.Values) > 0) {
			return fmt.Errorf("%s: op, aggregation and values belong to attribute nodes", p)
		}
		if err := validateNodes(p+".children", n.Children); err != nil {
			return err
		}
	}
	return nil
}

// Criteria converts the document to the composer's input.
func (d *Document) Criteria() (*model.Criteria, error) {
	c := &model.Criteria{Fields: make(map[string]any, len(d.Fields))}
	for id, node := range d.Fields {
		v, err := Value(&node)
		if err != nil {
			return nil, fmt.Errorf("fields.%s: %w", id, err)
		}
		c.Fields[id] = v
	}
	nodes, err := convert("nodes", d.Nodes)
	if err != nil {
		return nil, err
	}
	c.Nodes = nodes
	return c, nil
}

func convert(path string, docs []NodeDoc) ([]model.Node, error) {
	out := make([]model.Node, 0, len(docs))
	for i, n := range docs {
		p := fmt.Sprintf("%s[%d]", path, i)
		children, err := convert(p+".children", n.Children)
		if err != nil {
			return nil, err
		}
		switch {
		case n.Entity != "":
			out = append(out, model.NewEntity(n.Entity, n.Negative, children...))
		case n.Or != "":
			out = append(out, model.NewEitherOr(n.Or == "begin", n.Negative, children...))
		case n.Group:
			out = append(out, model.NewGroup(children...))
		default:
			a, err := attribute(n)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func attribute(n NodeDoc) (*model.AttributeNode, error) {
	values := make([]any, len(n.Values))
	for i := range n.Values {
		v, err := Value(&n.Values[i])
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		values[i] = v
	}

	op := model.OpNone
	if len(values) > 0 {
		op = model.OpEQ
	}
	if n.Op != "" {
		var err error
		if op, err = model.ParseOperator(n.Op); err != nil {
			return nil, err
		}
	}
	agg := model.AggNone
	if n.Aggregation != "" {
		var err error
		if agg, err = model.ParseAggregation(n.Aggregation); err != nil {
			return nil, err
		}
	}
	return model.NewAttribute(n.Attribute, op, agg, values...), nil
}

// Value converts a YAML scalar or sequence to a criterion value: integers
// become int64, numbers with a fraction decimal.Decimal, timestamps
// time.Time and sequences []any.
func Value(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return Value(n.Alias)
	}
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := Value(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
	default:
		return nil, fmt.Errorf("line %d: maps are not criterion values", n.Line)
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64)
		if err != nil {
			var d decimal.Decimal
			if d, err = decimal.NewFromString(n.Value); err == nil {
				return d, nil
			}
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return i, nil
	case "!!float":
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a decimal number", n.Line, n.Value)
		}
		return d, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return t, nil
	default:
		return n.Value, nil
	}
}
