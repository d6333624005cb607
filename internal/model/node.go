package model

// Node is a node of the criterion tree.
//
// Sealed: only types in this package implement Node.
type Node interface {
	Parent() Node
	Children() []Node
	node()
}

// base holds the tree links shared by every node type.
type base struct {
	parent   Node
	children []Node
}

func (b *base) Parent() Node     { return b.parent }
func (b *base) Children() []Node { return b.children }

// EntityNode opens a new alias scope for a logical entity type.
type EntityNode struct {
	base

	// Type is the logical entity type, e.g. "Person".
	Type string

	// Negative wraps the entity constraint in NOT (...).
	Negative bool
}

// AttributeNode is one comparison on a logical attribute type.
type AttributeNode struct {
	base

	// Type is the logical attribute type, e.g. "LastName".
	Type string

	Operator    Operator
	Values      []any
	Aggregation Aggregation
}

// EitherOrNode is one branch of an OR block. A block is a run of sibling
// EitherOrNodes starting with a node whose Begin flag is set.
type EitherOrNode struct {
	base

	Begin    bool
	Negative bool
}

// GroupNode groups children without contributing SQL itself.
type GroupNode struct {
	base
}

func (*EntityNode) node()    {}
func (*AttributeNode) node() {}
func (*EitherOrNode) node()  {}
func (*GroupNode) node()     {}

// NewEntity creates an entity node with the given children.
func NewEntity(typ string, negative bool, children ...Node) *EntityNode {
	n := &EntityNode{Type: typ, Negative: negative}
	adopt(n, &n.base, children)
	return n
}

// NewAttribute creates an attribute node.
func NewAttribute(typ string, op Operator, agg Aggregation, values ...any) *AttributeNode {
	return &AttributeNode{Type: typ, Operator: op, Aggregation: agg, Values: values}
}

// NewEitherOr creates an either-or branch with the given children.
func NewEitherOr(begin, negative bool, children ...Node) *EitherOrNode {
	n := &EitherOrNode{Begin: begin, Negative: negative}
	adopt(n, &n.base, children)
	return n
}

// NewGroup creates a plain composite node.
func NewGroup(children ...Node) *GroupNode {
	n := &GroupNode{}
	adopt(n, &n.base, children)
	return n
}

// Add appends children to a composite node and links their parent.
// Attribute nodes are leaves; adding to one panics.
func Add(parent Node, children ...Node) {
	switch p := parent.(type) {
	case *EntityNode:
		adopt(p, &p.base, children)
	case *EitherOrNode:
		adopt(p, &p.base, children)
	case *GroupNode:
		adopt(p, &p.base, children)
	default:
		panic("model: cannot add children to a leaf node")
	}
}

func adopt(self Node, b *base, children []Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		setParent(c, self)
		b.children = append(b.children, c)
	}
}

func setParent(n, parent Node) {
	switch c := n.(type) {
	case *EntityNode:
		c.parent = parent
	case *AttributeNode:
		c.parent = parent
	case *EitherOrNode:
		c.parent = parent
	case *GroupNode:
		c.parent = parent
	}
}

// ParentEntity returns the nearest ancestor EntityNode of n, or nil when n
// sits directly under the root.
func ParentEntity(n Node) *EntityNode {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if e, ok := p.(*EntityNode); ok {
			return e
		}
	}
	return nil
}
