package composer

import (
	"strings"

	"github.com/roach88/sqlcomposer/internal/alias"
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/model"
)

// BuildTreeNodes builds sibling nodes and returns their combined
// contribution. Runs of either-or nodes form one OR block; a block starts
// at any either-or node and continues while the following siblings are
// either-or nodes without the Begin flag.
func (c *Composer) BuildTreeNodes(nodes []model.Node, es contrib.EntityStrategy, as contrib.AttributeStrategy) (*contrib.Contribution, error) {
	out := contrib.New()
	for i := 0; i < len(nodes); {
		var sub *contrib.Contribution
		var err error
		switch n := nodes[i].(type) {
		case *model.EntityNode:
			sub, err = c.buildEntity(n, es)
			i++
		case *model.AttributeNode:
			sub, err = c.buildAttribute(n, as)
			i++
		case *model.EitherOrNode:
			block := []*model.EitherOrNode{n}
			k := i + 1
			for ; k < len(nodes); k++ {
				next, ok := nodes[k].(*model.EitherOrNode)
				if !ok || next.Begin {
					break
				}
				block = append(block, next)
			}
			sub, err = c.buildOrNodes(block, es, as)
			i = k
		default:
			sub, err = c.BuildTreeNodes(n.Children(), es, as)
			i++
		}
		if err != nil {
			return nil, err
		}
		if err := appendSub(out, sub, es); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendSub(parent, child *contrib.Contribution, es contrib.EntityStrategy) error {
	if es == contrib.BuildConstraints {
		cons, err := contrib.Constraints(child)
		if err != nil {
			return err
		}
		parent.Add(cons)
		return nil
	}
	if !child.IsEmpty() {
		parent.Add(child)
	}
	return nil
}

// buildOrNodes ORs the where and having text of each branch. From parts are
// never OR scoped and go to the block's contribution as they are.
func (c *Composer) buildOrNodes(block []*model.EitherOrNode, es contrib.EntityStrategy, as contrib.AttributeStrategy) (*contrib.Contribution, error) {
	out := contrib.New()
	var branches []string
	negated := false
	for _, br := range block {
		sub, err := c.BuildTreeNodes(br.Children(), es, as)
		if err != nil {
			return nil, err
		}
		out.From = append(out.From, sub.From...)
		parts := append(append([]string(nil), sub.Where...), sub.Having...)
		if len(parts) == 0 {
			continue
		}
		// outer join markers are not allowed inside OR
		s := "(" + strings.ReplaceAll(strings.Join(parts, " AND "), "(+)", "") + ")"
		if br.Negative {
			s = "NOT " + s
			negated = true
		}
		branches = append(branches, s)
	}
	switch {
	case len(branches) == 1 && !negated:
		out.Where = append(out.Where, strings.TrimSpace(branches[0][1:len(branches[0])-1]))
	case len(branches) == 1:
		out.Where = append(out.Where, branches[0])
	case len(branches) > 1:
		out.Where = append(out.Where, "("+strings.Join(branches, " OR ")+")")
	}
	return out, nil
}

// scopeOf returns the alias scope of entity n, creating the chain of
// scopes up to the root. A nil n is the root scope.
func (c *Composer) scopeOf(n *model.EntityNode) *alias.Scope {
	if n == nil {
		return c.mapper.RootScope()
	}
	return c.mapper.NodeScope(n, c.scopeOf(model.ParentEntity(n)))
}

func (c *Composer) buildEntity(node *model.EntityNode, es contrib.EntityStrategy) (*contrib.Contribution, error) {
	def, ok := c.reg.Entity(node.Type)
	if !ok {
		c.logger.Warn("no definition for entity", "entity", node.Type)
		return nil, nil
	}
	stm := def.Template(es)
	if strings.TrimSpace(stm) == "" {
		c.logger.Warn("no template for entity", "entity", node.Type, "strategy", es.String())
		return nil, nil
	}
	parentScope := c.scopeOf(model.ParentEntity(node))
	if def.Rewrite != nil {
		var err error
		if stm, err = def.Rewrite(node, es, stm, parentScope); err != nil {
			return nil, err
		}
	}

	nodeScope := c.scopeOf(node)
	c.mapper.CollectEntityMarkers(nodeScope, stm, false)
	stm, err := c.mapper.ResolveMarkers(stm, nodeScope, parentScope)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("building entity", "entity", node.Type, "strategy", es.String(), "aliases", nodeScope.Aliases())

	if es == contrib.BuildQuery {
		return c.unitContribution(node, es, stm, node.Children(), def.Consume(c.consume))
	}
	s, ok, err := c.eitherOrSplit(stm, node.Negative, node.Children())
	if err != nil || !ok {
		return nil, err
	}
	return contrib.FromWhere(s), nil
}

// eitherOrSplit builds the entity once per branch of every OR block, with
// the other children shared by all branches. Branches are ORed, blocks
// ANDed. Without OR blocks the zero-traversing split applies.
func (c *Composer) eitherOrSplit(stm string, negative bool, children []model.Node) (string, bool, error) {
	var blocks [][]*model.EitherOrNode
	var others []model.Node
	for _, ch := range children {
		eo, ok := ch.(*model.EitherOrNode)
		if !ok {
			others = append(others, ch)
			continue
		}
		if eo.Begin || len(blocks) == 0 {
			blocks = append(blocks, nil)
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], eo)
	}
	if len(blocks) == 0 {
		s, err := c.zeroTraversingSplit(stm, negative, children)
		return s, err == nil, err
	}

	var blockTexts []string
	for _, block := range blocks {
		var elems []string
		for _, br := range block {
			sub := append(append([]model.Node(nil), others...), br.Children()...)
			s, ok, err := c.eitherOrSplit(stm, negative != br.Negative, sub)
			if err != nil {
				return "", false, err
			}
			if ok {
				elems = append(elems, "("+s+")")
			}
		}
		if len(elems) > 0 {
			blockTexts = append(blockTexts, "("+strings.Join(elems, " OR ")+")")
		}
	}
	if len(blockTexts) == 0 {
		return "", false, nil
	}
	return strings.Join(blockTexts, " AND "), true, nil
}

// zeroTraversingSplit adds the "no matching group" case for aggregating
// comparisons whose range includes zero: the entity without those
// comparisons, negated, is ORed to the normal form.
func (c *Composer) zeroTraversingSplit(stm string, negative bool, children []model.Node) (string, error) {
	var nonZero []model.Node
	for _, ch := range children {
		if !KindOf(ch).zeroSplit() {
			nonZero = append(nonZero, ch)
		}
	}
	p1, err := c.entityUnit(stm, negative, children)
	if err != nil {
		return "", err
	}
	if len(nonZero) == len(children) {
		return p1, nil
	}
	p2, err := c.entityUnit(stm, !negative, nonZero)
	if err != nil {
		return "", err
	}
	return "(" + p1 + " OR " + p2 + ")", nil
}

// entityUnit builds one constraint text of an entity from the given
// children.
func (c *Composer) entityUnit(stm string, negative bool, children []model.Node) (string, error) {
	merged, err := c.unitContribution(nil, contrib.BuildConstraints, stm, children, true)
	if err != nil {
		return "", err
	}
	cons, err := contrib.Constraints(merged)
	if err != nil {
		return "", err
	}
	s := "1=1"
	if cons != nil && len(cons.Where) > 0 {
		s = strings.Join(cons.Where, " AND ")
	}
	if negative {
		s = "NOT (" + s + ")"
	}
	return s, nil
}

// unitContribution builds the children with the attribute strategies of es
// and merges them into stm. node is nil for constraint units.
func (c *Composer) unitContribution(node *model.EntityNode, es contrib.EntityStrategy, stm string, children []model.Node, consume bool) (*contrib.Contribution, error) {
	child := contrib.New()
	switch es {
	case contrib.BuildConstraints:
		var plain, agg []model.Node
		for _, ch := range children {
			if KindOf(ch).aggregating() {
				agg = append(agg, ch)
			} else {
				plain = append(plain, ch)
			}
		}
		for _, step := range []struct {
			nodes []model.Node
			as    contrib.AttributeStrategy
		}{
			{plain, contrib.ConstraintOfAttributeWithContext},
			{agg, contrib.ConstraintOfContext},
			{agg, contrib.ConstraintOfAttribute},
		} {
			sub, err := c.BuildTreeNodes(step.nodes, es, step.as)
			if err != nil {
				return nil, err
			}
			child.Add(sub)
		}
	case contrib.BuildQuery:
		sub, err := c.BuildTreeNodes(children, es, contrib.QueryOfAttributeAndConstraintOfContext)
		if err != nil {
			return nil, err
		}
		child.Add(sub)
	}

	if node != nil {
		for _, inj := range c.injections {
			inj.PreBuildEntity(node, es, child)
		}
	}
	if consume {
		stm = contrib.AutoComplete(stm)
	}
	out, err := c.merger.Merge(es, stm, child, consume)
	if err != nil {
		return nil, err
	}
	if node != nil {
		for _, inj := range c.injections {
			inj.PostBuildEntity(node, es, out)
		}
	}
	return out, nil
}
