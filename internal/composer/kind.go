package composer

import "github.com/roach88/sqlcomposer/internal/model"

// AttributeKind classifies a child node for the entity splits.
type AttributeKind int

const (
	// KindUndefined is any node that is not an attribute.
	KindUndefined AttributeKind = iota
	// KindNonAggregation is a plain, zero-traversing attribute.
	KindNonAggregation
	// KindAggregation is an aggregating, zero-traversing attribute.
	KindAggregation
	// KindNonAggregationNonZeroTraversing is a plain attribute whose range
	// excludes zero.
	KindNonAggregationNonZeroTraversing
	// KindAggregationNonZeroTraversing is an aggregating attribute whose
	// range excludes zero.
	KindAggregationNonZeroTraversing
)

func (k AttributeKind) String() string {
	switch k {
	case KindNonAggregation:
		return "non_aggregation"
	case KindAggregation:
		return "aggregation"
	case KindNonAggregationNonZeroTraversing:
		return "non_aggregation_non_zero_traversing"
	case KindAggregationNonZeroTraversing:
		return "aggregation_non_zero_traversing"
	default:
		return "undefined"
	}
}

// KindOf classifies n.
func KindOf(n model.Node) AttributeKind {
	a, ok := n.(*model.AttributeNode)
	if !ok {
		return KindUndefined
	}
	zero := model.ZeroTraversing(a.Operator, a.Values)
	if a.Aggregation == model.AggNone {
		if zero {
			return KindNonAggregation
		}
		return KindNonAggregationNonZeroTraversing
	}
	if zero {
		return KindAggregation
	}
	return KindAggregationNonZeroTraversing
}

// aggregating reports whether k goes to HAVING.
func (k AttributeKind) aggregating() bool {
	return k == KindAggregation || k == KindAggregationNonZeroTraversing
}

// zeroSplit reports whether k triggers the zero-traversing split.
// Plain attributes never do; they get a coalesce instead.
func (k AttributeKind) zeroSplit() bool {
	return k == KindAggregation
}
