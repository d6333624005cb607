// Package model defines the criterion tree consumed by the composer.
//
// A criterion tree is built by a search form: entity nodes open a correlated
// scope (usually an EXISTS sub-query), attribute nodes carry one comparison,
// and either-or nodes group sibling criteria into OR blocks.
//
// # Node Types
//
//   - EntityNode: logical entity type, negation flag, ordered children
//   - AttributeNode: logical attribute type, Operator, values, Aggregation
//   - EitherOrNode: OR branch; Begin marks the first branch of a block
//   - GroupNode: plain composite without SQL meaning of its own
//
// Node is a sealed interface. Only types in this package implement it, which
// keeps the composer's type switches exhaustive.
//
// # Operators
//
// Operator is a closed enumeration. Every operator has an OperatorInfo row
// describing its value arity, how its values are bound, and which positive
// operator it negates. Codes match the search form wire format so stored
// searches keep working.
//
// # Values
//
// Attribute values are plain Go values: nil, bool, integers, float64,
// decimal.Decimal, string, time.Time or []any for IN lists. Numeric
// comparisons go through Numeric, which converts every numeric kind to
// decimal.Decimal so zero checks never depend on float rounding.
package model
