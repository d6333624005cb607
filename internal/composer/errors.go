package composer

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlcomposer/internal/alias"
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/dialect"
	"github.com/roach88/sqlcomposer/internal/model"
)

// ValueError reports attribute values that do not fit the operator.
type ValueError struct {
	// Attribute is the attribute type or basic definition name.
	Attribute string

	Operator model.Operator

	// Got is the number of values supplied.
	Got int

	Message string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("INVALID_VALUES: %s %s: %s (got %d values)", e.Attribute, e.Operator, e.Message, e.Got)
}

// IsValueError returns true if err is or wraps a ValueError, including the
// dialect's own arity check.
func IsValueError(err error) bool {
	var ve *ValueError
	return errors.As(err, &ve) || dialect.IsValueError(err)
}

// IsConfigError returns true if err stems from an inconsistent definition
// rather than from the criterion: unresolved or ambiguous aliases, sub-selects
// in group-by parts, filters joining without a base table and operators or
// features the dialect cannot render.
func IsConfigError(err error) bool {
	return alias.IsMissingAlias(err) ||
		alias.IsAmbiguousAlias(err) ||
		contrib.IsInvalidGroupBy(err) ||
		contrib.IsMissingBaseTable(err) ||
		dialect.IsUnsupportedOperator(err) ||
		dialect.IsUnsupportedFeature(err)
}
