package dialect

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlcomposer/internal/model"
)

// UnsupportedOperatorError reports an operator code the styles do not know.
type UnsupportedOperatorError struct {
	Operator model.Operator
	Dialect  string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("UNSUPPORTED_OPERATOR: %s: operator code %d is not supported", e.Dialect, int(e.Operator))
}

// UnsupportedFeatureError reports a construct the dialect cannot express.
type UnsupportedFeatureError struct {
	Feature string
	Dialect string
	Hint    string
}

func (e *UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// ValueError reports values that do not fit the operator's arity.
type ValueError struct {
	Operator model.Operator
	Message  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("INVALID_VALUES: %s: %s", e.Operator, e.Message)
}

// IsUnsupportedOperator reports whether err is or wraps an UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}

// IsUnsupportedFeature reports whether err is or wraps an UnsupportedFeatureError.
func IsUnsupportedFeature(err error) bool {
	var e *UnsupportedFeatureError
	return errors.As(err, &e)
}

// IsValueError reports whether err is or wraps a ValueError.
func IsValueError(err error) bool {
	var e *ValueError
	return errors.As(err, &e)
}
