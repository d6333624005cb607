package alias

import (
	"errors"
	"fmt"
	"strings"
)

// MissingAliasError reports a marker that has no alias in scope.
// It always points at a template defect: the template references an entity
// that was never defined in its subtree.
type MissingAliasError struct {
	// Name is the cleaned entity name of the marker.
	Name string

	// Parent is set for @parent.Name@ markers.
	Parent bool

	// Context is the template text being resolved.
	Context string
}

func (e *MissingAliasError) Error() string {
	marker := "@" + e.Name + "@"
	if e.Parent {
		marker = "@parent." + e.Name + "@"
	}
	return fmt.Sprintf("MISSING_ALIAS: no alias for %s in %q", marker, e.Context)
}

// AmbiguousAliasError reports an unqualified attribute expression under a
// scope that owns more than one alias.
type AmbiguousAliasError struct {
	Expression string
	Aliases    []string
}

func (e *AmbiguousAliasError) Error() string {
	return fmt.Sprintf("AMBIGUOUS_ALIAS: unqualified attribute %q could belong to any of %s",
		e.Expression, strings.Join(e.Aliases, ", "))
}

// IsMissingAlias reports whether err is or wraps a MissingAliasError.
func IsMissingAlias(err error) bool {
	var e *MissingAliasError
	return errors.As(err, &e)
}

// IsAmbiguousAlias reports whether err is or wraps an AmbiguousAliasError.
func IsAmbiguousAlias(err error) bool {
	var e *AmbiguousAliasError
	return errors.As(err, &e)
}
