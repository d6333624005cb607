package contrib

import (
	"errors"
	"fmt"
)

// InvalidGroupByError reports a group-by fragment containing a sub-select.
type InvalidGroupByError struct {
	Part string
}

func (e *InvalidGroupByError) Error() string {
	return fmt.Sprintf("INVALID_GROUP_BY: group by part must not contain SELECT: %q", e.Part)
}

// IsInvalidGroupBy reports whether err is or wraps an InvalidGroupByError.
func IsInvalidGroupBy(err error) bool {
	var e *InvalidGroupByError
	return errors.As(err, &e)
}

// MissingBaseTableError reports a filter whose from parts are all JOIN
// clauses, leaving its EXISTS sub-select without a table to join to.
type MissingBaseTableError struct {
	From []string
}

func (e *MissingBaseTableError) Error() string {
	return fmt.Sprintf("MISSING_BASE_TABLE: from parts are all JOIN clauses: %q", e.From)
}

// IsMissingBaseTable reports whether err is or wraps a MissingBaseTableError.
func IsMissingBaseTable(err error) bool {
	var e *MissingBaseTableError
	return errors.As(err, &e)
}
