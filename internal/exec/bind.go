package exec

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// MissingBindError is a :name reference without a value in the bind map.
type MissingBindError struct {
	Name string
}

func (e *MissingBindError) Error() string {
	return fmt.Sprintf("bind :%s has no value", e.Name)
}

// Bind rewrites the :name references of stmt to positional placeholders in
// format and returns the arguments in placeholder order. References inside
// quoted literals and identifiers are left alone, as are :: casts. A name
// referenced twice is passed twice.
func Bind(stmt string, binds map[string]any, format sq.PlaceholderFormat) (string, []any, error) {
	if format == nil {
		format = sq.Question
	}
	escape := format != sq.Question

	var b strings.Builder
	b.Grow(len(stmt))
	var args []any
	var quote byte

	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ':' && i+1 < len(stmt) && stmt[i+1] == ':':
			b.WriteString("::")
			i++
			continue
		case ch == ':' && i+1 < len(stmt) && isNameStart(stmt[i+1]):
			j := i + 1
			for j < len(stmt) && isNamePart(stmt[j]) {
				j++
			}
			name := stmt[i+1 : j]
			v, ok := binds[name]
			if !ok {
				return "", nil, &MissingBindError{Name: name}
			}
			b.WriteByte('?')
			args = append(args, v)
			i = j - 1
			continue
		}
		if ch == '?' && escape {
			b.WriteString("??")
			continue
		}
		b.WriteByte(ch)
	}

	out, err := format.ReplacePlaceholders(b.String())
	if err != nil {
		return "", nil, fmt.Errorf("placeholders: %w", err)
	}
	return out, args, nil
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNamePart(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}
