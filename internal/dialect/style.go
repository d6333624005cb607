package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sqlcomposer/internal/model"
)

// Style renders SQL fragments for one database dialect.
type Style interface {
	// Name is the lower case dialect name ("oracle", "postgres", ...).
	Name() string

	// Capabilities describes optional features of the dialect.
	Capabilities() Capabilities

	// Render spells op applied to expr. binds[i] names the bind carrying
	// values[i]; a bind name starting with "&" is a plain literal.
	Render(op model.Operator, expr string, binds []string, values []any) (string, error)

	// Aggregate wraps expr in the aggregate function agg.
	Aggregate(agg model.Aggregation, expr string) (string, error)

	// Coalesce returns expr with NULL replaced by fallback.
	Coalesce(expr, fallback string) string

	// PlainText renders v as an SQL literal.
	PlainText(v any) string

	// LikePattern converts a user pattern to a LIKE pattern.
	LikePattern(v any) string

	// MaxListSize is the largest inline IN list before it is split.
	MaxListSize() int
}

// Capabilities lists dialect features that change rendering.
type Capabilities struct {
	// Median: the dialect has a median aggregate.
	Median bool
	// CaseInsensitiveLike: ILIKE is available and replaces upper() pairs.
	CaseInsensitiveLike bool
	// NamedBinds: the driver accepts :name binds natively.
	NamedBinds bool
}

// DefaultName is the style used when none is configured.
const DefaultName = "oracle"

var styles = map[string]func() Style{
	"oracle":   func() Style { return Oracle() },
	"postgres": func() Style { return Postgres() },
	"sqlite":   func() Style { return SQLite() },
	"mssql":    func() Style { return MSSQL() },
	"mysql":    func() Style { return MySQL() },
}

var styleAliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlite3":    "sqlite",
	"sqlserver":  "mssql",
	"mariadb":    "mysql",
}

// Lookup returns the style registered under name. The empty name selects
// DefaultName.
func Lookup(name string) (Style, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = DefaultName
	}
	if a, ok := styleAliases[n]; ok {
		n = a
	}
	ctor, ok := styles[n]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the registered style names, sorted.
func Names() []string {
	names := make([]string, 0, len(styles))
	for n := range styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
