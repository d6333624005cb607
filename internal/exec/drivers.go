package exec

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// database/sql driver names of the bundled drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
	DriverMSSQL    = "sqlserver"
)

var dialectDrivers = map[string]string{
	"sqlite":   DriverSQLite,
	"postgres": DriverPostgres,
	"mysql":    DriverMySQL,
	"mssql":    DriverMSSQL,
}

var placeholders = map[string]sq.PlaceholderFormat{
	DriverSQLite:   sq.Question,
	DriverMySQL:    sq.Question,
	DriverPostgres: sq.Dollar,
	DriverMSSQL:    sq.AtP,
}

// DriverFor returns the bundled driver for a dialect name. Oracle has no
// bundled driver.
func DriverFor(dialect string) (string, error) {
	d, ok := dialectDrivers[strings.ToLower(dialect)]
	if !ok {
		return "", fmt.Errorf("no bundled driver for dialect %q", dialect)
	}
	return d, nil
}

// PlaceholderFor returns the placeholder format driver expects. Unknown
// drivers get "?".
func PlaceholderFor(driver string) sq.PlaceholderFormat {
	if f, ok := placeholders[driver]; ok {
		return f
	}
	return sq.Question
}
