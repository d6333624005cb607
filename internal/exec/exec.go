// Package exec runs composed statements against a database.
//
// Composed SQL references binds as :name. Bind rewrites those references to
// the placeholders of the target driver; DB wraps a database/sql handle and
// does the rewrite on every call.
package exec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// Row maps column names to values. Byte slices are returned as strings.
type Row map[string]any

// Result is the outcome of a query, with columns in select order.
type Result struct {
	Columns []string
	Rows    []Row
}

// DB runs composed statements on one database handle.
type DB struct {
	db     *sql.DB
	driver string
	format sq.PlaceholderFormat
	logger *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger statements are traced to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		d.logger = l
	}
}

// WithPlaceholder overrides the placeholder format of the driver.
func WithPlaceholder(f sq.PlaceholderFormat) Option {
	return func(d *DB) {
		d.format = f
	}
}

// New wraps an open handle. driver selects the placeholder format.
func New(db *sql.DB, driver string, opts ...Option) *DB {
	d := &DB{
		db:     db,
		driver: driver,
		format: PlaceholderFor(driver),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open connects to dsn with driver and verifies the connection.
//
// SQLite handles are limited to one connection so that ":memory:"
// databases keep their content between calls.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return New(db, driver, opts...), nil
}

// Close closes the database handle.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// DB returns the underlying sql.DB.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Driver returns the driver name the handle was created with.
func (d *DB) Driver() string {
	return d.driver
}

// Query runs stmt with binds and reads every row.
func (d *DB) Query(ctx context.Context, stmt string, binds map[string]any) (*Result, error) {
	q, args, err := Bind(stmt, binds, d.format)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("query", "driver", d.driver, "sql", q, "args", len(args))

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	d.logger.Debug("query done", "driver", d.driver, "rows", len(res.Rows))
	return res, nil
}

// Exec runs a statement that returns no rows and reports the affected row
// count.
func (d *DB) Exec(ctx context.Context, stmt string, binds map[string]any) (int64, error) {
	q, args, err := Bind(stmt, binds, d.format)
	if err != nil {
		return 0, err
	}
	d.logger.Debug("exec", "driver", d.driver, "sql", q, "args", len(args))
	res, err := d.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
