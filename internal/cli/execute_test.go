package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlexec "github.com/roach88/sqlcomposer/internal/exec"
)

// shopFile creates a SQLite database file with three customers and their
// orders and returns its path.
func shopFile(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sqlexec.Open(ctx, sqlexec.DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE CUSTOMERS (ID INTEGER PRIMARY KEY, NAME TEXT)",
		"CREATE TABLE ORDERS (ID INTEGER PRIMARY KEY, CUSTOMER_ID INTEGER, STATUS TEXT, AMOUNT INTEGER)",
		"INSERT INTO CUSTOMERS VALUES (1, 'Ann'), (2, 'Bob'), (3, 'Dan')",
		"INSERT INTO ORDERS VALUES (1, 1, 'open', 10), (2, 2, 'open', 20), (3, 3, 'paid', 30)",
	} {
		_, err := db.Exec(ctx, stmt, nil)
		require.NoError(t, err)
	}
	return path
}

func TestExecRunsComposedStatement(t *testing.T) {
	dsn := shopFile(t)

	out, err := execute(t, "exec", shopDefs, openOrders, "--dsn", dsn, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status  string     `json:"status"`
		Data    ExecResult `json:"data"`
		TraceID string     `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, []string{"NAME"}, resp.Data.Columns)
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, "Ann", resp.Data.Rows[0]["NAME"])
}

func TestExecText(t *testing.T) {
	dsn := shopFile(t)

	out, err := execute(t, "exec", shopDefs, openOrders, "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME\nAnn\n(1 rows)")
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no outer statement", []string{"exec", shopDefs, unknownTypes, "--dsn", "x.db"}, ErrCodeUsage},
		{"no bundled driver", []string{"exec", shopDefs, openOrders, "--dsn", "x", "--dialect", "oracle"}, ErrCodeUsage},
		{"missing table", []string{"exec", shopDefs, openOrders, "--dsn", filepath.Join(t.TempDir(), "empty.db")}, ErrCodeDatabase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestExecRequiresDSN(t *testing.T) {
	_, err := execute(t, "exec", shopDefs, openOrders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}
