package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcomposer/internal/testutil"
)

type buildResponse struct {
	Status  string      `json:"status"`
	Data    BuildResult `json:"data"`
	Error   *CLIError   `json:"error"`
	TraceID string      `json:"trace_id"`
}

func decodeBuild(t *testing.T, out string) buildResponse {
	t.Helper()
	var resp buildResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestBuildText(t *testing.T) {
	out, err := execute(t, "build", shopDefs, openOrders)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT c.NAME FROM CUSTOMERS c WHERE 1=1")
	assert.Contains(t, out, ":__a1 = n")
	assert.Contains(t, out, ":__a3 = open")
}

func TestBuildJSON(t *testing.T) {
	out, err := execute(t, "build", shopDefs, openOrders, "--format", "json")
	require.NoError(t, err)

	resp := decodeBuild(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "open_orders", resp.Data.Name)
	assert.Equal(t, "sqlite", resp.Data.Dialect)
	assert.Equal(t,
		"SELECT c.NAME FROM CUSTOMERS c WHERE 1=1 AND upper(c.NAME) like upper('%'||:__a1||'%') "+
			"AND EXISTS (SELECT 1 FROM ORDERS a00002 WHERE a00002.CUSTOMER_ID=c.ID AND a00002.STATUS=:__a3)",
		testutil.NormalizeSQL(resp.Data.SQL))
	assert.Equal(t, map[string]any{"__a1": "n", "__a3": "open"}, resp.Data.Binds)
}

func TestBuildFlagsOverrideDocument(t *testing.T) {
	out, err := execute(t, "build", shopDefs, openOrders, "--format", "json",
		"--dialect", "postgres", "--select", "SELECT COUNT(*) FROM CUSTOMERS c WHERE 1=1 <whereParts/>")
	require.NoError(t, err)

	resp := decodeBuild(t, out)
	assert.Equal(t, "postgres", resp.Data.Dialect)
	assert.Contains(t, resp.Data.SQL, "SELECT COUNT(*) FROM CUSTOMERS c")
}

func TestBuildWithoutSelectPrintsConstraints(t *testing.T) {
	out, err := execute(t, "build", shopDefs, unknownTypes, "--format", "json")
	require.NoError(t, err)

	resp := decodeBuild(t, out)
	assert.Empty(t, resp.Data.SQL)
	assert.Equal(t, "oracle", resp.Data.Dialect)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantCode string
	}{
		{"missing defs", []string{"build", filepath.Join(t.TempDir(), "none"), openOrders}, ExitCommandError, "E005"},
		{"missing criteria", []string{"build", shopDefs, filepath.Join("testdata", "criteria", "none.yaml")}, ExitCommandError, ErrCodeCriteria},
		{"empty range", []string{"build", shopDefs, missingValue}, ExitCommandError, ErrCodeCompose},
		{"unknown dialect", []string{"build", shopDefs, openOrders, "--dialect", "db2"}, ExitCommandError, ErrCodeCompose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			resp := decodeBuild(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
