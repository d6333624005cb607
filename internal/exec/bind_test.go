package exec

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFormats(t *testing.T) {
	stmt := "SELECT 1 FROM T t WHERE t.A=:__a1 AND t.B BETWEEN :__a2 AND :__b3"
	binds := map[string]any{"__a1": "x", "__a2": 1, "__b3": 9}

	tests := []struct {
		name   string
		format sq.PlaceholderFormat
		want   string
	}{
		{"question", sq.Question, "SELECT 1 FROM T t WHERE t.A=? AND t.B BETWEEN ? AND ?"},
		{"dollar", sq.Dollar, "SELECT 1 FROM T t WHERE t.A=$1 AND t.B BETWEEN $2 AND $3"},
		{"atp", sq.AtP, "SELECT 1 FROM T t WHERE t.A=@p1 AND t.B BETWEEN @p2 AND @p3"},
		{"colon", sq.Colon, "SELECT 1 FROM T t WHERE t.A=:1 AND t.B BETWEEN :2 AND :3"},
		{"nil is question", nil, "SELECT 1 FROM T t WHERE t.A=? AND t.B BETWEEN ? AND ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := Bind(stmt, binds, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []any{"x", 1, 9}, args)
		})
	}
}

func TestBindSkipsLiteralsAndCasts(t *testing.T) {
	got, args, err := Bind(`SELECT t.A::text, 'a:b' FROM "T:x" t WHERE t.B=:__a1`, map[string]any{"__a1": 2}, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t, `SELECT t.A::text, 'a:b' FROM "T:x" t WHERE t.B=$1`, got)
	assert.Equal(t, []any{2}, args)
}

func TestBindKeepsLiteralQuestionMarks(t *testing.T) {
	got, args, err := Bind("SELECT 1 FROM T WHERE A='?' AND B=:__a1", map[string]any{"__a1": "y"}, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM T WHERE A='?' AND B=$1", got)
	assert.Equal(t, []any{"y"}, args)
}

func TestBindRepeatedName(t *testing.T) {
	got, args, err := Bind("A=:__a1 OR B=:__a1", map[string]any{"__a1": 5}, sq.Question)
	require.NoError(t, err)
	assert.Equal(t, "A=? OR B=?", got)
	assert.Equal(t, []any{5, 5}, args)
}

func TestBindMissingValue(t *testing.T) {
	_, _, err := Bind("A=:__a1", map[string]any{}, sq.Question)
	var mb *MissingBindError
	require.ErrorAs(t, err, &mb)
	assert.Equal(t, "__a1", mb.Name)
}

func TestBindNilValueIsPassed(t *testing.T) {
	_, args, err := Bind("A=:__a1", map[string]any{"__a1": nil}, sq.Question)
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, args)
}

func TestDriverFor(t *testing.T) {
	for dialect, want := range map[string]string{
		"sqlite":   DriverSQLite,
		"postgres": DriverPostgres,
		"MySQL":    DriverMySQL,
		"mssql":    DriverMSSQL,
	} {
		got, err := DriverFor(dialect)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := DriverFor("oracle")
	assert.Error(t, err)
}

func TestPlaceholderFor(t *testing.T) {
	assert.Equal(t, sq.Dollar, PlaceholderFor(DriverPostgres))
	assert.Equal(t, sq.AtP, PlaceholderFor(DriverMSSQL))
	assert.Equal(t, sq.Question, PlaceholderFor(DriverSQLite))
	assert.Equal(t, sq.Question, PlaceholderFor("unknown"))
}
