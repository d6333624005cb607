package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// NormalizeSQL collapses whitespace runs and drops blanks just inside
// parentheses. Merged templates keep the spacing around removed tags; the
// normalized form is what golden files and assertions compare.
func NormalizeSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	return strings.ReplaceAll(s, " )", ")")
}

// AssertGoldenSQL compares a composed statement and its binds against
// testdata/golden/<name>.golden.
//
// The file holds the normalized SQL on the first line and the binds as JSON
// (keys sorted) on the second. Run the tests with -update to rewrite it.
func AssertGoldenSQL(t *testing.T, name, sql string, binds map[string]any) {
	t.Helper()

	if binds == nil {
		binds = map[string]any{}
	}
	b, err := json.Marshal(binds)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(NormalizeSQL(sql)+"\n"+string(b)+"\n"))
}
