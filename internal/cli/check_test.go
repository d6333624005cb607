package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcomposer/internal/check"
)

type checkResponse struct {
	Status string       `json:"status"`
	Data   check.Report `json:"data"`
}

func missingTypes(r check.Report) []string {
	var out []string
	for _, e := range r.Entries {
		out = append(out, e.Type)
	}
	return out
}

func TestCheckReportsMissingDefinitions(t *testing.T) {
	out, err := execute(t, "check", shopDefs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ 3 of")
	assert.Contains(t, out, "entity PAYMENT (ORDER/PAYMENT)")
	assert.Contains(t, out, "attribute ORDER.PAID")
	assert.Contains(t, out, "where:")
}

func TestCheckJSONWithCriteria(t *testing.T) {
	out, err := execute(t, "check", shopDefs, unknownTypes, "--format", "json")
	require.Error(t, err)

	var resp checkResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.ElementsMatch(t,
		[]string{"ORDER.PAID", "PAYMENT", "PAYMENT.METHOD", "INVOICE", "INVOICE.NUMBER"},
		missingTypes(resp.Data))
}

func TestCheckComplete(t *testing.T) {
	dir := t.TempDir()
	src := `package defs

entity: ORDER: where: "EXISTS (SELECT 1 FROM ORDERS @ORDER@ WHERE @ORDER@.CUSTOMER_ID=@parent.CUSTOMER@.ID <whereParts/>)"
attribute: "ORDER.STATUS": "STATUS"
model: {
	root: "CUSTOMER"
	roots: ["ORDER"]
	entities: ORDER: attributes: ["ORDER.STATUS"]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(src), 0644))

	out, err := execute(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 2 definitions present")
}

func TestCheckNothingToCheck(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"),
		[]byte("package defs\n\nattribute: \"ORDER.STATUS\": \"STATUS\"\n"), 0644))

	_, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUsage)
}
