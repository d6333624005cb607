package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shopDefs     = filepath.Join("testdata", "defs")
	invalidDefs  = filepath.Join("testdata", "invalid")
	openOrders   = filepath.Join("testdata", "criteria", "open_orders.yaml")
	unknownTypes = filepath.Join("testdata", "criteria", "unknown_entity.yaml")
	missingValue = filepath.Join("testdata", "criteria", "missing_value.yaml")
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sqlcomposer", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"build", "check", "validate", "exec"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestExecCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"exec"})
	require.NoError(t, err)
	for _, name := range []string{"dialect", "select", "driver", "dsn"} {
		assert.NotNil(t, sub.Flags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "validate", shopDefs, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerboseInstallsDebugLogger(t *testing.T) {
	cmd := NewRootCommand()
	diag := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(diag)
	cmd.SetArgs([]string{"build", shopDefs, unknownTypes, "-v"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, diag.String(), "Loaded 1 CUE file(s)")
	assert.Contains(t, diag.String(), "level=WARN")
	assert.Contains(t, diag.String(), "INVOICE")
}
