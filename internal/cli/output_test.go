package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccessWithTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	traceID := NewTraceID()
	require.NoError(t, formatter.SuccessTrace(map[string]string{"sql": "1=1"}, traceID))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, traceID, resp.TraceID)
	assert.NotNil(t, resp.Data)
}

func TestNewTraceIDIsVersion7(t *testing.T) {
	id, err := uuid.Parse(NewTraceID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E011", "composition failed", map[string]string{"entity": "ORDER"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E011", resp.Error.Code)
	assert.Equal(t, "composition failed", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("E010", "cannot read criteria", "open x.yaml"))
			assert.Contains(t, buf.String(), "Error [E010]: cannot read criteria")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: open x.yaml")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	cause := errors.New("no such table: ORDERS")

	err := formatter.Fail(ExitCommandError, ErrCodeDatabase, "query failed", cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "E012")
	assert.Contains(t, buf.String(), "query failed: no such table: ORDERS")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "missing")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad path", errors.New("x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("Loaded %d CUE file(s)", 2)
	assert.Empty(t, out.String())
	assert.Contains(t, diag.String(), "Loaded 2 CUE file(s)")

	formatter.Verbose = false
	diag.Reset()
	formatter.VerboseLog("hidden")
	assert.Empty(t, diag.String())
}
