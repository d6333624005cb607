package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlcomposer/internal/registry"
)

// Validation error codes of the CLI. Definition errors use the registry
// codes (E201-E204).
const (
	ErrCodeCompile = "E101" // definition could not be compiled
)

// ValidationIssue is one problem with its source line when known.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Entities   int               `json:"entities"`
	Attributes int               `json:"attributes"`
	Fields     int               `json:"fields"`
	Errors     []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate template definitions",
		Long: `Validate the CUE template definitions in defs-dir.

Reports every definition that cannot be compiled, every template with
unbalanced or misplaced tags and static group-by parts that contain a
SELECT.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, defsDir string) error {
	f := opts.formatter(cmd)

	defs, errs := registry.LoadDir(defsDir, registry.LoadModeCollectAll)
	if defs == nil {
		var loadErr *registry.LoadError
		if len(errs) > 0 && errors.As(errs[0], &loadErr) {
			return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return f.Fail(ExitCommandError, registry.ErrCodeGeneric, "cannot load definitions", firstError(errs))
	}
	f.VerboseLog("Found %d CUE file(s) in %s", defs.FileCount, defsDir)

	res := &ValidationResult{
		Entities:   len(defs.Registry.EntityTypes()),
		Attributes: len(defs.Registry.AttributeTypes()),
		Fields:     len(defs.Registry.Basics()),
	}
	for _, err := range errs {
		res.Errors = append(res.Errors, compileIssue(err))
	}
	for _, ve := range registry.Validate(defs.Registry) {
		res.Errors = append(res.Errors, ValidationIssue{Field: ve.Field, Message: ve.Message, Code: ve.Code})
	}
	res.Valid = len(res.Errors) == 0

	if res.Valid {
		if f.Format == "json" {
			return f.Success(res)
		}
		fmt.Fprintf(f.Writer, "✓ All definitions valid (%d entities, %d attributes, %d fields)\n",
			res.Entities, res.Attributes, res.Fields)
		return nil
	}
	return outputValidationErrors(f, res)
}

func compileIssue(err error) ValidationIssue {
	var cErr *registry.CompileError
	if errors.As(err, &cErr) {
		return ValidationIssue{Field: cErr.Field, Message: cErr.Message, Code: ErrCodeCompile, Line: lineOf(cErr.Pos)}
	}
	return ValidationIssue{Field: "load", Message: err.Error(), Code: ErrCodeCompile}
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

func outputValidationErrors(f *OutputFormatter, res *ValidationResult) error {
	fail := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(res.Errors)))

	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(CLIResponse{
			Status: "error",
			Data:   res,
			Error: &CLIError{
				Code:    res.Errors[0].Code,
				Message: fail.Message,
			},
		}); err != nil {
			return err
		}
		return fail
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, issue := range res.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
	}
	return fail
}
