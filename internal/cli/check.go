package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcomposer/internal/check"
	"github.com/roach88/sqlcomposer/internal/model"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <defs-dir> [criteria.yaml...]",
		Short: "Report entities, attributes and fields without definitions",
		Long: `Walk the model section of defs-dir and the given criterion documents and
report every type the definitions cannot build.

Missing definitions are printed as CUE skeletons ready to be completed and
added to the definitions directory.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, args[0], args[1:])
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, opts *RootOptions, defsDir string, criteriaPaths []string) error {
	f := opts.formatter(cmd)

	defs, err := loadDefinitions(f, defsDir)
	if err != nil {
		return err
	}
	if defs.Model == nil && len(criteriaPaths) == 0 {
		return f.Fail(ExitCommandError, ErrCodeUsage, "nothing to check: no model section and no criteria", nil)
	}

	var all []*model.Criteria
	for _, p := range criteriaPaths {
		_, crit, err := loadCriteria(f, p)
		if err != nil {
			return err
		}
		all = append(all, crit)
	}

	report := check.Check(defs.Model, defs.Registry, all...)
	f.VerboseLog("Checked %d type(s) and field(s)", report.Checked)

	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		status := "ok"
		if !report.OK() {
			status = "error"
		}
		if err := enc.Encode(CLIResponse{Status: status, Data: report}); err != nil {
			return err
		}
	} else if report.OK() {
		fmt.Fprintf(f.Writer, "✓ All %d definitions present\n", report.Checked)
	} else {
		fmt.Fprintf(f.Writer, "✗ %d of %d definitions missing\n\n", len(report.Entries), report.Checked)
		for _, e := range report.Entries {
			fmt.Fprintf(f.Writer, "  %s %s (%s)\n", e.Kind, e.Type, e.Path)
		}
		fmt.Fprintln(f.Writer)
		fmt.Fprint(f.Writer, report.String())
	}

	if !report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d definition(s) missing", len(report.Entries)))
	}
	return nil
}
