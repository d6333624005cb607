package cli

import (
	"github.com/spf13/cobra"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	flags := composeFlags{}

	cmd := &cobra.Command{
		Use:   "build <defs-dir> <criteria.yaml>",
		Short: "Compose the SQL of a criterion document",
		Long: `Compose the SQL of a criterion document with the definitions in defs-dir.

Prints the WHERE constraints, or the full statement when the document or
--select supplies an outer statement, followed by the bind values.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, rootOpts, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&flags.Dialect, "dialect", "", "SQL dialect (oracle|postgres|sqlite|mssql|mysql)")
	cmd.Flags().StringVar(&flags.Select, "select", "", "outer statement with collecting tags")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *RootOptions, flags composeFlags, defsDir, criteriaPath string) error {
	f := opts.formatter(cmd)

	defs, err := loadDefinitions(f, defsDir)
	if err != nil {
		return err
	}
	doc, crit, err := loadCriteria(f, criteriaPath)
	if err != nil {
		return err
	}

	res, err := compose(cmd.Context(), opts, defs, doc, crit, flags)
	if err != nil {
		return composeFailure(f, err)
	}
	return f.SuccessTrace(res, NewTraceID())
}
