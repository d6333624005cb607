package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sqlexec "github.com/roach88/sqlcomposer/internal/exec"
)

type execFlags struct {
	composeFlags
	Driver string
	DSN    string
}

// ExecResult is the output of the exec command.
type ExecResult struct {
	BuildResult
	Columns []string      `json:"columns"`
	Rows    []sqlexec.Row `json:"rows"`
}

// String renders the statement and a tab separated table of the rows.
func (r *ExecResult) String() string {
	var b strings.Builder
	b.WriteString(r.BuildResult.String())
	b.WriteString("\n\n")
	b.WriteString(strings.Join(r.Columns, "\t"))
	for _, row := range r.Rows {
		b.WriteByte('\n')
		for i, c := range r.Columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%v", row[c])
		}
	}
	fmt.Fprintf(&b, "\n(%d rows)", len(r.Rows))
	return b.String()
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	flags := execFlags{}

	cmd := &cobra.Command{
		Use:   "exec <defs-dir> <criteria.yaml>",
		Short: "Compose a statement and run it",
		Long: `Compose the full statement of a criterion document and run it against a
database. The statement needs an outer select, from the document or --select.

The driver defaults to the bundled driver of the dialect: sqlite3, pgx,
mysql or sqlserver.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, rootOpts, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&flags.Dialect, "dialect", "", "SQL dialect (oracle|postgres|sqlite|mssql|mysql)")
	cmd.Flags().StringVar(&flags.Select, "select", "", "outer statement with collecting tags")
	cmd.Flags().StringVar(&flags.Driver, "driver", "", "database/sql driver name (default: from dialect)")
	cmd.Flags().StringVar(&flags.DSN, "dsn", "", "data source name")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

func runExec(cmd *cobra.Command, opts *RootOptions, flags execFlags, defsDir, criteriaPath string) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	defs, err := loadDefinitions(f, defsDir)
	if err != nil {
		return err
	}
	doc, crit, err := loadCriteria(f, criteriaPath)
	if err != nil {
		return err
	}
	if flags.Select == "" && doc.Select == "" {
		return f.Fail(ExitCommandError, ErrCodeUsage, "exec needs an outer statement (--select or select in the document)", nil)
	}

	built, err := compose(ctx, opts, defs, doc, crit, flags.composeFlags)
	if err != nil {
		return composeFailure(f, err)
	}

	driver := flags.Driver
	if driver == "" {
		if driver, err = sqlexec.DriverFor(built.Dialect); err != nil {
			return f.Fail(ExitCommandError, ErrCodeUsage, "no driver", err)
		}
	}
	traceID := NewTraceID()
	logger := opts.logger().With("trace_id", traceID)

	db, err := sqlexec.Open(ctx, driver, flags.DSN, sqlexec.WithLogger(logger))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "cannot open database", err)
	}
	defer db.Close()

	res, err := db.Query(ctx, built.SQL, built.Binds)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "query failed", err)
	}
	return f.SuccessTrace(&ExecResult{BuildResult: *built, Columns: res.Columns, Rows: res.Rows}, traceID)
}
