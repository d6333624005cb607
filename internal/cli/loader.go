package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sqlcomposer/internal/composer"
	"github.com/roach88/sqlcomposer/internal/criteria"
	"github.com/roach88/sqlcomposer/internal/dialect"
	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
)

// loadDefinitions loads a definitions directory and reports the first load
// or compile error through f.
func loadDefinitions(f *OutputFormatter, dir string) (*registry.Definitions, error) {
	defs, errs := registry.LoadDir(dir, registry.LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *registry.LoadError
		if errors.As(errs[0], &loadErr) {
			return nil, f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return nil, f.Fail(ExitCommandError, registry.ErrCodeGeneric, "invalid definitions", errs[0])
	}
	f.VerboseLog("Loaded %d CUE file(s) from %s", defs.FileCount, dir)
	return defs, nil
}

// loadCriteria reads a criterion document and converts its tree.
func loadCriteria(f *OutputFormatter, path string) (*criteria.Document, *model.Criteria, error) {
	doc, err := criteria.Load(path)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeCriteria, "cannot read criteria", err)
	}
	crit, err := doc.Criteria()
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeCriteria, "invalid criteria", err)
	}
	return doc, crit, nil
}

// composeFlags are the flags shared by build and exec.
type composeFlags struct {
	Dialect string
	Select  string
}

// BuildResult is the output of a composition.
type BuildResult struct {
	Name    string         `json:"name,omitempty"`
	Dialect string         `json:"dialect"`
	SQL     string         `json:"sql"`
	Binds   map[string]any `json:"binds"`
}

// String renders the SQL followed by one line per bind.
func (r *BuildResult) String() string {
	var b strings.Builder
	b.WriteString(r.SQL)
	names := make([]string, 0, len(r.Binds))
	for name := range r.Binds {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  :%s = %v", name, r.Binds[name])
	}
	return b.String()
}

// compose builds crit with the definitions. Flags override the document's
// dialect and outer statement. Without an outer statement the result is the
// WHERE constraint text.
func compose(ctx context.Context, opts *RootOptions, defs *registry.Definitions,
	doc *criteria.Document, crit *model.Criteria, flags composeFlags) (*BuildResult, error) {
	name := flags.Dialect
	if name == "" {
		name = doc.Dialect
	}
	style, err := dialect.Lookup(name)
	if err != nil {
		return nil, err
	}

	c := composer.New(style, defs.Registry, composer.WithLogger(opts.logger()))
	entities := make([]string, 0, len(doc.RootAliases))
	for entity := range doc.RootAliases {
		entities = append(entities, entity)
	}
	slices.Sort(entities)
	for _, entity := range entities {
		c.SetRootAlias(entity, doc.RootAliases[entity])
	}

	sql, err := c.Build(ctx, crit)
	if err != nil {
		return nil, err
	}
	stm := flags.Select
	if stm == "" {
		stm = doc.Select
	}
	if stm != "" {
		if sql, err = c.CreateSelectStatement(stm); err != nil {
			return nil, err
		}
	}
	return &BuildResult{
		Name:    doc.Name,
		Dialect: style.Name(),
		SQL:     strings.TrimSpace(sql),
		Binds:   c.BindMap(),
	}, nil
}

// composeFailure maps a composition error to exit codes: configuration
// errors are failures of the definitions, the rest command errors.
func composeFailure(f *OutputFormatter, err error) error {
	if composer.IsConfigError(err) {
		return f.Fail(ExitFailure, ErrCodeCompose, "composition failed", err)
	}
	return f.Fail(ExitCommandError, ErrCodeCompose, "composition failed", err)
}
