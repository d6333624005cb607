package registry

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sqlcomposer/internal/model"
)

// Definitions is the compiled content of a definitions directory.
type Definitions struct {
	Registry *Registry

	// Model is nil when no model section exists.
	Model *model.DataModel

	CUEValue  cue.Value
	FileCount int
}

// CompileError is a definition that could not be read, with its CUE
// position when known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile reads the sections of v:
//
//	entity:    <TYPE>: {select?: string, where?: string, one_to_many?: bool}
//	attribute: <TYPE>: string | {select?: string, where?: string, plain_bind?: bool}
//	field:     <NAME>: {fields?: [...string], attribute: string, operator: string | int, plain_bind?: bool}
//	model:     {roots?: [...], attributes?: [...], fields?: [...], entities?: <TYPE>: {...}}
//
// A string attribute is its where template. A field without fields reads
// the form field named like itself.
func Compile(v cue.Value, mode LoadMode) (*Definitions, []error) {
	defs := &Definitions{Registry: New(), CUEValue: v}
	var errs []error
	fail := func(err error) bool {
		errs = append(errs, err)
		return mode == LoadModeFailFast
	}

	if sec := lookup(v, "entity"); sec.Exists() {
		iter, err := sec.Fields()
		if err != nil && fail(formatCUEError(err)) {
			return defs, errs
		}
		for err == nil && iter.Next() {
			def, cerr := compileEntity(iter.Label(), iter.Value())
			if cerr != nil {
				if fail(cerr) {
					return defs, errs
				}
				continue
			}
			defs.Registry.SetEntity(def)
		}
	}

	if sec := lookup(v, "attribute"); sec.Exists() {
		iter, err := sec.Fields()
		if err != nil && fail(formatCUEError(err)) {
			return defs, errs
		}
		for err == nil && iter.Next() {
			def, cerr := compileAttribute(iter.Label(), iter.Value())
			if cerr != nil {
				if fail(cerr) {
					return defs, errs
				}
				continue
			}
			defs.Registry.SetAttribute(def)
		}
	}

	if sec := lookup(v, "field"); sec.Exists() {
		iter, err := sec.Fields()
		if err != nil && fail(formatCUEError(err)) {
			return defs, errs
		}
		for err == nil && iter.Next() {
			def, cerr := compileBasic(iter.Label(), iter.Value())
			if cerr != nil {
				if fail(cerr) {
					return defs, errs
				}
				continue
			}
			defs.Registry.AddBasic(def)
		}
	}

	if sec := lookup(v, "model"); sec.Exists() {
		dm, err := compileModel(sec)
		if err != nil && fail(err) {
			return defs, errs
		}
		defs.Model = dm
	}

	return defs, errs
}

func compileEntity(typ string, v cue.Value) (*EntityDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.Kind() != cue.StructKind {
		return nil, &CompileError{Field: "entity." + typ, Message: "must be a struct", Pos: v.Pos()}
	}
	def := &EntityDef{Type: typ}
	var err error
	if def.Select, err = optString(v, "select"); err != nil {
		return nil, err
	}
	if def.Where, err = optString(v, "where"); err != nil {
		return nil, err
	}
	if f := lookup(v, "one_to_many"); f.Exists() {
		b, err := f.Bool()
		if err != nil {
			return nil, &CompileError{Field: "entity." + typ + ".one_to_many", Message: "must be a bool", Pos: f.Pos()}
		}
		def.OneToMany = &b
	}
	if def.Select == "" && def.Where == "" {
		return nil, &CompileError{Field: "entity." + typ, Message: "select or where is required", Pos: v.Pos()}
	}
	return def, nil
}

func compileAttribute(typ string, v cue.Value) (*AttributeDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := &AttributeDef{Type: typ}
	if s, err := v.String(); err == nil {
		def.Where = s
		return def, nil
	}
	if v.Kind() != cue.StructKind {
		return nil, &CompileError{Field: "attribute." + typ, Message: "must be a string or a struct", Pos: v.Pos()}
	}
	var err error
	if def.Select, err = optString(v, "select"); err != nil {
		return nil, err
	}
	if def.Where, err = optString(v, "where"); err != nil {
		return nil, err
	}
	if def.PlainBind, err = optBool(v, "plain_bind"); err != nil {
		return nil, err
	}
	if def.Select == "" && def.Where == "" {
		return nil, &CompileError{Field: "attribute." + typ, Message: "select or where is required", Pos: v.Pos()}
	}
	return def, nil
}

func compileBasic(name string, v cue.Value) (*BasicDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.Kind() != cue.StructKind {
		return nil, &CompileError{Field: "field." + name, Message: "must be a struct", Pos: v.Pos()}
	}
	def := &BasicDef{Name: name}
	var err error
	if def.Attribute, err = optString(v, "attribute"); err != nil {
		return nil, err
	}
	if def.Attribute == "" {
		return nil, &CompileError{Field: "field." + name + ".attribute", Message: "attribute is required", Pos: v.Pos()}
	}
	if def.PlainBind, err = optBool(v, "plain_bind"); err != nil {
		return nil, err
	}
	if def.Fields, err = optStrings(v, "fields"); err != nil {
		return nil, err
	}
	if len(def.Fields) == 0 {
		def.Fields = []string{name}
	}

	opVal := lookup(v, "operator")
	if !opVal.Exists() {
		def.Operator = model.OpEQ
		return def, nil
	}
	if code, err := opVal.Int64(); err == nil {
		def.Operator = model.Operator(code)
		if !def.Operator.Valid() {
			return nil, &CompileError{Field: "field." + name + ".operator", Message: fmt.Sprintf("unknown operator code %d", code), Pos: opVal.Pos()}
		}
		return def, nil
	}
	s, err := opVal.String()
	if err != nil {
		return nil, &CompileError{Field: "field." + name + ".operator", Message: "must be an operator name or code", Pos: opVal.Pos()}
	}
	if def.Operator, err = model.ParseOperator(s); err != nil {
		return nil, &CompileError{Field: "field." + name + ".operator", Message: err.Error(), Pos: opVal.Pos()}
	}
	return def, nil
}

func compileModel(v cue.Value) (*model.DataModel, error) {
	dm := &model.DataModel{Entities: make(map[string]*model.EntityType)}
	var err error
	if dm.Root, err = optString(v, "root"); err != nil {
		return nil, err
	}
	if dm.Roots, err = optStrings(v, "roots"); err != nil {
		return nil, err
	}
	if dm.Attributes, err = optStrings(v, "attributes"); err != nil {
		return nil, err
	}
	if dm.Fields, err = optStrings(v, "fields"); err != nil {
		return nil, err
	}

	ents := lookup(v, "entities")
	if !ents.Exists() {
		return dm, nil
	}
	iter, err := ents.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		ev := iter.Value()
		et := &model.EntityType{Name: iter.Label()}
		if et.Table, err = optString(ev, "table"); err != nil {
			return nil, err
		}
		if et.Attributes, err = optStrings(ev, "attributes"); err != nil {
			return nil, err
		}
		if et.Entities, err = optStrings(ev, "entities"); err != nil {
			return nil, err
		}
		dm.Entities[et.Name] = et
	}
	return dm, nil
}

func optString(v cue.Value, label string) (string, error) {
	f := lookup(v, label)
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", &CompileError{Field: label, Message: "must be a string", Pos: f.Pos()}
	}
	return s, nil
}

func optBool(v cue.Value, label string) (bool, error) {
	f := lookup(v, label)
	if !f.Exists() {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, &CompileError{Field: label, Message: "must be a bool", Pos: f.Pos()}
	}
	return b, nil
}

func optStrings(v cue.Value, label string) ([]string, error) {
	f := lookup(v, label)
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, &CompileError{Field: label, Message: "must be a list of strings", Pos: f.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: label, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
