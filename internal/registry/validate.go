package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/tmpl"
)

// Validation error codes (E200-E299)
const (
	ErrMalformedTags   = "E201" // unbalanced or misplaced structural tags
	ErrEmptyTemplate   = "E202" // definition without any template
	ErrInvalidOperator = "E203" // basic definition with an unknown operator
	ErrSelectInGroupBy = "E204" // static group-by part containing SELECT
)

// ValidationError is one problem found in a definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every definition of r and returns all problems found,
// ordered by entity, attribute and basic definition.
func Validate(r *Registry) []ValidationError {
	var errs []ValidationError

	for _, typ := range r.EntityTypes() {
		d := r.entities[typ]
		field := "entity." + typ
		if strings.TrimSpace(d.Select) == "" && strings.TrimSpace(d.Where) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "select or where template is required", Code: ErrEmptyTemplate})
			continue
		}
		errs = append(errs, validateTemplate(field+".select", d.Select)...)
		errs = append(errs, validateTemplate(field+".where", d.Where)...)
	}

	for _, typ := range r.AttributeTypes() {
		d := r.attributes[typ]
		field := "attribute." + typ
		if strings.TrimSpace(d.Select) == "" && strings.TrimSpace(d.Where) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "select or where template is required", Code: ErrEmptyTemplate})
			continue
		}
		errs = append(errs, validateTemplate(field+".select", d.Select)...)
		errs = append(errs, validateTemplate(field+".where", d.Where)...)
	}

	for i, b := range r.basics {
		field := fmt.Sprintf("field.%s", b.Name)
		if b.Name == "" {
			field = fmt.Sprintf("field[%d]", i)
		}
		if strings.TrimSpace(b.Attribute) == "" {
			errs = append(errs, ValidationError{Field: field + ".attribute", Message: "attribute template is required", Code: ErrEmptyTemplate})
		} else {
			errs = append(errs, validateTemplate(field+".attribute", b.Attribute)...)
		}
		if len(b.Fields) == 0 {
			errs = append(errs, ValidationError{Field: field + ".fields", Message: "at least one form field is required", Code: ErrEmptyTemplate})
		}
		if !b.Operator.Valid() {
			errs = append(errs, ValidationError{Field: field + ".operator", Message: fmt.Sprintf("unknown operator code %d", int(b.Operator)), Code: ErrInvalidOperator})
		}
	}

	return errs
}

func validateTemplate(field, s string) []ValidationError {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var errs []ValidationError
	if err := tmpl.Validate(s); err != nil {
		msg := err.Error()
		var se *tmpl.SyntaxError
		if errors.As(err, &se) {
			msg = fmt.Sprintf("offset %d: <%s>: %s", se.Offset, se.Tag, se.Message)
		}
		errs = append(errs, ValidationError{Field: field, Message: msg, Code: ErrMalformedTags})
	}

	t := tmpl.Parse(s)
	for _, name := range []string{tmpl.TagGroupBy, tmpl.TagGroupByPart} {
		for _, e := range t.FindAll(name) {
			static := e.Content()
			if name == tmpl.TagGroupBy {
				static = tmpl.Parse(static).Remove(tmpl.TagGroupByParts).Remove(tmpl.TagHavingParts).String()
			}
			if err := contrib.CheckGroupByPart(static); err != nil {
				errs = append(errs, ValidationError{Field: field, Message: err.Error(), Code: ErrSelectInGroupBy})
			}
		}
	}
	return errs
}
