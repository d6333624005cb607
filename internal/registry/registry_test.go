package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/model"
)

const sampleDefs = `
package defs

entity: ORDER: {
	select: "SELECT <selectParts/> FROM ORDERS @ORDER@ WHERE 1=1 <whereParts/> <groupBy/>"
	where:  "EXISTS (SELECT 1 FROM ORDERS @ORDER@ WHERE @ORDER@.CUSTOMER_ID=@parent.CUSTOMER@.ID <whereParts/> <groupBy/>)"
	one_to_many: false
}

attribute: "ORDER.STATUS": "<attribute>@parent.ORDER@.STATUS</attribute>"
attribute: "ORDER.AMOUNT": {
	select: "<attribute>@parent.ORDER@.AMOUNT</attribute>"
	where:  "<attribute>@parent.ORDER@.AMOUNT</attribute>"
	plain_bind: true
}

field: name: {
	attribute: "<attribute>NAME</attribute>"
	operator:  "contains"
}
field: created: {
	fields: ["created_from", "created_to"]
	attribute: "<attribute>CREATED</attribute>"
	operator:  45
}

model: {
	roots: ["CUSTOMER"]
	fields: ["name"]
	entities: CUSTOMER: {table: "CUSTOMERS", attributes: ["NAME"], entities: ["ORDER"]}
	entities: ORDER: {table: "ORDERS", attributes: ["STATUS", "AMOUNT"]}
}
`

func TestCompileString(t *testing.T) {
	defs, errs := CompileString(sampleDefs, LoadModeCollectAll)
	require.Empty(t, errs)
	reg := defs.Registry

	order, ok := reg.Entity("ORDER")
	require.True(t, ok)
	assert.Contains(t, order.Template(contrib.BuildQuery), "FROM ORDERS @ORDER@")
	assert.Contains(t, order.Template(contrib.BuildConstraints), "EXISTS")
	assert.False(t, order.Consume(true))

	status, ok := reg.Attribute("ORDER.STATUS")
	require.True(t, ok)
	assert.Equal(t, "<attribute>@parent.ORDER@.STATUS</attribute>", status.Where)
	assert.Equal(t, status.Where, status.Template(contrib.QueryOfAttributeAndConstraintOfContext))

	amount, ok := reg.Attribute("ORDER.AMOUNT")
	require.True(t, ok)
	assert.True(t, amount.PlainBind)

	assert.Equal(t, []string{"ORDER"}, reg.EntityTypes())
	assert.Equal(t, []string{"ORDER.AMOUNT", "ORDER.STATUS"}, reg.AttributeTypes())

	require.Len(t, reg.Basics(), 2)
	created, ok := reg.Basic("created_to")
	require.True(t, ok)
	assert.Equal(t, model.OpBetween, created.Operator)
	assert.Equal(t, []string{"created_from", "created_to"}, created.Fields)
	name, ok := reg.Basic("name")
	require.True(t, ok)
	assert.Equal(t, model.OpContains, name.Operator)

	require.NotNil(t, defs.Model)
	assert.Equal(t, []string{"CUSTOMER"}, defs.Model.Roots)
	assert.Equal(t, "ORDERS", defs.Model.Entities["ORDER"].Table)
	assert.Equal(t, []string{"ORDER"}, defs.Model.Entities["CUSTOMER"].Entities)
}

func TestCompileErrors(t *testing.T) {
	src := `
entity: EMPTY: {}
field: bad: {attribute: "X", operator: "sideways"}
attribute: NUM: 42
`
	_, errs := CompileString(src, LoadModeCollectAll)
	require.Len(t, errs, 3)
	for _, err := range errs {
		var ce *CompileError
		assert.ErrorAs(t, err, &ce)
	}

	_, errs = CompileString(src, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(sampleDefs), 0644))

	defs, errs := LoadDir(dir, LoadModeFailFast)
	require.Empty(t, errs)
	assert.Equal(t, 1, defs.FileCount)
	_, ok := defs.Registry.Entity("ORDER")
	assert.True(t, ok)
}

func TestLoadDirMissing(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
	require.Len(t, errs, 1)
	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadDirNoFiles(t *testing.T) {
	_, errs := LoadDir(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)
	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestValidate(t *testing.T) {
	reg := New()
	reg.SetEntity(&EntityDef{Type: "OK", Where: "EXISTS (SELECT 1 FROM T @OK@ <whereParts/> <groupBy/>)"})
	reg.SetEntity(&EntityDef{Type: "BROKEN", Where: "<whereParts>x"})
	reg.SetEntity(&EntityDef{Type: "NONE"})
	reg.SetAttribute(&AttributeDef{Type: "GROUPED", Select: "<groupByPart>(SELECT 1 FROM DUAL)</groupByPart>"})
	reg.AddBasic(&BasicDef{Name: "f", Fields: []string{"f"}, Attribute: "<attribute>F</attribute>", Operator: model.Operator(99)})

	errs := Validate(reg)
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{ErrMalformedTags, ErrEmptyTemplate, ErrSelectInGroupBy, ErrInvalidOperator}, codes)
}

func TestValidateClean(t *testing.T) {
	defs, errs := CompileString(sampleDefs, LoadModeFailFast)
	require.Empty(t, errs)
	assert.Empty(t, Validate(defs.Registry))
}

func TestAttributeTemplateFallback(t *testing.T) {
	d := &AttributeDef{Select: "S"}
	assert.Equal(t, "S", d.Template(contrib.ConstraintOfAttribute))
	d = &AttributeDef{Select: "S", Where: "W"}
	assert.Equal(t, "W", d.Template(contrib.ConstraintOfAttributeWithContext))
	assert.Equal(t, "S", d.Template(contrib.QueryOfAttributeAndConstraintOfContext))
}
