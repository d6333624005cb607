package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
	"github.com/roach88/sqlcomposer/internal/testutil"
)

func TestCheckDataModel(t *testing.T) {
	report := Check(testutil.DataModel(), testutil.Registry())

	require.False(t, report.OK())
	assert.Equal(t, []Entry{
		{Kind: KindAttribute, Path: "ORDER", Type: "ORDER.PAID", Skeleton: "@ORDER@.PAID"},
		{
			Kind:     KindEntity,
			Path:     "ORDER/PAYMENT",
			Type:     "PAYMENT",
			Skeleton: "EXISTS (SELECT 1 FROM PAYMENTS @PAYMENT@ WHERE @PAYMENT@.ORDER_ID=@parent.ORDER@.ORDER_ID <whereParts/> <groupBy/>)",
		},
		{Kind: KindAttribute, Path: "ORDER/PAYMENT", Type: "PAYMENT.METHOD", Skeleton: "@PAYMENT@.METHOD"},
	}, report.Entries)
	assert.Equal(t, 13, report.Checked)
}

func TestCheckCriteria(t *testing.T) {
	criteria := &model.Criteria{
		Fields: map[string]any{"nickname": "x"},
		Nodes: []model.Node{
			model.NewEntity("REFUND", false),
			model.NewEntity("ORDER", false,
				model.NewAttribute("ORDER.SHIPPED", model.OpEQ, model.AggNone, true),
				model.NewAttribute("ORDER.COUNT", model.OpGT, model.AggCount, 1),
			),
		},
	}

	report := Check(nil, testutil.Registry(), criteria)

	assert.Equal(t, []Entry{
		{
			Kind:     KindEntity,
			Path:     "criteria",
			Type:     "REFUND",
			Skeleton: "EXISTS (SELECT 1 FROM REFUND @REFUND@ WHERE 1=1 <whereParts/> <groupBy/>)",
		},
		{Kind: KindAttribute, Path: "criteria", Type: "ORDER.SHIPPED", Skeleton: "@ORDER@.SHIPPED"},
		{Kind: KindField, Path: "form", Type: "nickname", Skeleton: "<attribute>NICKNAME</attribute>"},
	}, report.Entries)
}

func TestCheckCycle(t *testing.T) {
	dm := &model.DataModel{
		Root:  "CUSTOMER",
		Roots: []string{"A"},
		Entities: map[string]*model.EntityType{
			"A": {Name: "A", Table: "TA", Entities: []string{"B"}},
			"B": {Name: "B", Table: "TB", Entities: []string{"A"}},
		},
	}

	report := Check(dm, registry.New())

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "A", report.Entries[0].Type)
	assert.Equal(t, "A/B", report.Entries[1].Path)
}

func TestReportStringCompiles(t *testing.T) {
	report := Check(testutil.DataModel(), testutil.Registry(),
		&model.Criteria{Fields: map[string]any{"nickname": "x"}})

	src := report.String()
	require.NotEmpty(t, src)

	defs, errs := registry.CompileString(src, registry.LoadModeCollectAll)
	require.Empty(t, errs, "report:\n%s", src)

	payment, ok := defs.Registry.Entity("PAYMENT")
	require.True(t, ok)
	assert.Contains(t, payment.Where, "FROM PAYMENTS @PAYMENT@")

	paid, ok := defs.Registry.Attribute("ORDER.PAID")
	require.True(t, ok)
	assert.Equal(t, "@ORDER@.PAID", paid.Where)

	nick, ok := defs.Registry.Basic("nickname")
	require.True(t, ok)
	assert.Equal(t, model.OpEQ, nick.Operator)
	assert.Empty(t, registry.Validate(defs.Registry))
}

func TestReportStringEmpty(t *testing.T) {
	assert.Empty(t, (&Report{}).String())
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "CREATED_AT", ColumnName("Order.createdAt"))
	assert.Equal(t, "STATUS", ColumnName("ORDER.STATUS"))
	assert.Equal(t, "FIRST_NAME", ColumnName("first-name"))
	assert.Equal(t, "STRASSE", ColumnName("straße"))
}
