package testutil

import (
	"github.com/roach88/sqlcomposer/internal/model"
	"github.com/roach88/sqlcomposer/internal/registry"
)

// RootAlias is the alias of the outer CUSTOMER table in every fixture
// statement.
const RootAlias = "c"

// OuterSelect is a customer statement the fixture registry's contributions
// fit into.
const OuterSelect = "SELECT <selectParts/> FROM CUSTOMERS c <fromParts/> WHERE 1=1 <whereParts/> <groupBy/>"

// Registry returns the shop fixture: customers with orders, order items
// and addresses.
//
// ORDER is a correlated EXISTS for constraints and a join (no consume) for
// queries. ADDRESS defines two aliases, so bare attribute columns below it
// are ambiguous.
func Registry() *registry.Registry {
	r := registry.New()
	noConsume := false

	r.SetEntity(&registry.EntityDef{
		Type:      "ORDER",
		Where:     "EXISTS (SELECT 1 FROM ORDERS @ORDER@ WHERE @ORDER@.CUSTOMER_ID=@parent.CUSTOMER@.ID <whereParts/> <groupBy/>)",
		Select:    "<fromPart>ORDERS @ORDER@</fromPart><wherePart>@ORDER@.CUSTOMER_ID=@parent.CUSTOMER@.ID</wherePart>",
		OneToMany: &noConsume,
	})
	r.SetEntity(&registry.EntityDef{
		Type:  "ADDRESS",
		Where: "EXISTS (SELECT 1 FROM ADDRESSES @ADDRESS@, CITIES @CITY@ WHERE @ADDRESS@.CUSTOMER_ID=@parent.CUSTOMER@.ID AND @CITY@.ID=@ADDRESS@.CITY_ID <whereParts/> <groupBy/>)",
	})

	r.SetAttribute(&registry.AttributeDef{Type: "CUSTOMER.NAME", Where: "NAME"})
	r.SetAttribute(&registry.AttributeDef{Type: "ORDER.STATUS", Where: "STATUS"})
	r.SetAttribute(&registry.AttributeDef{Type: "ORDER.TOTAL", Where: "<attribute>@parent.ORDER@.AMOUNT</attribute>"})
	r.SetAttribute(&registry.AttributeDef{Type: "ORDER.AMOUNT", Where: "<attribute>@parent.ORDER@.AMOUNT</attribute>", PlainBind: true})
	r.SetAttribute(&registry.AttributeDef{
		Type:  "ORDER.ITEM_QTY",
		Where: "<fromPart>ORDER_ITEMS @ITEM@</fromPart><wherePart>@ITEM@.ORDER_ID=@parent.ORDER@.ID AND <attribute>@ITEM@.QTY</attribute></wherePart>",
	})
	r.SetAttribute(&registry.AttributeDef{Type: "ADDRESS.CITY", Where: "NAME"})
	r.SetAttribute(&registry.AttributeDef{Type: "ADDRESS.CITY_NAME", Where: "<attribute>@CITY@.NAME</attribute>"})

	r.AddBasic(&registry.BasicDef{
		Name:      "name",
		Fields:    []string{"name"},
		Attribute: "<attribute>NAME</attribute>",
		Operator:  model.OpContains,
	})
	r.AddBasic(&registry.BasicDef{
		Name:      "created",
		Fields:    []string{"created_from", "created_to"},
		Attribute: "<attribute>CREATED</attribute>",
		Operator:  model.OpBetween,
	})
	return r
}

// DataModel returns the search form shape matching Registry, plus the
// PAYMENT entity and ORDER.PAID attribute that Registry lacks.
func DataModel() *model.DataModel {
	return &model.DataModel{
		Root:       "CUSTOMER",
		Roots:      []string{"ORDER", "ADDRESS", "PAYMENT"},
		Attributes: []string{"CUSTOMER.NAME"},
		Fields:     []string{"name", "created_from", "created_to"},
		Entities: map[string]*model.EntityType{
			"CUSTOMER": {Name: "CUSTOMER", Table: "CUSTOMERS", Attributes: []string{"CUSTOMER.NAME"}},
			"ORDER": {
				Name:       "ORDER",
				Table:      "ORDERS",
				Attributes: []string{"ORDER.STATUS", "ORDER.TOTAL", "ORDER.AMOUNT", "ORDER.PAID"},
				Entities:   []string{"PAYMENT"},
			},
			"PAYMENT": {Name: "PAYMENT", Table: "PAYMENTS", Attributes: []string{"PAYMENT.METHOD"}},
			"ADDRESS": {Name: "ADDRESS", Table: "ADDRESSES", Attributes: []string{"ADDRESS.CITY_NAME"}},
		},
	}
}
