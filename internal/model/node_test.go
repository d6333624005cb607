package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentEntity(t *testing.T) {
	name := NewAttribute("LastName", OpEQ, AggNone, "x")
	branch := NewEitherOr(true, false, name)
	person := NewEntity("Person", false, branch)
	top := NewAttribute("Active", OpEQ, AggNone, true)
	_ = NewGroup(person, top)

	assert.Same(t, person, ParentEntity(name))
	assert.Nil(t, ParentEntity(person))
	assert.Nil(t, ParentEntity(top))
	assert.Same(t, branch, name.Parent())
}

func TestAddLinksParent(t *testing.T) {
	person := NewEntity("Person", false)
	attr := NewAttribute("LastName", OpNull, AggNone)
	Add(person, attr)

	require.Len(t, person.Children(), 1)
	assert.Same(t, person, attr.Parent())
	assert.Panics(t, func() { Add(attr, NewGroup()) })
}

func TestOperatorNormalize(t *testing.T) {
	tests := []struct {
		op      Operator
		want    Operator
		negated bool
	}{
		{OpNEQ, OpEQ, true},
		{OpNotIn, OpIn, true},
		{OpNotContains, OpContains, true},
		{OpDateIsNotToday, OpDateIsToday, true},
		{OpTimeIsNotNow, OpTimeIsNow, true},
		{OpNumberNotNull, OpNumberNull, true},
		{OpEQ, OpEQ, false},
		{OpNotLike, OpNotLike, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, negated := tt.op.Normalize()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.negated, negated)
		})
	}
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("NOT_IN")
	require.NoError(t, err)
	assert.Equal(t, OpNotIn, op)

	op, err = ParseOperator("20")
	require.NoError(t, err)
	assert.Equal(t, OpEQ, op)

	_, err = ParseOperator("approximately")
	assert.Error(t, err)
	_, err = ParseOperator("99")
	assert.Error(t, err)
}

func TestOperatorsComplete(t *testing.T) {
	ops := Operators()
	assert.Len(t, ops, 62)
	for _, op := range ops {
		info, ok := op.Info()
		require.True(t, ok)
		back, err := ParseOperator(info.Name)
		require.NoError(t, err)
		assert.Equal(t, op, back)
	}
}

func TestParseAggregation(t *testing.T) {
	agg, err := ParseAggregation("Count")
	require.NoError(t, err)
	assert.Equal(t, AggCount, agg)

	agg, err = ParseAggregation("")
	require.NoError(t, err)
	assert.Equal(t, AggNone, agg)

	_, err = ParseAggregation("mode")
	assert.Error(t, err)
}

func TestZeroTraversing(t *testing.T) {
	tests := []struct {
		name   string
		op     Operator
		values []any
		want   bool
	}{
		{"eq zero", OpEQ, []any{0}, true},
		{"eq positive", OpEQ, []any{1}, false},
		{"neq positive", OpNEQ, []any{int64(3)}, true},
		{"neq zero", OpNEQ, []any{0}, false},
		{"ge negative", OpGE, []any{-1}, true},
		{"ge zero", OpGE, []any{0}, true},
		{"ge positive", OpGE, []any{1}, false},
		{"gt zero", OpGT, []any{0}, false},
		{"gt negative", OpGT, []any{-0.5}, true},
		{"le zero", OpLE, []any{0}, true},
		{"le negative", OpLE, []any{-2}, false},
		{"lt positive", OpLT, []any{3}, true},
		{"lt zero", OpLT, []any{0}, false},
		{"lt decimal", OpLT, []any{decimal.RequireFromString("0.01")}, true},
		{"between spanning", OpBetween, []any{-1, 1}, true},
		{"between positive", OpBetween, []any{1, 5}, false},
		{"between open high", OpBetween, []any{-1, nil}, true},
		{"between open low", OpBetween, []any{nil, 0}, true},
		{"between open low negative", OpBetween, []any{nil, -1}, false},
		{"text value", OpLT, []any{"3"}, false},
		{"date operator", OpDateLT, []any{3}, false},
		{"no values", OpLT, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZeroTraversing(tt.op, tt.values))
		})
	}
}

func TestCriteriaFieldValue(t *testing.T) {
	c := &Criteria{Fields: map[string]any{"Active": true, "Name": nil}}

	v, ok := c.FieldValue("Active")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = c.FieldValue("Name")
	assert.False(t, ok)

	var empty *Criteria
	_, ok = empty.FieldValue("Active")
	assert.False(t, ok)
}
