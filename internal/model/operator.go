package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a comparison kind of an attribute node.
type Operator int

// Operator codes. The numbering is the persisted search form format.
const (
	OpNone                   Operator = 0
	OpContains               Operator = 1
	OpDateIsInDays           Operator = 2
	OpDateIsInGEDays         Operator = 3
	OpDateIsInGEMonths       Operator = 4
	OpDateIsInLEDays         Operator = 5
	OpDateIsInLEMonths       Operator = 6
	OpDateIsInLastDays       Operator = 7
	OpDateIsInLastMonths     Operator = 8
	OpDateIsInMonths         Operator = 9
	OpDateIsInNextDays       Operator = 10
	OpDateIsInNextMonths     Operator = 11
	OpDateIsNotToday         Operator = 12
	OpDateIsToday            Operator = 13
	OpDateTimeIsInGEHours    Operator = 14
	OpDateTimeIsInGEMinutes  Operator = 15
	OpDateTimeIsInLEHours    Operator = 16
	OpDateTimeIsInLEMinutes  Operator = 17
	OpDateTimeIsNotNow       Operator = 18
	OpDateTimeIsNow          Operator = 19
	OpEQ                     Operator = 20
	OpEndsWith               Operator = 21
	OpGE                     Operator = 22
	OpGT                     Operator = 23
	OpIn                     Operator = 24
	OpLE                     Operator = 25
	OpLT                     Operator = 26
	OpNEQ                    Operator = 27
	OpNotContains            Operator = 28
	OpNotEndsWith            Operator = 29
	OpNotIn                  Operator = 30
	OpNotNull                Operator = 31
	OpNotStartsWith          Operator = 32
	OpNull                   Operator = 33
	OpNumberNotNull          Operator = 34
	OpNumberNull             Operator = 35
	OpStartsWith             Operator = 36
	OpTimeIsInGEHours        Operator = 37
	OpTimeIsInGEMinutes      Operator = 38
	OpTimeIsInHours          Operator = 39
	OpTimeIsInLEHours        Operator = 40
	OpTimeIsInLEMinutes      Operator = 41
	OpTimeIsInMinutes        Operator = 42
	OpTimeIsNotNow           Operator = 43
	OpTimeIsNow              Operator = 44
	OpBetween                Operator = 45
	OpLike                   Operator = 46
	OpDateBetween            Operator = 47
	OpDateTimeBetween        Operator = 48
	OpDateEQ                 Operator = 49
	OpDateTimeEQ             Operator = 50
	OpDateGE                 Operator = 51
	OpDateTimeGE             Operator = 52
	OpDateGT                 Operator = 53
	OpDateTimeGT             Operator = 54
	OpDateLE                 Operator = 55
	OpDateTimeLE             Operator = 56
	OpDateLT                 Operator = 57
	OpDateTimeLT             Operator = 58
	OpDateNEQ                Operator = 59
	OpDateTimeNEQ            Operator = 60
	OpNotLike                Operator = 61
)

// Arity is the number of values an operator consumes.
type Arity int

const (
	// ArityNone operators ignore values (IS NULL, IS TODAY).
	ArityNone Arity = iota
	// ArityOne operators consume exactly one value.
	ArityOne
	// ArityRange operators consume two values; either may be nil.
	ArityRange
	// ArityList operators consume one []any value rendered inline.
	ArityList
)

// Binding describes how operator values reach the statement.
type Binding int

const (
	// BindNone: nothing is bound.
	BindNone Binding = iota
	// BindValue: each value is bound as is.
	BindValue
	// BindLike: the value is converted to a LIKE pattern before binding.
	BindLike
	// BindInline: values are rendered as literals (IN lists).
	BindInline
)

// OperatorInfo is the static description of an operator.
type OperatorInfo struct {
	Name    string
	Arity   Arity
	Binding Binding

	// Positive is the operator rendered for a negated operator; the result
	// is wrapped in NOT (...). Zero for positive operators.
	Positive Operator

	// Numeric operators are eligible for zero-traversal detection.
	Numeric bool
}

var operators = map[Operator]OperatorInfo{
	OpNone:                  {Name: "none", Arity: ArityNone, Binding: BindValue},
	OpContains:              {Name: "contains", Arity: ArityOne, Binding: BindLike},
	OpDateIsInDays:          {Name: "date_is_in_days", Arity: ArityOne, Binding: BindValue},
	OpDateIsInGEDays:        {Name: "date_is_in_ge_days", Arity: ArityOne, Binding: BindValue},
	OpDateIsInGEMonths:      {Name: "date_is_in_ge_months", Arity: ArityOne, Binding: BindValue},
	OpDateIsInLEDays:        {Name: "date_is_in_le_days", Arity: ArityOne, Binding: BindValue},
	OpDateIsInLEMonths:      {Name: "date_is_in_le_months", Arity: ArityOne, Binding: BindValue},
	OpDateIsInLastDays:      {Name: "date_is_in_last_days", Arity: ArityOne, Binding: BindValue},
	OpDateIsInLastMonths:    {Name: "date_is_in_last_months", Arity: ArityOne, Binding: BindValue},
	OpDateIsInMonths:        {Name: "date_is_in_months", Arity: ArityOne, Binding: BindValue},
	OpDateIsInNextDays:      {Name: "date_is_in_next_days", Arity: ArityOne, Binding: BindValue},
	OpDateIsInNextMonths:    {Name: "date_is_in_next_months", Arity: ArityOne, Binding: BindValue},
	OpDateIsNotToday:        {Name: "date_is_not_today", Arity: ArityNone, Binding: BindNone, Positive: OpDateIsToday},
	OpDateIsToday:           {Name: "date_is_today", Arity: ArityNone, Binding: BindNone},
	OpDateTimeIsInGEHours:   {Name: "date_time_is_in_ge_hours", Arity: ArityOne, Binding: BindValue},
	OpDateTimeIsInGEMinutes: {Name: "date_time_is_in_ge_minutes", Arity: ArityOne, Binding: BindValue},
	OpDateTimeIsInLEHours:   {Name: "date_time_is_in_le_hours", Arity: ArityOne, Binding: BindValue},
	OpDateTimeIsInLEMinutes: {Name: "date_time_is_in_le_minutes", Arity: ArityOne, Binding: BindValue},
	OpDateTimeIsNotNow:      {Name: "date_time_is_not_now", Arity: ArityNone, Binding: BindNone, Positive: OpDateTimeIsNow},
	OpDateTimeIsNow:         {Name: "date_time_is_now", Arity: ArityNone, Binding: BindNone},
	OpEQ:                    {Name: "eq", Arity: ArityOne, Binding: BindValue, Numeric: true},
	OpEndsWith:              {Name: "ends_with", Arity: ArityOne, Binding: BindLike},
	OpGE:                    {Name: "ge", Arity: ArityOne, Binding: BindValue, Numeric: true},
	OpGT:                    {Name: "gt", Arity: ArityOne, Binding: BindValue, Numeric: true},
	OpIn:                    {Name: "in", Arity: ArityList, Binding: BindInline},
	OpLE:                    {Name: "le", Arity: ArityOne, Binding: BindValue, Numeric: true},
	OpLT:                    {Name: "lt", Arity: ArityOne, Binding: BindValue, Numeric: true},
	OpNEQ:                   {Name: "neq", Arity: ArityOne, Binding: BindValue, Positive: OpEQ, Numeric: true},
	OpNotContains:           {Name: "not_contains", Arity: ArityOne, Binding: BindLike, Positive: OpContains},
	OpNotEndsWith:           {Name: "not_ends_with", Arity: ArityOne, Binding: BindLike, Positive: OpEndsWith},
	OpNotIn:                 {Name: "not_in", Arity: ArityList, Binding: BindInline, Positive: OpIn},
	OpNotNull:               {Name: "not_null", Arity: ArityNone, Binding: BindNone, Positive: OpNull},
	OpNotStartsWith:         {Name: "not_starts_with", Arity: ArityOne, Binding: BindLike, Positive: OpStartsWith},
	OpNull:                  {Name: "null", Arity: ArityNone, Binding: BindNone},
	OpNumberNotNull:         {Name: "number_not_null", Arity: ArityNone, Binding: BindNone, Positive: OpNumberNull},
	OpNumberNull:            {Name: "number_null", Arity: ArityNone, Binding: BindNone},
	OpStartsWith:            {Name: "starts_with", Arity: ArityOne, Binding: BindLike},
	OpTimeIsInGEHours:       {Name: "time_is_in_ge_hours", Arity: ArityOne, Binding: BindValue},
	OpTimeIsInGEMinutes:     {Name: "time_is_in_ge_minutes", Arity: ArityOne, Binding: BindValue},
	OpTimeIsInHours:         {Name: "time_is_in_hours", Arity: ArityOne, Binding: BindValue},
	OpTimeIsInLEHours:       {Name: "time_is_in_le_hours", Arity: ArityOne, Binding: BindValue},
	OpTimeIsInLEMinutes:     {Name: "time_is_in_le_minutes", Arity: ArityOne, Binding: BindValue},
	OpTimeIsInMinutes:       {Name: "time_is_in_minutes", Arity: ArityOne, Binding: BindValue},
	OpTimeIsNotNow:          {Name: "time_is_not_now", Arity: ArityNone, Binding: BindNone, Positive: OpTimeIsNow},
	OpTimeIsNow:             {Name: "time_is_now", Arity: ArityNone, Binding: BindNone},
	OpBetween:               {Name: "between", Arity: ArityRange, Binding: BindValue, Numeric: true},
	OpLike:                  {Name: "like", Arity: ArityOne, Binding: BindLike},
	OpDateBetween:           {Name: "date_between", Arity: ArityRange, Binding: BindValue},
	OpDateTimeBetween:       {Name: "date_time_between", Arity: ArityRange, Binding: BindValue},
	OpDateEQ:                {Name: "date_eq", Arity: ArityOne, Binding: BindValue},
	OpDateTimeEQ:            {Name: "date_time_eq", Arity: ArityOne, Binding: BindValue},
	OpDateGE:                {Name: "date_ge", Arity: ArityOne, Binding: BindValue},
	OpDateTimeGE:            {Name: "date_time_ge", Arity: ArityOne, Binding: BindValue},
	OpDateGT:                {Name: "date_gt", Arity: ArityOne, Binding: BindValue},
	OpDateTimeGT:            {Name: "date_time_gt", Arity: ArityOne, Binding: BindValue},
	OpDateLE:                {Name: "date_le", Arity: ArityOne, Binding: BindValue},
	OpDateTimeLE:            {Name: "date_time_le", Arity: ArityOne, Binding: BindValue},
	OpDateLT:                {Name: "date_lt", Arity: ArityOne, Binding: BindValue},
	OpDateTimeLT:            {Name: "date_time_lt", Arity: ArityOne, Binding: BindValue},
	OpDateNEQ:               {Name: "date_neq", Arity: ArityOne, Binding: BindValue, Positive: OpDateEQ},
	OpDateTimeNEQ:           {Name: "date_time_neq", Arity: ArityOne, Binding: BindValue, Positive: OpDateTimeEQ},
	OpNotLike:               {Name: "not_like", Arity: ArityOne, Binding: BindLike},
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, len(operators))
	for op, info := range operators {
		m[info.Name] = op
	}
	return m
}()

// Operators returns every defined operator in code order.
func Operators() []Operator {
	ops := make([]Operator, 0, len(operators))
	for op := OpNone; op <= OpNotLike; op++ {
		if _, ok := operators[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Info returns the static description of op.
func (op Operator) Info() (OperatorInfo, bool) {
	info, ok := operators[op]
	return info, ok
}

// Valid reports whether op is a defined operator code.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// String returns the lower snake case operator name.
func (op Operator) String() string {
	if info, ok := operators[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("operator(%d)", int(op))
}

// Normalize maps a negated operator to its positive form.
// The returned flag reports whether the caller must wrap the result in NOT.
func (op Operator) Normalize() (Operator, bool) {
	info, ok := operators[op]
	if !ok || info.Positive == OpNone {
		return op, false
	}
	return info.Positive, true
}

// ParseOperator resolves an operator by name ("eq", "NOT_IN") or by its
// numeric code ("20").
func ParseOperator(s string) (Operator, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if op, ok := operatorsByName[name]; ok {
		return op, nil
	}
	if code, err := strconv.Atoi(name); err == nil && Operator(code).Valid() {
		return Operator(code), nil
	}
	return OpNone, fmt.Errorf("unknown operator %q", s)
}

// Aggregation is the aggregate function applied to an attribute.
type Aggregation int

// Aggregation codes.
const (
	AggNone   Aggregation = 0
	AggCount  Aggregation = 1
	AggSum    Aggregation = 2
	AggMin    Aggregation = 3
	AggMax    Aggregation = 4
	AggAvg    Aggregation = 5
	AggMedian Aggregation = 6
)

var aggregationNames = []string{"none", "count", "sum", "min", "max", "avg", "median"}

// String returns the lower case aggregation name.
func (a Aggregation) String() string {
	if a >= 0 && int(a) < len(aggregationNames) {
		return aggregationNames[a]
	}
	return fmt.Sprintf("aggregation(%d)", int(a))
}

// Valid reports whether a is a defined aggregation code.
func (a Aggregation) Valid() bool {
	return a >= AggNone && a <= AggMedian
}

// ParseAggregation resolves an aggregation by name. The empty string is AggNone.
func ParseAggregation(s string) (Aggregation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return AggNone, nil
	}
	for i, n := range aggregationNames {
		if n == name {
			return Aggregation(i), nil
		}
	}
	return AggNone, fmt.Errorf("unknown aggregation %q", s)
}
