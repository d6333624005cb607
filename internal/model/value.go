package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Numeric converts v to a decimal when it holds a number.
// Strings are not numbers here: a text comparison never counts as numeric.
func Numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0), true
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	default:
		return decimal.Zero, false
	}
}

// ZeroTraversing reports whether the range implied by op and values contains
// or touches zero. Only numeric values qualify; date, time and text
// operators never traverse zero.
//
//	EQ       v == 0
//	NEQ      v != 0
//	GE       v <= 0
//	GT       v < 0
//	LE       v >= 0
//	LT       v > 0
//	BETWEEN  lo <= 0 <= hi, or lo <= 0 with no hi, or hi >= 0 with no lo
func ZeroTraversing(op Operator, values []any) bool {
	first := func() (decimal.Decimal, bool) {
		if len(values) == 0 {
			return decimal.Zero, false
		}
		return Numeric(values[0])
	}
	switch op {
	case OpEQ:
		v, ok := first()
		return ok && v.IsZero()
	case OpNEQ:
		v, ok := first()
		return ok && !v.IsZero()
	case OpGE:
		v, ok := first()
		return ok && v.Sign() <= 0
	case OpGT:
		v, ok := first()
		return ok && v.Sign() < 0
	case OpLE:
		v, ok := first()
		return ok && v.Sign() >= 0
	case OpLT:
		v, ok := first()
		return ok && v.Sign() > 0
	case OpBetween:
		var lo, hi any
		if len(values) > 0 {
			lo = values[0]
		}
		if len(values) > 1 {
			hi = values[1]
		}
		l, lok := Numeric(lo)
		h, hok := Numeric(hi)
		switch {
		case lok && hok:
			return l.Sign() <= 0 && h.Sign() >= 0
		case lok && hi == nil:
			return l.Sign() <= 0
		case hok && lo == nil:
			return h.Sign() >= 0
		}
		return false
	default:
		return false
	}
}
