package dialect

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/sqlcomposer/internal/model"
)

// primitives are the dialect specific building blocks the shared operator
// table is written against.
type primitives struct {
	name string
	caps Capabilities

	today       string
	now         string
	minuteOfDay string

	truncDay    func(x string) string
	truncMinute func(x string) string
	addDays     func(x, n string) string
	addMonths   func(x, n string) string
	addMinutes  func(x, n string) string

	concat   func(parts ...string) string
	coalesce string
	median   func(x string) string

	boolLit func(b bool) string
	timeLit func(t time.Time) string

	maxList int
}

// sqlStyle is the Style shared by every dialect.
type sqlStyle struct {
	p primitives
}

func (s *sqlStyle) Name() string               { return s.p.name }
func (s *sqlStyle) Capabilities() Capabilities { return s.p.caps }
func (s *sqlStyle) MaxListSize() int           { return s.p.maxList }

func (s *sqlStyle) Coalesce(expr, fallback string) string {
	return s.p.coalesce + "(" + expr + "," + fallback + ")"
}

func (s *sqlStyle) Aggregate(agg model.Aggregation, expr string) (string, error) {
	switch agg {
	case model.AggNone:
		return expr, nil
	case model.AggCount, model.AggSum, model.AggMin, model.AggMax, model.AggAvg:
		return strings.ToUpper(agg.String()) + "(" + expr + ")", nil
	case model.AggMedian:
		if s.p.median == nil {
			return "", &UnsupportedFeatureError{Feature: "MEDIAN", Dialect: s.p.name, Hint: "use AVG or a dialect with a median aggregate"}
		}
		return s.p.median(expr), nil
	default:
		return "", &UnsupportedFeatureError{Feature: agg.String(), Dialect: s.p.name}
	}
}

// Render implements Style.
func (s *sqlStyle) Render(op model.Operator, expr string, binds []string, values []any) (string, error) {
	info, ok := op.Info()
	if !ok {
		return "", &UnsupportedOperatorError{Operator: op, Dialect: s.p.name}
	}
	if info.Positive != model.OpNone {
		inner, err := s.Render(info.Positive, expr, binds, values)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	}
	if err := checkArity(op, info, binds, values); err != nil {
		return "", err
	}

	b := make([]string, len(binds))
	for i, name := range binds {
		b[i] = bindRef(name)
	}

	switch info.Arity {
	case model.ArityRange:
		return s.renderRange(op, expr, b, values)
	case model.ArityList:
		return s.inList(expr, values[0]), nil
	}

	render, ok := renderers[op]
	if !ok {
		return "", &UnsupportedOperatorError{Operator: op, Dialect: s.p.name}
	}
	var first string
	if len(b) > 0 {
		first = b[0]
	}
	return render(s, expr, first), nil
}

func checkArity(op model.Operator, info model.OperatorInfo, binds []string, values []any) error {
	switch info.Arity {
	case model.ArityOne:
		if len(binds) < 1 {
			return &ValueError{Operator: op, Message: "expects one value"}
		}
	case model.ArityRange:
		if len(binds) < 2 || len(values) < 2 {
			return &ValueError{Operator: op, Message: "expects two values"}
		}
		if values[0] == nil && values[1] == nil {
			return &ValueError{Operator: op, Message: "both bounds are empty"}
		}
	case model.ArityList:
		if len(values) < 1 {
			return &ValueError{Operator: op, Message: "expects a list value"}
		}
	}
	return nil
}

// bindRef turns a bind name into its reference in SQL text.
func bindRef(name string) string {
	if strings.HasPrefix(name, "&") {
		return name[1:]
	}
	return ":" + name
}

func (s *sqlStyle) renderRange(op model.Operator, expr string, b []string, values []any) (string, error) {
	lo, hi := values[0], values[1]
	var le, ge model.Operator
	switch op {
	case model.OpBetween:
		le, ge = model.OpLE, model.OpGE
	case model.OpDateBetween:
		le, ge = model.OpDateLE, model.OpDateGE
	case model.OpDateTimeBetween:
		le, ge = model.OpDateTimeLE, model.OpDateTimeGE
	default:
		return "", &UnsupportedOperatorError{Operator: op, Dialect: s.p.name}
	}
	switch {
	case lo == nil:
		return renderers[le](s, expr, b[1]), nil
	case hi == nil:
		return renderers[ge](s, expr, b[0]), nil
	}
	switch op {
	case model.OpBetween:
		return expr + " BETWEEN " + b[0] + " AND " + b[1], nil
	case model.OpDateBetween:
		return expr + ">=" + s.p.truncDay(b[0]) + " AND " + expr + "<" + s.p.addDays(s.p.truncDay(b[1]), "1"), nil
	default:
		return expr + ">=" + s.p.truncMinute(b[0]) + " AND " + expr + "<" + s.p.addMinutes(s.p.truncMinute(b[1]), "1"), nil
	}
}

func (s *sqlStyle) inList(expr string, v any) string {
	items := flatten(v)
	if len(items) == 0 {
		return "1=0"
	}
	size := s.p.maxList
	if size <= 0 {
		size = len(items)
	}
	var chunks []string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		lits := make([]string, 0, end-start)
		for _, it := range items[start:end] {
			lits = append(lits, s.PlainText(it))
		}
		chunks = append(chunks, expr+" IN ("+strings.Join(lits, ",")+")")
	}
	if len(chunks) == 1 {
		return chunks[0]
	}
	return "(" + strings.Join(chunks, " OR ") + ")"
}

// flatten returns the elements of a slice value, or v itself as a one
// element list.
func flatten(v any) []any {
	if v == nil {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// PlainText implements Style.
func (s *sqlStyle) PlainText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return s.p.boolLit(t)
	case string:
		return quote(t)
	case time.Time:
		return s.p.timeLit(t)
	case *time.Time:
		if t == nil {
			return "null"
		}
		return s.p.timeLit(*t)
	case []byte:
		return quote(string(t))
	}
	if d, ok := model.Numeric(v); ok {
		return d.String()
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		items := flatten(v)
		if len(items) == 0 {
			return "(NULL)"
		}
		lits := make([]string, len(items))
		for i, it := range items {
			lits[i] = s.PlainText(it)
		}
		return "(" + strings.Join(lits, ",") + ")"
	}
	return quote(fmt.Sprint(v))
}

// LikePattern implements Style. "*" is the user wildcard.
func (s *sqlStyle) LikePattern(v any) string {
	var str string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		str = t
	default:
		str = fmt.Sprint(v)
	}
	return strings.ReplaceAll(str, "*", "%")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (s *sqlStyle) like(expr, pattern string, negate bool) string {
	kw := " like "
	if negate {
		kw = " not like "
	}
	if s.p.caps.CaseInsensitiveLike {
		return expr + strings.ToUpper(strings.ReplaceAll(kw, "like", "ilike")) + pattern
	}
	return "upper(" + expr + ")" + kw + "upper(" + pattern + ")"
}

// minuteFraction turns a minute of day expression into the day fraction
// time-of-day attributes are stored as.
func minuteFraction(m string) string {
	return "(" + m + ")/1440.0"
}

type renderFunc func(s *sqlStyle, x, b string) string

// renderers covers every positive, non range, non list operator.
var renderers = map[model.Operator]renderFunc{
	model.OpNone: func(_ *sqlStyle, x, _ string) string { return x },
	model.OpEQ:   func(_ *sqlStyle, x, b string) string { return x + "=" + b },
	model.OpGE:   func(_ *sqlStyle, x, b string) string { return x + ">=" + b },
	model.OpGT:   func(_ *sqlStyle, x, b string) string { return x + ">" + b },
	model.OpLE:   func(_ *sqlStyle, x, b string) string { return x + "<=" + b },
	model.OpLT:   func(_ *sqlStyle, x, b string) string { return x + "<" + b },

	model.OpContains: func(s *sqlStyle, x, b string) string {
		return s.like(x, s.p.concat("'%'", b, "'%'"), false)
	},
	model.OpStartsWith: func(s *sqlStyle, x, b string) string {
		return s.like(x, s.p.concat(b, "'%'"), false)
	},
	model.OpEndsWith: func(s *sqlStyle, x, b string) string {
		return s.like(x, s.p.concat("'%'", b), false)
	},
	model.OpLike:    func(s *sqlStyle, x, b string) string { return s.like(x, b, false) },
	model.OpNotLike: func(s *sqlStyle, x, b string) string { return s.like(x, b, true) },

	model.OpNull:       func(_ *sqlStyle, x, _ string) string { return x + " is null" },
	model.OpNumberNull: func(s *sqlStyle, x, _ string) string { return s.Coalesce(x, "0") + "=0" },

	model.OpDateIsToday: func(s *sqlStyle, x, _ string) string {
		t := s.p.today
		return x + ">=" + t + " AND " + x + "<" + s.p.addDays(t, "1")
	},
	model.OpDateIsInDays: func(s *sqlStyle, x, b string) string {
		t := s.p.today
		return x + ">=" + s.p.addDays(t, b) + " AND " + x + "<" + s.p.addDays(t, b+"+1")
	},
	model.OpDateIsInGEDays: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addDays(s.p.today, b)
	},
	model.OpDateIsInLEDays: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addDays(s.p.today, b+"+1")
	},
	model.OpDateIsInLastDays: func(s *sqlStyle, x, b string) string {
		t := s.p.today
		return x + ">=" + s.p.addDays(t, "-"+b) + " AND " + x + "<" + s.p.addDays(t, "1")
	},
	model.OpDateIsInNextDays: func(s *sqlStyle, x, b string) string {
		t := s.p.today
		return x + ">=" + t + " AND " + x + "<" + s.p.addDays(t, b+"+1")
	},
	model.OpDateIsInMonths: func(s *sqlStyle, x, b string) string {
		d := s.p.addMonths(s.p.today, b)
		return x + ">=" + d + " AND " + x + "<" + s.p.addDays(d, "1")
	},
	model.OpDateIsInGEMonths: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addMonths(s.p.today, b)
	},
	model.OpDateIsInLEMonths: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addDays(s.p.addMonths(s.p.today, b), "1")
	},
	model.OpDateIsInLastMonths: func(s *sqlStyle, x, b string) string {
		t := s.p.today
		return x + ">=" + s.p.addMonths(t, "-"+b) + " AND " + x + "<" + s.p.addDays(t, "1")
	},
	model.OpDateIsInNextMonths: func(s *sqlStyle, x, b string) string {
		t := s.p.today
		return x + ">=" + t + " AND " + x + "<" + s.p.addDays(s.p.addMonths(t, b), "1")
	},

	model.OpDateTimeIsNow: func(s *sqlStyle, x, _ string) string {
		n := s.p.truncMinute(s.p.now)
		return x + ">=" + n + " AND " + x + "<" + s.p.addMinutes(n, "1")
	},
	model.OpDateTimeIsInGEMinutes: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addMinutes(s.p.truncMinute(s.p.now), b)
	},
	model.OpDateTimeIsInLEMinutes: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addMinutes(s.p.truncMinute(s.p.now), b+"+1")
	},
	model.OpDateTimeIsInGEHours: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addMinutes(s.p.truncMinute(s.p.now), b+"*60")
	},
	model.OpDateTimeIsInLEHours: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addMinutes(s.p.truncMinute(s.p.now), b+"*60+1")
	},

	model.OpTimeIsNow: func(s *sqlStyle, x, _ string) string {
		m := s.p.minuteOfDay
		return x + ">=" + minuteFraction(m) + " AND " + x + "<" + minuteFraction(m+"+1")
	},
	model.OpTimeIsInMinutes: func(s *sqlStyle, x, b string) string {
		m := s.p.minuteOfDay + "+" + b
		return x + ">=" + minuteFraction(m) + " AND " + x + "<" + minuteFraction(m+"+1")
	},
	model.OpTimeIsInHours: func(s *sqlStyle, x, b string) string {
		m := s.p.minuteOfDay + "+" + b + "*60"
		return x + ">=" + minuteFraction(m) + " AND " + x + "<" + minuteFraction(m+"+1")
	},
	model.OpTimeIsInGEMinutes: func(s *sqlStyle, x, b string) string {
		return x + ">=" + minuteFraction(s.p.minuteOfDay+"+"+b)
	},
	model.OpTimeIsInLEMinutes: func(s *sqlStyle, x, b string) string {
		return x + "<" + minuteFraction(s.p.minuteOfDay+"+"+b+"+1")
	},
	model.OpTimeIsInGEHours: func(s *sqlStyle, x, b string) string {
		return x + ">=" + minuteFraction(s.p.minuteOfDay+"+"+b+"*60")
	},
	model.OpTimeIsInLEHours: func(s *sqlStyle, x, b string) string {
		return x + "<" + minuteFraction(s.p.minuteOfDay+"+"+b+"*60+1")
	},

	model.OpDateEQ: func(s *sqlStyle, x, b string) string {
		d := s.p.truncDay(b)
		return x + ">=" + d + " AND " + x + "<" + s.p.addDays(d, "1")
	},
	model.OpDateGE: func(s *sqlStyle, x, b string) string { return x + ">=" + s.p.truncDay(b) },
	model.OpDateGT: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addDays(s.p.truncDay(b), "1")
	},
	model.OpDateLE: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addDays(s.p.truncDay(b), "1")
	},
	model.OpDateLT: func(s *sqlStyle, x, b string) string { return x + "<" + s.p.truncDay(b) },

	model.OpDateTimeEQ: func(s *sqlStyle, x, b string) string {
		d := s.p.truncMinute(b)
		return x + ">=" + d + " AND " + x + "<" + s.p.addMinutes(d, "1")
	},
	model.OpDateTimeGE: func(s *sqlStyle, x, b string) string { return x + ">=" + s.p.truncMinute(b) },
	model.OpDateTimeGT: func(s *sqlStyle, x, b string) string {
		return x + ">=" + s.p.addMinutes(s.p.truncMinute(b), "1")
	},
	model.OpDateTimeLE: func(s *sqlStyle, x, b string) string {
		return x + "<" + s.p.addMinutes(s.p.truncMinute(b), "1")
	},
	model.OpDateTimeLT: func(s *sqlStyle, x, b string) string { return x + "<" + s.p.truncMinute(b) },
}
