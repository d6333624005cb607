package dialect

import (
	"strings"
	"time"
)

// Oracle returns the Oracle style. It is the default style.
func Oracle() Style {
	return &sqlStyle{p: primitives{
		name:        "oracle",
		caps:        Capabilities{Median: true, NamedBinds: true},
		today:       "TRUNC(SYSDATE)",
		now:         "SYSDATE",
		minuteOfDay: "(TO_NUMBER(TO_CHAR(SYSDATE,'HH24'))*60+TO_NUMBER(TO_CHAR(SYSDATE,'MI')))",
		truncDay:    func(x string) string { return "TRUNC(" + x + ")" },
		truncMinute: func(x string) string { return "TRUNC(" + x + ",'MI')" },
		addDays:     func(x, n string) string { return "(" + x + "+(" + n + "))" },
		addMonths:   func(x, n string) string { return "ADD_MONTHS(" + x + "," + n + ")" },
		addMinutes:  func(x, n string) string { return "(" + x + "+(" + n + ")/1440)" },
		concat:      pipeConcat,
		coalesce:    "NVL",
		median:      func(x string) string { return "MEDIAN(" + x + ")" },
		boolLit:     numericBool,
		timeLit: func(t time.Time) string {
			return "to_date('" + t.Format("2006-01-02 15:04:05") + "','yyyy-mm-dd hh24:mi:ss')"
		},
		maxList: 1000,
	}}
}

func pipeConcat(parts ...string) string {
	return strings.Join(parts, "||")
}

func numericBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
