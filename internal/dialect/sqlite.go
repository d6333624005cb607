package dialect

import "time"

// SQLite returns the SQLite style. Dates are expected as ISO-8601 text.
func SQLite() Style {
	modifier := func(fn, unit string) func(x, n string) string {
		return func(x, n string) string {
			return fn + "(" + x + ", (" + n + ") || ' " + unit + "')"
		}
	}
	return &sqlStyle{p: primitives{
		name:        "sqlite",
		caps:        Capabilities{NamedBinds: true},
		today:       "date('now','localtime')",
		now:         "datetime('now','localtime')",
		minuteOfDay: "(CAST(strftime('%H','now','localtime') AS INTEGER)*60+CAST(strftime('%M','now','localtime') AS INTEGER))",
		truncDay:    func(x string) string { return "date(" + x + ")" },
		truncMinute: func(x string) string { return "strftime('%Y-%m-%d %H:%M:00', " + x + ")" },
		addDays:     modifier("date", "days"),
		addMonths:   modifier("date", "months"),
		addMinutes:  modifier("datetime", "minutes"),
		concat:      pipeConcat,
		coalesce:    "COALESCE",
		boolLit:     numericBool,
		timeLit: func(t time.Time) string {
			return "'" + t.Format("2006-01-02 15:04:05") + "'"
		},
		maxList: 1000,
	}}
}
