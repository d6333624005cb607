package dialect

import "time"

// Postgres returns the PostgreSQL style.
func Postgres() Style {
	interval := func(unit string) func(x, n string) string {
		return func(x, n string) string {
			return "(" + x + " + (" + n + ") * INTERVAL '1 " + unit + "')"
		}
	}
	return &sqlStyle{p: primitives{
		name:        "postgres",
		caps:        Capabilities{Median: true, CaseInsensitiveLike: true},
		today:       "CURRENT_DATE",
		now:         "LOCALTIMESTAMP",
		minuteOfDay: "(EXTRACT(HOUR FROM LOCALTIME)*60+EXTRACT(MINUTE FROM LOCALTIME))",
		truncDay:    func(x string) string { return "date_trunc('day', " + x + ")" },
		truncMinute: func(x string) string { return "date_trunc('minute', " + x + ")" },
		addDays:     interval("day"),
		addMonths:   interval("month"),
		addMinutes:  interval("minute"),
		concat:      pipeConcat,
		coalesce:    "COALESCE",
		median: func(x string) string {
			return "PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY " + x + ")"
		},
		boolLit: func(b bool) string {
			if b {
				return "TRUE"
			}
			return "FALSE"
		},
		timeLit: func(t time.Time) string {
			return "TIMESTAMP '" + t.Format("2006-01-02 15:04:05") + "'"
		},
		maxList: 1000,
	}}
}
