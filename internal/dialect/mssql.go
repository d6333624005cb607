package dialect

import (
	"strings"
	"time"
)

// MSSQL returns the SQL Server style.
func MSSQL() Style {
	dateAdd := func(part string) func(x, n string) string {
		return func(x, n string) string {
			return "DATEADD(" + part + ", " + n + ", " + x + ")"
		}
	}
	return &sqlStyle{p: primitives{
		name:        "mssql",
		today:       "CAST(GETDATE() AS date)",
		now:         "GETDATE()",
		minuteOfDay: "(DATEPART(hour, GETDATE())*60+DATEPART(minute, GETDATE()))",
		truncDay:    func(x string) string { return "CAST(" + x + " AS date)" },
		truncMinute: func(x string) string { return "DATEADD(minute, DATEDIFF(minute, 0, " + x + "), 0)" },
		addDays:     dateAdd("day"),
		addMonths:   dateAdd("month"),
		addMinutes:  dateAdd("minute"),
		concat:      func(parts ...string) string { return strings.Join(parts, "+") },
		coalesce:    "COALESCE",
		boolLit:     numericBool,
		timeLit: func(t time.Time) string {
			return "CONVERT(datetime2, '" + t.Format("2006-01-02T15:04:05") + "', 126)"
		},
		maxList: 1000,
	}}
}
