package dialect

import (
	"strings"
	"time"
)

// MySQL returns the MySQL / MariaDB style.
func MySQL() Style {
	dateAdd := func(unit string) func(x, n string) string {
		return func(x, n string) string {
			return "DATE_ADD(" + x + ", INTERVAL (" + n + ") " + unit + ")"
		}
	}
	return &sqlStyle{p: primitives{
		name:        "mysql",
		today:       "CURDATE()",
		now:         "NOW()",
		minuteOfDay: "(HOUR(NOW())*60+MINUTE(NOW()))",
		truncDay:    func(x string) string { return "DATE(" + x + ")" },
		truncMinute: func(x string) string { return "DATE_FORMAT(" + x + ", '%Y-%m-%d %H:%i:00')" },
		addDays:     dateAdd("DAY"),
		addMonths:   dateAdd("MONTH"),
		addMinutes:  dateAdd("MINUTE"),
		concat:      func(parts ...string) string { return "CONCAT(" + strings.Join(parts, ", ") + ")" },
		coalesce:    "COALESCE",
		boolLit:     numericBool,
		timeLit: func(t time.Time) string {
			return "TIMESTAMP('" + t.Format("2006-01-02 15:04:05") + "')"
		},
		maxList: 1000,
	}}
}
