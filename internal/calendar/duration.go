package calendar

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as days, hours and minutes. Hours and
// minutes are what remains after the whole days are taken out.
func FormatDuration(d time.Duration, l Locale) string {
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	hours := rest / 3600
	minutes := (rest % 3600) / 60

	switch {
	case days == 1:
		return fmt.Sprintf("%d %s, %d %s %s %d %s", days, l.Day, hours, l.Hours, l.And, minutes, l.Minutes)
	case days == 0 && minutes == 0:
		return fmt.Sprintf("%d %s", hours, l.Hours)
	case days == 0:
		return fmt.Sprintf("%d %s %s %d %s", hours, l.Hours, l.And, minutes, l.Minutes)
	}
	return fmt.Sprintf("%d %s, %d %s %s %d %s", days, l.Days, hours, l.Hours, l.And, minutes, l.Minutes)
}

// ClockTime formats a time as "9h05".
func ClockTime(t time.Time) string {
	return fmt.Sprintf("%dh%02d", t.Hour(), t.Minute())
}

func TimeRange(start, end time.Time) string {
	return ClockTime(start) + " - " + ClockTime(end)
}
