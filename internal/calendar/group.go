package calendar

import (
	"sort"
	"time"
)

// Date is a calendar day in a given location. Grouping by full date keeps
// the 3rd of one month apart from the 3rd of the next.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC), time.UTC)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Entry is anything placed on the calendar.
type Entry interface {
	StartTime() time.Time
}

// GroupByDay buckets entries by their local start date. Every bucket is
// sorted by start time; entries with equal starts keep their input order.
func GroupByDay[T Entry](entries []T, loc *time.Location) map[Date][]T {
	out := make(map[Date][]T)
	for _, e := range entries {
		d := DateOf(e.StartTime(), loc)
		out[d] = append(out[d], e)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].StartTime().Before(list[j].StartTime())
		})
	}
	return out
}
