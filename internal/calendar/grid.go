package calendar

import (
	"fmt"
	"time"

	"opengym/internal/models"
)

type SessionItem struct {
	ID         int64
	CourseID   int64
	CourseName string
	TimeRange  string
	Location   string
	Role       Role
	Full       bool
}

func (i SessionItem) Label() string {
	if i.Location == "" {
		return i.CourseName
	}
	return i.CourseName + " @ " + i.Location
}

type EventItem struct {
	ID   int64
	Name string
	Link string
}

// BuildingDayItem carries the viewer's own state; all flags are false for
// anonymous viewers.
type BuildingDayItem struct {
	ID          int64
	Description string
	SignedIn    bool
	Subscribed  bool
	Responsible bool
}

// DayCell is one rendered day of a month or week grid.
type DayCell struct {
	Date         Date
	Blank        bool
	Today        bool
	Sessions     []SessionItem
	Events       []EventItem
	BuildingDays []BuildingDayItem
}

func (c DayCell) Filled() bool {
	return len(c.Sessions) > 0 || len(c.Events) > 0 || len(c.BuildingDays) > 0
}

func (c DayCell) CSSClass() string {
	if c.Blank {
		return "noday"
	}
	class := "day day"
	if c.Today {
		class += "-today"
	}
	if c.Filled() {
		class += "-filled"
	}
	return class
}

type Month struct {
	Year     int
	Month    time.Month
	Title    string
	Weekdays [7]string
	Weeks    [][7]DayCell
	Prev     Date
	Next     Date
}

type Week struct {
	Start    Date
	End      Date
	Header   string
	Weekdays [7]string
	Days     [7]DayCell
	Prev     Date
	Next     Date
}

// Input is everything a grid is built from. The entry slices are expected
// to be already limited to the requested range.
type Input struct {
	Sessions     []*models.Session
	Events       []*models.Event
	BuildingDays []*models.BuildingDay
	Viewer       *models.User
	Location     *time.Location
	Locale       Locale
	Now          time.Time
}

type Builder struct {
	loc          *time.Location
	locale       Locale
	today        Date
	viewer       *models.User
	sessions     map[Date][]*models.Session
	events       map[Date][]*models.Event
	buildingDays map[Date][]*models.BuildingDay
}

func NewBuilder(in Input) *Builder {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	locale := in.Locale
	if locale.Code == "" {
		locale = Dutch
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Builder{
		loc:          loc,
		locale:       locale,
		today:        DateOf(now, loc),
		viewer:       in.Viewer,
		sessions:     GroupByDay(in.Sessions, loc),
		events:       GroupByDay(in.Events, loc),
		buildingDays: GroupByDay(in.BuildingDays, loc),
	}
}

// Month lays out the weeks touching the given month, Monday first. Days of
// neighbouring months are blank.
func (b *Builder) Month(year int, month time.Month) Month {
	first := Date{Year: year, Month: month, Day: 1}
	start := WeekStart(first)
	m := Month{
		Year:     year,
		Month:    month,
		Title:    fmt.Sprintf("%s %d", b.locale.MonthName(month), year),
		Weekdays: b.locale.Weekdays,
		Prev:     first.addMonths(-1),
		Next:     first.addMonths(1),
	}

	for d := start; ; {
		var week [7]DayCell
		for i := range week {
			if d.Month != month || d.Year != year {
				week[i] = DayCell{Date: d, Blank: true}
			} else {
				week[i] = b.Day(d)
			}
			d = d.AddDays(1)
		}
		m.Weeks = append(m.Weeks, week)
		if d.Month != month || d.Year != year {
			break
		}
	}
	return m
}

// Week renders the Monday-to-Sunday week containing year/month/day.
func (b *Builder) Week(year int, month time.Month, day int) Week {
	start := WeekStart(DateOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), time.UTC))
	w := Week{
		Start:    start,
		End:      start.AddDays(6),
		Weekdays: b.locale.Weekdays,
		Prev:     start.AddDays(-7),
		Next:     start.AddDays(7),
	}
	w.Header = WeekHeader(w.Start, w.End, b.locale)
	for i := range w.Days {
		w.Days[i] = b.Day(start.AddDays(i))
	}
	return w
}

// Day fills one cell with the sessions, events and building days of d.
func (b *Builder) Day(d Date) DayCell {
	cell := DayCell{Date: d, Today: d == b.today}
	for _, s := range b.sessions[d] {
		item := SessionItem{
			ID:        s.ID,
			CourseID:  s.CourseID,
			TimeRange: TimeRange(s.Start.In(b.loc), s.End().In(b.loc)),
			Location:  s.Effective().Location.Short,
			Role:      Classify(s, b.viewer),
			Full:      s.IsFull(),
		}
		if s.Course != nil {
			item.CourseName = s.Course.Name
		}
		cell.Sessions = append(cell.Sessions, item)
	}
	for _, e := range b.events[d] {
		item := EventItem{ID: e.ID, Name: e.Name}
		if e.Link != nil {
			item.Link = *e.Link
		}
		cell.Events = append(cell.Events, item)
	}
	signedIn := b.viewer.IsAuthenticated()
	for _, bd := range b.buildingDays[d] {
		item := BuildingDayItem{ID: bd.ID, Description: bd.Description, SignedIn: signedIn}
		if signedIn {
			item.Subscribed = bd.UserIsSubscribed(b.viewer.ID)
			item.Responsible = bd.UserIsResponsible(b.viewer.ID)
		}
		cell.BuildingDays = append(cell.BuildingDays, item)
	}
	return cell
}

// WeekStart returns the Monday on or before d.
func WeekStart(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// WeekHeader renders "12 - 18 februari 2024", naming both months or years
// when the week spans them.
func WeekHeader(start, end Date, l Locale) string {
	switch {
	case start.Year != end.Year:
		return fmt.Sprintf("%d %s %d - %d %s %d",
			start.Day, l.MonthName(start.Month), start.Year, end.Day, l.MonthName(end.Month), end.Year)
	case start.Month != end.Month:
		return fmt.Sprintf("%d %s - %d %s %d",
			start.Day, l.MonthName(start.Month), end.Day, l.MonthName(end.Month), end.Year)
	}
	return fmt.Sprintf("%d - %d %s %d", start.Day, end.Day, l.MonthName(end.Month), end.Year)
}

// MonthRange is the [start, end) interval of a month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// WeekRange is the [start, end) interval of the week containing the date.
func WeekRange(year int, month time.Month, day int, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(DateOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), time.UTC))
	from := start.Midnight(loc)
	return from, start.AddDays(7).Midnight(loc)
}

func (d Date) addMonths(n int) Date {
	t := time.Date(d.Year, d.Month+time.Month(n), 1, 12, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: 1}
}
