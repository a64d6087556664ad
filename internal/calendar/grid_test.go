package calendar

import (
	"testing"
	"time"

	"opengym/internal/models"
)

func TestBuilder_MonthLayout(t *testing.T) {
	// February 2024 starts on a Thursday and has 29 days.
	b := NewBuilder(Input{Now: time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)})
	m := b.Month(2024, time.February)

	if m.Title != "februari 2024" {
		t.Fatalf("title %q", m.Title)
	}
	if len(m.Weeks) != 5 {
		t.Fatalf("want 5 weeks, got %d", len(m.Weeks))
	}
	for i := 0; i < 3; i++ {
		if !m.Weeks[0][i].Blank || m.Weeks[0][i].CSSClass() != "noday" {
			t.Fatalf("cell %d of first week should be blank", i)
		}
	}
	if first := m.Weeks[0][3]; first.Blank || first.Date.Day != 1 {
		t.Fatalf("expected Feb 1 on Thursday, got %+v", first.Date)
	}
	if last := m.Weeks[4][3]; last.Blank || last.Date.Day != 29 {
		t.Fatalf("expected Feb 29 on Thursday, got %+v", last.Date)
	}
	if !m.Weeks[4][4].Blank {
		t.Fatal("March 1 should be blank")
	}
	if m.Prev != (Date{2024, time.January, 1}) || m.Next != (Date{2024, time.March, 1}) {
		t.Fatalf("prev %v next %v", m.Prev, m.Next)
	}
}

func TestBuilder_MonthYearWrap(t *testing.T) {
	b := NewBuilder(Input{Locale: English})
	m := b.Month(2024, time.December)
	if m.Next != (Date{2025, time.January, 1}) {
		t.Fatalf("next %v", m.Next)
	}
	if m.Title != "December 2024" {
		t.Fatalf("title %q", m.Title)
	}
}

func TestBuilder_DayCells(t *testing.T) {
	loc := time.UTC
	limit := 1
	course := &models.Course{ID: 7, Name: "Stretching", TeacherIDs: []int64{1},
		MaxStudentsSession: &limit, Location: models.Location{Short: "Zaal A"}}
	sessions := []*models.Session{
		{ID: 1, CourseID: 7, Course: course, Start: time.Date(2024, 2, 14, 18, 0, 0, 0, loc),
			Duration: models.Duration(90 * time.Minute), SubscribedIDs: []int64{2}},
	}
	link := "https://example.org"
	events := []*models.Event{{ID: 3, Name: "Open dag", Start: time.Date(2024, 2, 15, 10, 0, 0, 0, loc), Link: &link}}

	b := NewBuilder(Input{
		Sessions: sessions,
		Events:   events,
		Viewer:   &models.User{ID: 2},
		Location: loc,
		Now:      time.Date(2024, 2, 14, 8, 0, 0, 0, loc),
	})

	today := b.Day(Date{2024, time.February, 14})
	if today.CSSClass() != "day day-today-filled" {
		t.Fatalf("class %q", today.CSSClass())
	}
	item := today.Sessions[0]
	if item.Label() != "Stretching @ Zaal A" {
		t.Fatalf("label %q", item.Label())
	}
	if item.TimeRange != "18h00 - 19h30" {
		t.Fatalf("time range %q", item.TimeRange)
	}
	if item.Role != RoleSubscribed || !item.Full {
		t.Fatalf("role %q full %v", item.Role, item.Full)
	}

	tomorrow := b.Day(Date{2024, time.February, 15})
	if tomorrow.CSSClass() != "day day-filled" || tomorrow.Events[0].Link != link {
		t.Fatalf("unexpected %+v", tomorrow)
	}
	if empty := b.Day(Date{2024, time.February, 16}); empty.CSSClass() != "day day" {
		t.Fatalf("class %q", empty.CSSClass())
	}
}

func TestBuilder_Week(t *testing.T) {
	b := NewBuilder(Input{})
	w := b.Week(2024, time.February, 14)
	if w.Start != (Date{2024, time.February, 12}) || w.End != (Date{2024, time.February, 18}) {
		t.Fatalf("range %v - %v", w.Start, w.End)
	}
	if w.Header != "12 - 18 februari 2024" {
		t.Fatalf("header %q", w.Header)
	}
	if w.Prev != (Date{2024, time.February, 5}) || w.Next != (Date{2024, time.February, 19}) {
		t.Fatalf("prev %v next %v", w.Prev, w.Next)
	}
}

func TestWeekHeader(t *testing.T) {
	cases := []struct {
		start, end Date
		want       string
	}{
		{Date{2024, time.January, 29}, Date{2024, time.February, 4}, "29 januari - 4 februari 2024"},
		{Date{2024, time.December, 30}, Date{2025, time.January, 5}, "30 december 2024 - 5 januari 2025"},
	}
	for _, tc := range cases {
		if got := WeekHeader(tc.start, tc.end, Dutch); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestWeekRange_SundayBelongsToPreviousWeek(t *testing.T) {
	from, to := WeekRange(2024, time.February, 18, time.UTC)
	if !from.Equal(time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from %v", from)
	}
	if !to.Equal(time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("to %v", to)
	}
}

func TestBuilder_BuildingDayViewerState(t *testing.T) {
	day := &models.BuildingDay{ID: 5, Description: "Dak herstellen", Start: time.Date(2024, 2, 17, 9, 0, 0, 0, time.UTC),
		Duration: models.Duration(4 * time.Hour), ResponsibleIDs: []int64{1}, SubscribedIDs: []int64{2}}
	date := Date{2024, time.February, 17}

	cases := []struct {
		name   string
		viewer *models.User
		want   BuildingDayItem
	}{
		{"anonymous", nil, BuildingDayItem{ID: 5, Description: "Dak herstellen"}},
		{"responsible", &models.User{ID: 1}, BuildingDayItem{ID: 5, Description: "Dak herstellen", SignedIn: true, Responsible: true}},
		{"subscribed", &models.User{ID: 2}, BuildingDayItem{ID: 5, Description: "Dak herstellen", SignedIn: true, Subscribed: true}},
		{"other", &models.User{ID: 3}, BuildingDayItem{ID: 5, Description: "Dak herstellen", SignedIn: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder(Input{BuildingDays: []*models.BuildingDay{day}, Viewer: tc.viewer, Location: time.UTC})
			cell := b.Day(date)
			if len(cell.BuildingDays) != 1 || cell.BuildingDays[0] != tc.want {
				t.Fatalf("got %+v, want %+v", cell.BuildingDays, tc.want)
			}
		})
	}
}
