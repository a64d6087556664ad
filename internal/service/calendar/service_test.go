package calendar_service

import (
	"context"
	"testing"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
	"opengym/internal/testutil/fakes"
)

func seed(t *testing.T) (*calendarService, *fakes.Store) {
	t.Helper()
	ctx := context.Background()
	store := fakes.NewStore()
	courses := fakes.CourseRepo{Store: store}
	sessions := fakes.SessionRepo{Store: store}

	active := &models.Course{Name: "Acro", Level: 1, IsActive: true, TeacherIDs: []int64{1},
		Location: models.Location{Short: "Zaal"}}
	inactive := &models.Course{Name: "Old", Level: 1}
	for _, c := range []*models.Course{active, inactive} {
		if err := courses.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	for _, s := range []*models.Session{
		{CourseID: active.ID, Start: time.Date(2024, 2, 12, 19, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)},
		{CourseID: active.ID, Start: time.Date(2024, 2, 12, 9, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)},
		{CourseID: active.ID, Start: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)},
		{CourseID: inactive.ID, Start: time.Date(2024, 2, 13, 9, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)},
	} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := (fakes.EventRepo{Store: store}).Create(ctx, &models.Event{Name: "Open dag",
		Start: time.Date(2024, 2, 17, 10, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	svc := NewCalendarService(sessions, courses, fakes.EventRepo{Store: store},
		fakes.BuildingDayRepo{Store: store}, time.UTC, calendar.Dutch).(*calendarService)
	svc.now = func() time.Time { return time.Date(2024, 2, 12, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestMonth_OnlyActiveCoursesInRange(t *testing.T) {
	svc, _ := seed(t)
	m, err := svc.Month(context.Background(), &models.User{ID: 1}, 2024, time.February)
	if err != nil {
		t.Fatal(err)
	}
	var sessions []calendar.SessionItem
	events := 0
	for _, week := range m.Weeks {
		for _, cell := range week {
			sessions = append(sessions, cell.Sessions...)
			events += len(cell.Events)
		}
	}
	if len(sessions) != 2 || events != 1 {
		t.Fatalf("got %d sessions and %d events", len(sessions), events)
	}
	if sessions[0].TimeRange != "9h00 - 10h00" || sessions[1].TimeRange != "19h00 - 20h00" {
		t.Fatalf("order %q %q", sessions[0].TimeRange, sessions[1].TimeRange)
	}
	if sessions[0].Role != calendar.RoleTeacher || sessions[0].Label() != "Acro @ Zaal" {
		t.Fatalf("unexpected item %+v", sessions[0])
	}
}

func TestWeek_AnonymousViewer(t *testing.T) {
	svc, _ := seed(t)
	w, err := svc.Week(context.Background(), nil, 2024, time.February, 14)
	if err != nil {
		t.Fatal(err)
	}
	monday := w.Days[0]
	if !monday.Today || len(monday.Sessions) != 2 {
		t.Fatalf("unexpected monday %+v", monday)
	}
	if monday.Sessions[0].Role != calendar.RoleNone {
		t.Fatal("anonymous viewer got a role")
	}
	if len(w.Days[1].Sessions) != 0 {
		t.Fatal("inactive course session shown")
	}
	if len(w.Days[5].Events) != 1 {
		t.Fatal("saturday event missing")
	}
}
