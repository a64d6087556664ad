package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
	calendar_service "opengym/internal/service/calendar"
	user_service "opengym/internal/service/user"
	"opengym/internal/testutil/fakes"

	"go.uber.org/zap"
)

func setup(t *testing.T) (*Reminders, *fakes.Mailer) {
	t.Helper()
	ctx := context.Background()
	store := fakes.NewStore()
	users := fakes.UserRepo{Store: store}
	courses := fakes.CourseRepo{Store: store}
	sessions := fakes.SessionRepo{Store: store}

	for _, u := range []*models.User{
		{Email: "an@example.com", FirstName: "An", IsActive: true},
		{Email: "bo@example.com", FirstName: "Bo", IsActive: true},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	course := &models.Course{Name: "Acro", Level: 1, IsActive: true, Location: models.Location{Short: "Zaal B"}}
	if err := courses.Create(ctx, course); err != nil {
		t.Fatal(err)
	}

	starts := []time.Time{
		time.Date(2024, 2, 12, 20, 0, 0, 0, time.UTC), // today
		time.Date(2024, 2, 13, 18, 0, 0, 0, time.UTC), // tomorrow
		time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC),  // day after
	}
	for _, start := range starts {
		s := &models.Session{CourseID: course.ID, Start: start, Duration: models.Duration(time.Hour)}
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
		for _, uid := range []int64{1, 2} {
			if err := sessions.AddUser(ctx, s.ID, uid); err != nil {
				t.Fatal(err)
			}
		}
	}

	mailer := &fakes.Mailer{}
	cal := calendar_service.NewCalendarService(sessions, courses, fakes.EventRepo{Store: store},
		fakes.BuildingDayRepo{Store: store}, time.UTC, calendar.Dutch)
	userSvc := user_service.NewUserService(users, mailer, "secret", "https://opengym.test", zap.NewNop())

	r := NewReminders(cal, userSvc, mailer, time.UTC, calendar.Dutch, "https://opengym.test", zap.NewNop())
	r.now = func() time.Time { return time.Date(2024, 2, 12, 18, 0, 0, 0, time.UTC) }
	return r, mailer
}

func TestReminders_MailsTomorrowsSubscribers(t *testing.T) {
	r, mailer := setup(t)

	sent, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 || len(mailer.Sent) != 2 {
		t.Fatalf("want 2 reminders, got %d (%d recorded)", sent, len(mailer.Sent))
	}

	m := mailer.Sent[0]
	if m.Subject != "Herinnering: Acro morgen om 18h00" {
		t.Fatalf("subject %q", m.Subject)
	}
	for _, want := range []string{"dinsdag 13 februari", "18h00 - 19h00", "Zaal B", "https://opengym.test/session/"} {
		if !strings.Contains(m.Body, want) {
			t.Fatalf("body misses %q:\n%s", want, m.Body)
		}
	}
}

func TestReminders_MailFailureIsReported(t *testing.T) {
	r, mailer := setup(t)
	mailer.Err = errors.New("smtp down")

	sent, err := r.Run(context.Background())
	if sent != 0 || err == nil {
		t.Fatalf("got sent=%d err=%v", sent, err)
	}
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	r, _ := setup(t)
	if _, err := NewScheduler("not a cron expression", time.UTC, r, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
	s, err := NewScheduler("0 18 * * *", time.UTC, r, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop(context.Background())
}
