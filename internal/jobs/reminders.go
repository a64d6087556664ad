package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/metrics"
	"opengym/internal/models"
	"opengym/internal/service"

	"go.uber.org/zap"
)

// Reminders mails every subscribed user of tomorrow's sessions.
type Reminders struct {
	calendar service.CalendarService
	users    service.UserService
	mailer   service.Mailer
	loc      *time.Location
	locale   calendar.Locale
	baseURL  string
	log      *zap.Logger
	now      func() time.Time
}

func NewReminders(
	calendarService service.CalendarService,
	users service.UserService,
	mailer service.Mailer,
	loc *time.Location,
	locale calendar.Locale,
	baseURL string,
	log *zap.Logger,
) *Reminders {
	return &Reminders{
		calendar: calendarService,
		users:    users,
		mailer:   mailer,
		loc:      loc,
		locale:   locale,
		baseURL:  baseURL,
		log:      log,
		now:      time.Now,
	}
}

// Run sends one mail per subscribed user and session starting tomorrow in
// the configured location. A failed mail is logged and does not stop the
// others; the returned error joins every failure.
func (r *Reminders) Run(ctx context.Context) (int, error) {
	tomorrow := calendar.DateOf(r.now(), r.loc).AddDays(1)
	from := tomorrow.Midnight(r.loc)
	to := tomorrow.AddDays(1).Midnight(r.loc)

	sessions, err := r.calendar.SessionsBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("sessions for %s: %w", tomorrow, err)
	}

	var ids []int64
	seen := map[int64]bool{}
	for _, s := range sessions {
		for _, id := range s.SubscribedIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("subscribed users: %w", err)
	}
	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var (
		sent int
		errs []error
	)
	for _, s := range sessions {
		subject, body := r.message(s)
		for _, id := range s.SubscribedIDs {
			u, ok := byID[id]
			if !ok {
				continue
			}
			if err := r.mailer.EmailUser(ctx, u, subject, body); err != nil {
				r.log.Warn("reminder not sent",
					zap.Int64("session_id", s.ID), zap.Int64("user_id", id), zap.Error(err))
				errs = append(errs, err)
				continue
			}
			sent++
			metrics.RemindersSent.Inc()
		}
	}

	r.log.Info("session reminders sent", zap.Stringer("day", tomorrow), zap.Int("sent", sent))
	return sent, errors.Join(errs...)
}

func (r *Reminders) message(s *models.Session) (string, string) {
	name := ""
	if s.Course != nil {
		name = s.Course.Name
	}
	start := s.Start.In(r.loc)
	when := fmt.Sprintf("%s %d %s", r.locale.WeekdayName(start.Weekday()), start.Day(), r.locale.MonthName(start.Month()))

	subject := fmt.Sprintf("Herinnering: %s morgen om %s", name, calendar.ClockTime(start))
	body := fmt.Sprintf("Hallo,\n\nJe bent ingeschreven voor %s op %s (%s).\n", name, when,
		calendar.TimeRange(start, s.End().In(r.loc)))
	if loc := s.Effective().Location; loc.Short != "" || loc.Address() != "" {
		body += fmt.Sprintf("Locatie: %s %s\n", loc.Short, loc.Address())
	}
	body += fmt.Sprintf("\nKan je niet komen? Schrijf je uit via %s/session/%d\n\nTot morgen!\nOpen Gym", r.baseURL, s.ID)
	return subject, body
}
