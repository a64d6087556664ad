package calendar_service

import (
	"context"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/metrics"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"
)

type calendarService struct {
	sessions repository.SessionRepository
	courses  repository.CourseRepository
	events   repository.EventRepository
	days     repository.BuildingDayRepository
	loc      *time.Location
	locale   calendar.Locale
	now      func() time.Time
}

func NewCalendarService(
	sessions repository.SessionRepository,
	courses repository.CourseRepository,
	events repository.EventRepository,
	days repository.BuildingDayRepository,
	loc *time.Location,
	locale calendar.Locale,
) service.CalendarService {
	return &calendarService{
		sessions: sessions,
		courses:  courses,
		events:   events,
		days:     days,
		loc:      loc,
		locale:   locale,
		now:      time.Now,
	}
}

func (s *calendarService) Month(ctx context.Context, viewer service.Viewer, year int, month time.Month) (calendar.Month, error) {
	from, to := calendar.MonthRange(year, month, s.loc)
	b, err := s.builder(ctx, viewer, from, to)
	if err != nil {
		return calendar.Month{}, err
	}
	metrics.CalendarRenders.WithLabelValues("month").Inc()
	return b.Month(year, month), nil
}

func (s *calendarService) Week(ctx context.Context, viewer service.Viewer, year int, month time.Month, day int) (calendar.Week, error) {
	from, to := calendar.WeekRange(year, month, day, s.loc)
	b, err := s.builder(ctx, viewer, from, to)
	if err != nil {
		return calendar.Week{}, err
	}
	metrics.CalendarRenders.WithLabelValues("week").Inc()
	return b.Week(year, month, day), nil
}

func (s *calendarService) builder(ctx context.Context, viewer service.Viewer, from, to time.Time) (*calendar.Builder, error) {
	sessions, err := s.SessionsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	days, err := s.days.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return calendar.NewBuilder(calendar.Input{
		Sessions:     sessions,
		Events:       events,
		BuildingDays: days,
		Viewer:       viewer,
		Location:     s.loc,
		Locale:       s.locale,
		Now:          s.now(),
	}), nil
}

func (s *calendarService) SessionsBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	sessions, err := s.sessions.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var ids []int64
	seen := make(map[int64]bool)
	for _, session := range sessions {
		if !seen[session.CourseID] {
			seen[session.CourseID] = true
			ids = append(ids, session.CourseID)
		}
	}
	courses, err := s.courses.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	for _, session := range sessions {
		session.Course = byID[session.CourseID]
	}
	return sessions, nil
}
