package event_service

import (
	"context"
	"strings"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"
)

type eventService struct {
	tx     repository.Transactor
	events repository.EventRepository
	days   repository.BuildingDayRepository
	users  repository.UserRepository
}

func NewEventService(
	tx repository.Transactor,
	events repository.EventRepository,
	days repository.BuildingDayRepository,
	users repository.UserRepository,
) service.EventService {
	return &eventService{tx: tx, events: events, days: days, users: users}
}

func (s *eventService) CreateEvent(ctx context.Context, viewer service.Viewer, event *models.Event) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return apperr.Denied("only staff can create events")
	}
	if strings.TrimSpace(event.Name) == "" {
		return apperr.Validation("event_name", "event name is required")
	}
	if event.Start.IsZero() || event.Duration <= 0 {
		return apperr.Validation("start", "event needs a start and a positive duration")
	}
	return s.events.Create(ctx, event)
}

// CreateBuildingDay makes the creator responsible for the day.
func (s *eventService) CreateBuildingDay(ctx context.Context, viewer service.Viewer, day *models.BuildingDay) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return apperr.Denied("only staff can plan building days")
	}
	if day.Start.IsZero() || day.Duration <= 0 {
		return apperr.Validation("start", "building day needs a start and a positive duration")
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.days.Create(ctx, day); err != nil {
			return err
		}
		day.ResponsibleIDs = []int64{viewer.ID}
		return s.days.AddResponsible(ctx, day.ID, viewer.ID)
	})
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *eventService) GetBuildingDay(ctx context.Context, id int64) (*service.BuildingDayDetail, error) {
	day, err := s.days.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &service.BuildingDayDetail{Day: day}
	if detail.Responsible, err = s.users.GetByIDs(ctx, day.ResponsibleIDs); err != nil {
		return nil, err
	}
	if detail.Subscribed, err = s.users.GetByIDs(ctx, day.SubscribedIDs); err != nil {
		return nil, err
	}
	return detail, nil
}
