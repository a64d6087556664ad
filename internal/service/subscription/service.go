package subscription_service

import (
	"context"
	"errors"

	"opengym/internal/apperr"
	"opengym/internal/metrics"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"

	"go.uber.org/zap"
)

type subscriptionService struct {
	tx       repository.Transactor
	courses  repository.CourseRepository
	sessions repository.SessionRepository
	days     repository.BuildingDayRepository
	notifier service.FullNotifier
	log      *zap.Logger
}

// NewSubscriptionService accepts a nil notifier.
func NewSubscriptionService(
	tx repository.Transactor,
	courses repository.CourseRepository,
	sessions repository.SessionRepository,
	days repository.BuildingDayRepository,
	notifier service.FullNotifier,
	log *zap.Logger,
) service.SubscriptionService {
	return &subscriptionService{
		tx:       tx,
		courses:  courses,
		sessions: sessions,
		days:     days,
		notifier: notifier,
		log:      log,
	}
}

// JoinCourse counts and inserts while holding the course row lock, so two
// concurrent joins cannot both take the last place.
func (s *subscriptionService) JoinCourse(ctx context.Context, viewer service.Viewer, courseID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	var course *models.Course
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		course, err = s.courses.GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if !course.IsActive {
			return apperr.Denied("course is not active")
		}
		if err := course.SubscribeUser(viewer.ID); err != nil {
			return err
		}
		return s.courses.AddStudent(ctx, course.ID, viewer.ID)
	})
	if err != nil {
		s.record("course", "join", err)
		return err
	}
	s.record("course", "join", nil)
	s.log.Info("course joined", zap.Int64("course_id", courseID), zap.Int64("user_id", viewer.ID),
		zap.Int("students", len(course.StudentIDs)))
	if course.IsFull() && s.notifier != nil {
		s.notifier.CourseFull(ctx, course)
	}
	return nil
}

func (s *subscriptionService) LeaveCourse(ctx context.Context, viewer service.Viewer, courseID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		course, err := s.courses.GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := course.UnsubscribeUser(viewer.ID); err != nil {
			return err
		}
		return s.courses.RemoveStudent(ctx, course.ID, viewer.ID)
	})
	s.record("course", "leave", err)
	if err == nil {
		s.log.Info("course left", zap.Int64("course_id", courseID), zap.Int64("user_id", viewer.ID))
	}
	return err
}

// JoinSession checks the effective capacity, which may come from the course.
func (s *subscriptionService) JoinSession(ctx context.Context, viewer service.Viewer, courseID, sessionID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	var session *models.Session
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.lockSession(ctx, courseID, sessionID)
		if err != nil {
			return err
		}
		if !session.Course.IsActive {
			return apperr.Denied("course is not active")
		}
		if err := session.SubscribeUser(viewer.ID); err != nil {
			return err
		}
		return s.sessions.AddUser(ctx, session.ID, viewer.ID)
	})
	if err != nil {
		s.record("session", "join", err)
		return err
	}
	s.record("session", "join", nil)
	s.log.Info("session joined", zap.Int64("session_id", sessionID), zap.Int64("user_id", viewer.ID),
		zap.Int("subscribed", len(session.SubscribedIDs)))
	if session.IsFull() && s.notifier != nil {
		s.notifier.SessionFull(ctx, session)
	}
	return nil
}

func (s *subscriptionService) LeaveSession(ctx context.Context, viewer service.Viewer, courseID, sessionID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		session, err := s.lockSession(ctx, courseID, sessionID)
		if err != nil {
			return err
		}
		if err := session.UnsubscribeUser(viewer.ID); err != nil {
			return err
		}
		return s.sessions.RemoveUser(ctx, session.ID, viewer.ID)
	})
	s.record("session", "leave", err)
	return err
}

// lockSession locks the course row before the session row, the order
// UpdateCourse uses, so a capacity change and a join cannot interleave.
func (s *subscriptionService) lockSession(ctx context.Context, courseID, sessionID int64) (*models.Session, error) {
	course, err := s.courses.GetForUpdate(ctx, courseID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.GetForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CourseID != course.ID {
		return nil, apperr.Denied("session belongs to another course")
	}
	session.Course = course
	return session, nil
}

func (s *subscriptionService) JoinBuildingDay(ctx context.Context, viewer service.Viewer, dayID int64) (bool, error) {
	if !viewer.IsAuthenticated() {
		return false, apperr.Denied("login required")
	}
	var added bool
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByID(ctx, dayID)
		if err != nil {
			return err
		}
		if !day.SubscribeUser(viewer.ID) {
			return nil
		}
		added, err = s.days.AddUser(ctx, dayID, viewer.ID)
		return err
	})
	if err != nil {
		return false, err
	}
	if added {
		s.record("building_day", "join", nil)
	}
	return added, nil
}

func (s *subscriptionService) LeaveBuildingDay(ctx context.Context, viewer service.Viewer, dayID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByID(ctx, dayID)
		if err != nil {
			return err
		}
		if err := day.UnsubscribeUser(viewer.ID); err != nil {
			return err
		}
		removed, err := s.days.RemoveUser(ctx, dayID, viewer.ID)
		if err != nil {
			return err
		}
		if !removed {
			return apperr.ErrNotSubscribed
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record("building_day", "leave", nil)
	return nil
}

func (s *subscriptionService) record(target, action string, err error) {
	switch {
	case err == nil:
		metrics.Subscriptions.WithLabelValues(target, action).Inc()
	case errors.Is(err, apperr.ErrCapacityExceeded):
		metrics.CapacityRejections.WithLabelValues(target).Inc()
	}
}
