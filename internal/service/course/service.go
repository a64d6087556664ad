package course_service

import (
	"context"
	"errors"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"

	"go.uber.org/zap"
)

const week = 7 * 24 * time.Hour

type courseService struct {
	tx       repository.Transactor
	courses  repository.CourseRepository
	sessions repository.SessionRepository
	users    repository.UserRepository
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewCourseService(
	tx repository.Transactor,
	courses repository.CourseRepository,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	loc *time.Location,
	log *zap.Logger,
) service.CourseService {
	return &courseService{
		tx:       tx,
		courses:  courses,
		sessions: sessions,
		users:    users,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

// CreateCourse is reserved to teachers; the creator teaches the new course.
func (s *courseService) CreateCourse(ctx context.Context, viewer service.Viewer, course *models.Course) error {
	if !viewer.IsAuthenticated() || !viewer.IsTeacher {
		return apperr.Denied("only teachers can create courses")
	}
	course.IsActive = true
	course.StudentIDs = nil
	course.TeacherIDs = []int64{viewer.ID}
	if err := course.Validate(); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.courses.Create(ctx, course); err != nil {
			return err
		}
		return s.courses.AddTeacher(ctx, course.ID, viewer.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("course created", zap.Int64("course_id", course.ID), zap.Int64("teacher_id", viewer.ID))
	return nil
}

// UpdateCourse revalidates every session that inherits the course capacity
// and refreshes their stored copy of it.
func (s *courseService) UpdateCourse(ctx context.Context, viewer service.Viewer, course *models.Course) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.courses.GetForUpdate(ctx, course.ID)
		if err != nil {
			return err
		}
		if !current.UserIsTeacher(viewer.ID) {
			return apperr.Denied("only teachers of the course can change it")
		}
		course.TeacherIDs = current.TeacherIDs
		course.StudentIDs = current.StudentIDs
		if err := course.Validate(); err != nil {
			return err
		}

		sessions, err := s.sessions.ListByCourse(ctx, course.ID)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			session.Course = course
			if err := session.PrepareSave(); err != nil {
				return err
			}
		}

		if err := s.courses.Update(ctx, course); err != nil {
			return err
		}
		return s.sessions.SyncCourseDefaults(ctx, course.ID, course.MaxStudentsSession)
	})
}

// DeleteCourse removes the course together with its sessions. Only its
// teachers may do so.
func (s *courseService) DeleteCourse(ctx context.Context, viewer service.Viewer, id int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		course, err := s.courses.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !course.UserIsTeacher(viewer.ID) {
			return apperr.Denied("only teachers of the course can delete it")
		}
		return s.courses.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("course deleted", zap.Int64("course_id", id), zap.Int64("teacher_id", viewer.ID))
	return nil
}

func (s *courseService) GetCourse(ctx context.Context, id int64) (*service.CourseDetail, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &service.CourseDetail{Course: course}
	if detail.Teachers, err = s.users.GetByIDs(ctx, course.TeacherIDs); err != nil {
		return nil, err
	}
	if detail.Students, err = s.users.GetByIDs(ctx, course.StudentIDs); err != nil {
		return nil, err
	}
	if detail.Sessions, err = s.sessions.ListByCourse(ctx, id); err != nil {
		return nil, err
	}
	now := s.now()
	for _, session := range detail.Sessions {
		session.Course = course
		if detail.NextSession == nil && !session.Start.Before(now) {
			detail.NextSession = session
		}
	}
	return detail, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courses.List(ctx, true)
}

func (s *courseService) ListUserCourses(ctx context.Context, viewer service.Viewer) ([]*models.Course, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperr.Denied("login required")
	}
	return s.courses.ListForUser(ctx, viewer.ID)
}

// NextSession is the first session starting now or later; nil when none is planned.
func (s *courseService) NextSession(ctx context.Context, courseID int64) (*models.Session, error) {
	session, err := s.sessions.NextForCourse(ctx, courseID, s.now())
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateSessions creates one session, or one per week while the start is not
// after WeeklyUntil. Weekly steps keep the local wall-clock time.
func (s *courseService) CreateSessions(ctx context.Context, viewer service.Viewer, in service.NewSessions) ([]*models.Session, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperr.Denied("login required")
	}
	starts, err := s.sessionStarts(in)
	if err != nil {
		return nil, err
	}

	var created []*models.Session
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		course, err := s.courses.GetByID(ctx, in.CourseID)
		if err != nil {
			return err
		}
		if !course.UserIsTeacher(viewer.ID) {
			return apperr.Denied("only teachers of the course can add sessions")
		}
		for _, start := range starts {
			session := &models.Session{
				CourseID:              course.ID,
				Course:                course,
				Start:                 start,
				Duration:              models.Duration(in.Duration),
				ExtraInfo:             in.ExtraInfo,
				LocationDiffCourse:    in.LocationDiffCourse,
				MaxStudentsDiffCourse: in.MaxStudentsDiffCourse,
			}
			if in.LocationDiffCourse {
				session.Location = in.Location
			}
			if in.MaxStudentsDiffCourse {
				session.MaxStudents = in.MaxStudents
			}
			if err := session.PrepareSave(); err != nil {
				return err
			}
			if err := s.sessions.Create(ctx, session); err != nil {
				return err
			}
			created = append(created, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("sessions created", zap.Int64("course_id", in.CourseID), zap.Int("count", len(created)))
	return created, nil
}

func (s *courseService) sessionStarts(in service.NewSessions) ([]time.Time, error) {
	if in.Start.IsZero() {
		return nil, apperr.Validation("start", "session start is required")
	}
	if in.WeeklyUntil == nil {
		return []time.Time{in.Start}, nil
	}
	until := *in.WeeklyUntil
	if until.Sub(in.Start) < week {
		return nil, apperr.Validation("weekly_until", "weekly repetition must end at least 7 days after the first session")
	}
	local := in.Start.In(s.loc)
	var starts []time.Time
	for i := 0; ; i++ {
		start := local.AddDate(0, 0, 7*i)
		if start.After(until) {
			break
		}
		starts = append(starts, start)
	}
	return starts, nil
}

func (s *courseService) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Course, err = s.courses.GetByID(ctx, session.CourseID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *courseService) RemoveSession(ctx context.Context, viewer service.Viewer, courseID, sessionID int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Denied("login required")
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.CourseID != courseID {
		return apperr.Denied("session belongs to another course")
	}
	if !session.Course.UserIsTeacher(viewer.ID) {
		return apperr.Denied("only teachers of the course can remove sessions")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("session removed", zap.Int64("course_id", courseID), zap.Int64("session_id", sessionID))
	return nil
}
