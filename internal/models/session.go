package models

import (
	"slices"
	"time"

	"opengym/internal/apperr"
)

type Session struct {
	ID                    int64     `db:"id" json:"id"`
	CourseID              int64     `db:"course_id" json:"course_id"`
	Start                 time.Time `db:"start_at" json:"start"`
	Duration              Duration  `db:"duration_seconds" json:"duration"`
	ExtraInfo             string    `db:"extra_info" json:"extra_info"`
	LocationDiffCourse    bool      `db:"location_diff_course" json:"location_diff_course"`
	MaxStudentsDiffCourse bool      `db:"max_students_diff_course" json:"max_students_diff_course"`
	// MaxStudents is the stored value. While MaxStudentsDiffCourse is false it
	// is a copy of the course default taken at the last save and may be stale;
	// use Effective for reads.
	MaxStudents *int `db:"max_students" json:"max_students"`
	Location
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Course        *Course `db:"-" json:"-"`
	SubscribedIDs []int64 `db:"-" json:"subscribed_ids"`
}

// EffectiveSettings are the location and capacity actually in force for a session.
type EffectiveSettings struct {
	Location    Location
	MaxStudents *int
}

// ResolveEffective picks, per overridable attribute, the session's own value
// when its override flag is set and the course's value otherwise. It is
// recomputed on every call.
func ResolveEffective(course *Course, s *Session) EffectiveSettings {
	var eff EffectiveSettings
	if s.LocationDiffCourse || course == nil {
		eff.Location = s.Location
	} else {
		eff.Location = course.Location
	}
	if s.MaxStudentsDiffCourse || course == nil {
		eff.MaxStudents = s.MaxStudents
	} else {
		eff.MaxStudents = course.MaxStudentsSession
	}
	return eff
}

func (s *Session) Effective() EffectiveSettings {
	return ResolveEffective(s.Course, s)
}

func (s *Session) StartTime() time.Time { return s.Start }

func (s *Session) End() time.Time { return s.Start.Add(s.Duration.Std()) }

func (s *Session) UserIsSubscribed(userID int64) bool {
	return slices.Contains(s.SubscribedIDs, userID)
}

func (s *Session) IsFull() bool {
	limit := s.Effective().MaxStudents
	return limit != nil && len(s.SubscribedIDs) >= *limit
}

func (s *Session) SubscribeUser(userID int64) error {
	if s.UserIsSubscribed(userID) {
		return apperr.Denied("already subscribed to session")
	}
	if s.IsFull() {
		return apperr.SessionFull()
	}
	s.SubscribedIDs = append(s.SubscribedIDs, userID)
	return nil
}

func (s *Session) UnsubscribeUser(userID int64) error {
	i := slices.Index(s.SubscribedIDs, userID)
	if i < 0 {
		return apperr.ErrNotSubscribed
	}
	s.SubscribedIDs = slices.Delete(s.SubscribedIDs, i, i+1)
	return nil
}

// PrepareSave copies the course default into MaxStudents when the session
// does not override it, then validates the result.
func (s *Session) PrepareSave() error {
	if s.Course == nil || s.Course.ID != s.CourseID {
		return apperr.Validation("course", "session needs its course")
	}
	if !s.MaxStudentsDiffCourse {
		s.MaxStudents = copyInt(s.Course.MaxStudentsSession)
	}
	return s.Validate()
}

func (s *Session) Validate() error {
	if s.Start.IsZero() {
		return apperr.Validation("start", "session start is required")
	}
	if s.Duration <= 0 {
		return apperr.Validation("duration", "session duration must be positive")
	}
	if s.MaxStudentsDiffCourse && s.MaxStudents != nil && *s.MaxStudents < 1 {
		return apperr.Validation("max_students", "maximum students must be positive")
	}
	if limit := s.Effective().MaxStudents; limit != nil && len(s.SubscribedIDs) > *limit {
		return apperr.Validation("max_students",
			"session has %d subscribed users, more than the maximum of %d", len(s.SubscribedIDs), *limit)
	}
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
