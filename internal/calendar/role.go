package calendar

import "opengym/internal/models"

// Role describes how a viewer relates to a session.
type Role string

const (
	RoleNone             Role = ""
	RoleTeacher          Role = "teacher"
	RoleSubscribed       Role = "subscribed"
	RoleCourseSubscribed Role = "course-subscribed"
	RoleNotSubscribed    Role = "not-subscribed"
)

// Classify checks in order: teacher of the course, subscribed to the
// session, subscribed to the course. Anonymous viewers get RoleNone.
func Classify(s *models.Session, viewer *models.User) Role {
	if !viewer.IsAuthenticated() {
		return RoleNone
	}
	switch {
	case s.Course != nil && s.Course.UserIsTeacher(viewer.ID):
		return RoleTeacher
	case s.UserIsSubscribed(viewer.ID):
		return RoleSubscribed
	case s.Course != nil && s.Course.UserIsSubscribed(viewer.ID):
		return RoleCourseSubscribed
	}
	return RoleNotSubscribed
}

func (r Role) CSSClass() string {
	if r == RoleNone {
		return ""
	}
	return "session-" + string(r)
}
