package calendar

import (
	"testing"

	"opengym/internal/models"
)

func TestClassify(t *testing.T) {
	course := &models.Course{ID: 1, TeacherIDs: []int64{1}, StudentIDs: []int64{1, 2, 3}}
	session := &models.Session{CourseID: 1, Course: course, SubscribedIDs: []int64{1, 2}}

	cases := []struct {
		name   string
		viewer *models.User
		want   Role
	}{
		{"teacher also subscribed", &models.User{ID: 1}, RoleTeacher},
		{"session subscriber", &models.User{ID: 2}, RoleSubscribed},
		{"course only", &models.User{ID: 3}, RoleCourseSubscribed},
		{"stranger", &models.User{ID: 4}, RoleNotSubscribed},
		{"anonymous", nil, RoleNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(session, tc.viewer); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRole_CSSClass(t *testing.T) {
	if RoleNone.CSSClass() != "" {
		t.Fatal("anonymous role must not have a class")
	}
	if RoleCourseSubscribed.CSSClass() != "session-course-subscribed" {
		t.Fatalf("got %q", RoleCourseSubscribed.CSSClass())
	}
}
