package models

import (
	"errors"
	"testing"
	"time"

	"opengym/internal/apperr"
)

func TestResolveEffective_InheritsFromCourse(t *testing.T) {
	course := &Course{
		ID:                 1,
		MaxStudentsSession: intPtr(8),
		Location:           Location{Short: "Zaal", City: "Gent"},
	}
	s := &Session{
		CourseID:    1,
		Course:      course,
		MaxStudents: intPtr(99),
		Location:    Location{Short: "Elders"},
	}

	eff := s.Effective()
	if eff.MaxStudents == nil || *eff.MaxStudents != 8 {
		t.Fatalf("max students = %v, want 8", eff.MaxStudents)
	}
	if eff.Location.Short != "Zaal" {
		t.Fatalf("location = %q, want course location", eff.Location.Short)
	}

	// the course default changes after the session was loaded
	course.MaxStudentsSession = intPtr(3)
	course.Location.Short = "Tuin"
	eff = s.Effective()
	if *eff.MaxStudents != 3 || eff.Location.Short != "Tuin" {
		t.Fatalf("effective values were cached: %+v", eff)
	}
}

func TestResolveEffective_Overrides(t *testing.T) {
	course := &Course{MaxStudentsSession: intPtr(8), Location: Location{Short: "Zaal"}}
	s := &Session{
		LocationDiffCourse:    true,
		MaxStudentsDiffCourse: true,
		MaxStudents:           nil,
		Location:              Location{Short: "Park"},
	}

	eff := ResolveEffective(course, s)
	if eff.MaxStudents != nil {
		t.Fatalf("override without maximum should be unlimited, got %d", *eff.MaxStudents)
	}
	if eff.Location.Short != "Park" {
		t.Fatalf("location = %q", eff.Location.Short)
	}

	s.LocationDiffCourse = false
	eff = ResolveEffective(course, s)
	if eff.Location.Short != "Zaal" || eff.MaxStudents != nil {
		t.Fatalf("flags must be resolved independently: %+v", eff)
	}
}

func TestSession_SubscribeUsesEffectiveMax(t *testing.T) {
	course := &Course{ID: 1, MaxStudentsSession: intPtr(1)}
	s := &Session{CourseID: 1, Course: course, MaxStudents: intPtr(10)}

	if err := s.SubscribeUser(1); err != nil {
		t.Fatal(err)
	}
	err := s.SubscribeUser(2)
	if !errors.Is(err, apperr.ErrCapacityExceeded) || err.Error() != "This session is full" {
		t.Fatalf("want session full, got %v", err)
	}

	s.MaxStudentsDiffCourse = true
	if err := s.SubscribeUser(2); err != nil {
		t.Fatalf("override allows 10: %v", err)
	}
}

func TestSession_UnsubscribeNonMember(t *testing.T) {
	s := &Session{SubscribedIDs: []int64{4}}
	if err := s.UnsubscribeUser(5); !errors.Is(err, apperr.ErrNotSubscribed) {
		t.Fatalf("got %v", err)
	}
	if len(s.SubscribedIDs) != 1 {
		t.Fatal("membership changed")
	}
}

func TestSession_PrepareSaveSyncsCourseDefault(t *testing.T) {
	course := &Course{ID: 2, MaxStudentsSession: intPtr(4)}
	s := &Session{
		CourseID: 2,
		Course:   course,
		Start:    time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		Duration: Duration(90 * time.Minute),
	}
	if err := s.PrepareSave(); err != nil {
		t.Fatal(err)
	}
	if s.MaxStudents == nil || *s.MaxStudents != 4 {
		t.Fatalf("stored max not synced: %v", s.MaxStudents)
	}

	// the stored copy is independent from the course field
	*course.MaxStudentsSession = 6
	if *s.MaxStudents != 4 {
		t.Fatal("stored max aliases the course field")
	}

	s.MaxStudentsDiffCourse = true
	s.MaxStudents = intPtr(12)
	if err := s.PrepareSave(); err != nil {
		t.Fatal(err)
	}
	if *s.MaxStudents != 12 {
		t.Fatal("override overwritten by course default")
	}
}

func TestSession_PrepareSaveRejectsOverCapacity(t *testing.T) {
	course := &Course{ID: 2, MaxStudentsSession: intPtr(1)}
	s := &Session{
		CourseID:      2,
		Course:        course,
		Start:         time.Now(),
		Duration:      Duration(time.Hour),
		SubscribedIDs: []int64{1, 2},
	}
	var ve *apperr.ValidationError
	if err := s.PrepareSave(); !errors.As(err, &ve) || ve.Code != "max_students" {
		t.Fatalf("want max_students validation error, got %v", err)
	}
}

func TestSession_PrepareSaveNeedsCourse(t *testing.T) {
	s := &Session{CourseID: 3, Start: time.Now(), Duration: Duration(time.Hour)}
	if err := s.PrepareSave(); err == nil {
		t.Fatal("expected error without course")
	}
}
