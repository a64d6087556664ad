package models

import (
	"slices"
	"strings"
	"time"

	"opengym/internal/apperr"
)

type Level int16

const (
	LevelBeginner     Level = 1
	LevelIntermediate Level = 2
	LevelAdvanced     Level = 3
)

func (l Level) Valid() bool {
	return l >= LevelBeginner && l <= LevelAdvanced
}

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	}
	return "Unknown"
}

// Location is shared by courses and sessions.
type Location struct {
	Short  string `db:"location_short" json:"location_short"`
	Street string `db:"location_street" json:"location_street"`
	Number string `db:"location_number" json:"location_number"`
	City   string `db:"location_city" json:"location_city"`
}

func (l Location) Address() string {
	street := strings.TrimSpace(l.Street + " " + l.Number)
	switch {
	case street == "":
		return l.City
	case l.City == "":
		return street
	}
	return street + ", " + l.City
}

type Course struct {
	ID                 int64  `db:"id" json:"id"`
	Name               string `db:"course_name" json:"course_name"`
	Level              Level  `db:"course_level" json:"course_level"`
	BuildUpSessions    bool   `db:"build_up_sessions" json:"build_up_sessions"`
	Description        string `db:"description" json:"description"`
	MaxStudentsCourse  *int   `db:"max_students_course" json:"max_students_course"`
	MaxStudentsSession *int   `db:"max_students_session" json:"max_students_session"`
	Location
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	TeacherIDs []int64 `db:"-" json:"teacher_ids"`
	StudentIDs []int64 `db:"-" json:"student_ids"`
}

func (c *Course) UserIsTeacher(userID int64) bool {
	return slices.Contains(c.TeacherIDs, userID)
}

func (c *Course) UserIsSubscribed(userID int64) bool {
	return slices.Contains(c.StudentIDs, userID)
}

// IsFull is false when no course maximum is configured.
func (c *Course) IsFull() bool {
	return c.MaxStudentsCourse != nil && len(c.StudentIDs) >= *c.MaxStudentsCourse
}

func (c *Course) SubscribeUser(userID int64) error {
	if c.UserIsSubscribed(userID) {
		return apperr.Denied("already subscribed to course")
	}
	if c.IsFull() {
		return apperr.CourseFull()
	}
	c.StudentIDs = append(c.StudentIDs, userID)
	return nil
}

func (c *Course) UnsubscribeUser(userID int64) error {
	i := slices.Index(c.StudentIDs, userID)
	if i < 0 {
		return apperr.ErrNotSubscribed
	}
	c.StudentIDs = slices.Delete(c.StudentIDs, i, i+1)
	return nil
}

// Validate runs before every save.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("course_name", "course name is required")
	}
	if !c.Level.Valid() {
		return apperr.Validation("course_level", "invalid course level %d", c.Level)
	}
	if c.MaxStudentsCourse != nil {
		if *c.MaxStudentsCourse < 1 {
			return apperr.Validation("max_students_course", "maximum students per course must be positive")
		}
		if len(c.StudentIDs) > *c.MaxStudentsCourse {
			return apperr.Validation("max_students_course",
				"course %q has %d students, more than the maximum of %d", c.Name, len(c.StudentIDs), *c.MaxStudentsCourse)
		}
	}
	if c.MaxStudentsSession != nil && *c.MaxStudentsSession < 1 {
		return apperr.Validation("max_students_session", "maximum students per session must be positive")
	}
	return nil
}
