package models

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Birthdate      time.Time `db:"birthdate" json:"birthdate"`
	Volunteer      bool      `db:"volunteer" json:"volunteer"`
	IsTeacher      bool      `db:"is_teacher" json:"is_teacher"`
	IsStaff        bool      `db:"is_staff" json:"is_staff"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	EmailConfirmed bool      `db:"email_confirmed" json:"email_confirmed"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	RegisteredAt   time.Time `db:"registered_at" json:"registered_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsAuthenticated is false for the anonymous viewer, represented by a nil *User.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != 0
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
