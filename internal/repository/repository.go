package repository

import (
	"context"
	"time"

	"opengym/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	Activate(ctx context.Context, id int64) error
}

// CourseRepository loads courses together with their teacher and student ids.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	// Delete removes the course with its sessions and memberships.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	// GetForUpdate locks the course row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Course, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Course, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Course, error)

	AddTeacher(ctx context.Context, courseID, userID int64) error
	AddStudent(ctx context.Context, courseID, userID int64) error
	RemoveStudent(ctx context.Context, courseID, userID int64) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	// GetForUpdate locks the session row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Session, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Session, error)
	// ListInRange returns sessions of active courses starting in [from, to),
	// ordered by start.
	ListInRange(ctx context.Context, from, to time.Time) ([]*models.Session, error)
	NextForCourse(ctx context.Context, courseID int64, after time.Time) (*models.Session, error)
	// SyncCourseDefaults rewrites the stored max_students of every session of
	// the course that does not override it.
	SyncCourseDefaults(ctx context.Context, courseID int64, maxStudents *int) error

	AddUser(ctx context.Context, sessionID, userID int64) error
	RemoveUser(ctx context.Context, sessionID, userID int64) error
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]*models.Event, error)
}

type BuildingDayRepository interface {
	Create(ctx context.Context, day *models.BuildingDay) error
	GetByID(ctx context.Context, id int64) (*models.BuildingDay, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]*models.BuildingDay, error)
	AddResponsible(ctx context.Context, dayID, userID int64) error
	// AddUser reports whether a row was inserted.
	AddUser(ctx context.Context, dayID, userID int64) (bool, error)
	RemoveUser(ctx context.Context, dayID, userID int64) (bool, error)
}

type NewsRepository interface {
	CreateItem(ctx context.Context, item *models.NewsItem) error
	GetItem(ctx context.Context, id int64) (*models.NewsItem, error)
	ListItems(ctx context.Context, limit int) ([]*models.NewsItem, error)
	// PutBulletin stores the bulletin, replacing whatever held its level.
	PutBulletin(ctx context.Context, bulletin *models.NewsBulletin) error
	ListBulletins(ctx context.Context) ([]*models.NewsBulletin, error)
}

type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, id int64) (*models.Album, error)
	List(ctx context.Context) ([]*models.Album, error)
	ListFavourites(ctx context.Context) ([]*models.Album, error)
	Delete(ctx context.Context, id int64) error
	SetFavourite(ctx context.Context, id int64, favourite bool) error
	SetCover(ctx context.Context, albumID, imageID int64) error

	AddImage(ctx context.Context, image *models.Image) error
	GetImage(ctx context.Context, id int64) (*models.Image, error)
	DeleteImage(ctx context.Context, id int64) error
}
