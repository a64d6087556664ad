package service

import (
	"context"
	"io"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
)

// Viewer is the user making a request. A nil viewer is anonymous.
type Viewer = *models.User

type SubscriptionService interface {
	JoinCourse(ctx context.Context, viewer Viewer, courseID int64) error
	LeaveCourse(ctx context.Context, viewer Viewer, courseID int64) error
	// JoinSession and LeaveSession reject a session of another course.
	JoinSession(ctx context.Context, viewer Viewer, courseID, sessionID int64) error
	LeaveSession(ctx context.Context, viewer Viewer, courseID, sessionID int64) error
	// JoinBuildingDay is idempotent and reports whether the viewer was added.
	JoinBuildingDay(ctx context.Context, viewer Viewer, dayID int64) (bool, error)
	LeaveBuildingDay(ctx context.Context, viewer Viewer, dayID int64) error
}

// NewSessions describes one session or a weekly series of sessions.
type NewSessions struct {
	CourseID              int64
	Start                 time.Time
	Duration              time.Duration
	ExtraInfo             string
	LocationDiffCourse    bool
	Location              models.Location
	MaxStudentsDiffCourse bool
	MaxStudents           *int
	// WeeklyUntil repeats the session every 7 days while start <= WeeklyUntil.
	WeeklyUntil *time.Time
}

// CourseDetail is everything the course page shows.
type CourseDetail struct {
	Course      *models.Course
	Teachers    []*models.User
	Students    []*models.User
	Sessions    []*models.Session
	NextSession *models.Session
}

type CourseService interface {
	CreateCourse(ctx context.Context, viewer Viewer, course *models.Course) error
	UpdateCourse(ctx context.Context, viewer Viewer, course *models.Course) error
	DeleteCourse(ctx context.Context, viewer Viewer, id int64) error
	GetCourse(ctx context.Context, id int64) (*CourseDetail, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListUserCourses(ctx context.Context, viewer Viewer) ([]*models.Course, error)
	NextSession(ctx context.Context, courseID int64) (*models.Session, error)

	CreateSessions(ctx context.Context, viewer Viewer, in NewSessions) ([]*models.Session, error)
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	RemoveSession(ctx context.Context, viewer Viewer, courseID, sessionID int64) error
}

type CalendarService interface {
	Month(ctx context.Context, viewer Viewer, year int, month time.Month) (calendar.Month, error)
	Week(ctx context.Context, viewer Viewer, year int, month time.Month, day int) (calendar.Week, error)
	// SessionsBetween returns sessions with their course attached.
	SessionsBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error)
}

type UserService interface {
	Register(ctx context.Context, in Registration) (*models.User, error)
	Activate(ctx context.Context, token string) (*models.User, error)
	ResendActivation(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueSessionToken(user *models.User) (string, error)
	// UserFromSessionToken returns nil for invalid or expired tokens.
	UserFromSessionToken(ctx context.Context, token string) *models.User
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
}

type Registration struct {
	FirstName string
	LastName  string
	Birthdate time.Time
	Email     string
	Password  string
}

type NewsService interface {
	CreateItem(ctx context.Context, viewer Viewer, item *models.NewsItem) error
	SetBulletin(ctx context.Context, viewer Viewer, level models.BulletinLevel, newsItemID int64) error
	Bulletins(ctx context.Context) ([]*models.NewsBulletin, error)
	LatestItems(ctx context.Context, limit int) ([]*models.NewsItem, error)
}

// Upload is one file to add to an album.
type Upload struct {
	Name   string
	Reader io.Reader
}

type AlbumService interface {
	CreateAlbum(ctx context.Context, viewer Viewer, title, description string, files []Upload) (*models.Album, error)
	GetAlbum(ctx context.Context, id int64) (*models.Album, error)
	ListAlbums(ctx context.Context) ([]*models.Album, error)
	Favourites(ctx context.Context) ([]*models.Album, error)
	DeleteAlbum(ctx context.Context, viewer Viewer, id int64) error
	DeleteImage(ctx context.Context, viewer Viewer, imageID int64) error
	SetCover(ctx context.Context, viewer Viewer, albumID, imageID int64) error
	SetFavourite(ctx context.Context, viewer Viewer, albumID int64, favourite bool) error
}

// BuildingDayDetail is a building day with its people resolved.
type BuildingDayDetail struct {
	Day         *models.BuildingDay
	Responsible []*models.User
	Subscribed  []*models.User
}

type EventService interface {
	CreateEvent(ctx context.Context, viewer Viewer, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CreateBuildingDay(ctx context.Context, viewer Viewer, day *models.BuildingDay) error
	GetBuildingDay(ctx context.Context, id int64) (*BuildingDayDetail, error)
}

// Mailer delivers mail to a single user.
type Mailer interface {
	EmailUser(ctx context.Context, user *models.User, subject, body string) error
}

// FullNotifier is told when a course or session reaches its capacity.
type FullNotifier interface {
	CourseFull(ctx context.Context, course *models.Course)
	SessionFull(ctx context.Context, session *models.Session)
}

// ImageHost stores album images on the external image service.
type ImageHost interface {
	Upload(ctx context.Context, folder, name string, r io.Reader) (*HostedImage, error)
	Destroy(ctx context.Context, publicID string) error
	DeleteFolder(ctx context.Context, folder string) error
}

type HostedImage struct {
	PublicID string
	URL      string
	ThumbURL string
}
