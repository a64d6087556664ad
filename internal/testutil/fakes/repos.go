// Package fakes holds in-memory repositories and collaborators for tests.
package fakes

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
)

// Store backs every fake repository. Tx serializes transactions on one mutex,
// which stands in for the row locks of the real database.
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	nextID int64

	Users        map[int64]*models.User
	Courses      map[int64]*models.Course
	Sessions     map[int64]*models.Session
	Events       map[int64]*models.Event
	BuildingDays map[int64]*models.BuildingDay
	NewsItems    map[int64]*models.NewsItem
	Bulletins    map[models.BulletinLevel]*models.NewsBulletin
	Albums       map[int64]*models.Album
	Images       map[int64]*models.Image
}

func NewStore() *Store {
	return &Store{
		Users:        map[int64]*models.User{},
		Courses:      map[int64]*models.Course{},
		Sessions:     map[int64]*models.Session{},
		Events:       map[int64]*models.Event{},
		BuildingDays: map[int64]*models.BuildingDay{},
		NewsItems:    map[int64]*models.NewsItem{},
		Bulletins:    map[models.BulletinLevel]*models.NewsBulletin{},
		Albums:       map[int64]*models.Album{},
		Images:       map[int64]*models.Image{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type txKey struct{}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

var _ repository.Transactor = (*Store)(nil)

func cloneCourse(c *models.Course) *models.Course {
	cp := *c
	cp.TeacherIDs = slices.Clone(c.TeacherIDs)
	cp.StudentIDs = slices.Clone(c.StudentIDs)
	return &cp
}

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	cp.SubscribedIDs = slices.Clone(s.SubscribedIDs)
	cp.Course = nil
	return &cp
}

func cloneDay(d *models.BuildingDay) *models.BuildingDay {
	cp := *d
	cp.ResponsibleIDs = slices.Clone(d.ResponsibleIDs)
	cp.SubscribedIDs = slices.Clone(d.SubscribedIDs)
	return &cp
}

// Users

type UserRepo struct{ *Store }

func (r UserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return apperr.Validation("email", "email already registered")
		}
	}
	u.ID = r.id()
	u.RegisteredAt = time.Now()
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}

func (r UserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r UserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r UserRepo) GetByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.Users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r UserRepo) Activate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.IsActive = true
	u.EmailConfirmed = true
	return nil
}

// Courses

type CourseRepo struct{ *Store }

func (r CourseRepo) Create(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	r.Courses[c.ID] = cloneCourse(c)
	return nil
}

func (r CourseRepo) Update(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.Courses[c.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	cp := cloneCourse(c)
	cp.TeacherIDs = old.TeacherIDs
	cp.StudentIDs = old.StudentIDs
	r.Courses[c.ID] = cp
	return nil
}

func (r CourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Courses[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.Courses, id)
	for sid, s := range r.Sessions {
		if s.CourseID == id {
			delete(r.Sessions, sid)
		}
	}
	return nil
}

func (r CourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneCourse(c), nil
}

func (r CourseRepo) GetForUpdate(ctx context.Context, id int64) (*models.Course, error) {
	return r.GetByID(ctx, id)
}

func (r CourseRepo) GetByIDs(_ context.Context, ids []int64) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for _, id := range ids {
		if c, ok := r.Courses[id]; ok {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r CourseRepo) List(_ context.Context, activeOnly bool) ([]*models.Course, error) {
	return r.filter(func(c *models.Course) bool { return !activeOnly || c.IsActive }), nil
}

func (r CourseRepo) ListForUser(_ context.Context, userID int64) ([]*models.Course, error) {
	return r.filter(func(c *models.Course) bool {
		return c.UserIsTeacher(userID) || c.UserIsSubscribed(userID)
	}), nil
}

func (r CourseRepo) filter(keep func(*models.Course) bool) []*models.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for _, c := range r.Courses {
		if keep(c) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r CourseRepo) AddTeacher(_ context.Context, courseID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[courseID]
	if !ok {
		return apperr.ErrNotFound
	}
	if !c.UserIsTeacher(userID) {
		c.TeacherIDs = append(c.TeacherIDs, userID)
	}
	return nil
}

func (r CourseRepo) AddStudent(_ context.Context, courseID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[courseID]
	if !ok {
		return apperr.ErrNotFound
	}
	c.StudentIDs = append(c.StudentIDs, userID)
	return nil
}

func (r CourseRepo) RemoveStudent(_ context.Context, courseID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[courseID]
	if !ok {
		return apperr.ErrNotFound
	}
	i := slices.Index(c.StudentIDs, userID)
	if i < 0 {
		return apperr.ErrNotFound
	}
	c.StudentIDs = slices.Delete(c.StudentIDs, i, i+1)
	return nil
}

// Sessions

type SessionRepo struct{ *Store }

func (r SessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id()
	r.Sessions[s.ID] = cloneSession(s)
	return nil
}

func (r SessionRepo) Update(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.Sessions[s.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	cp := cloneSession(s)
	cp.SubscribedIDs = old.SubscribedIDs
	r.Sessions[s.ID] = cp
	return nil
}

func (r SessionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Sessions[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.Sessions, id)
	return nil
}

func (r SessionRepo) GetByID(_ context.Context, id int64) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r SessionRepo) GetForUpdate(ctx context.Context, id int64) (*models.Session, error) {
	return r.GetByID(ctx, id)
}

func (r SessionRepo) ListByCourse(_ context.Context, courseID int64) ([]*models.Session, error) {
	return r.filter(func(s *models.Session) bool { return s.CourseID == courseID }), nil
}

func (r SessionRepo) ListInRange(_ context.Context, from, to time.Time) ([]*models.Session, error) {
	return r.filter(func(s *models.Session) bool {
		c, ok := r.Courses[s.CourseID]
		return ok && c.IsActive && !s.Start.Before(from) && s.Start.Before(to)
	}), nil
}

func (r SessionRepo) NextForCourse(_ context.Context, courseID int64, after time.Time) (*models.Session, error) {
	list := r.filter(func(s *models.Session) bool { return s.CourseID == courseID && !s.Start.Before(after) })
	if len(list) == 0 {
		return nil, apperr.ErrNotFound
	}
	return list[0], nil
}

func (r SessionRepo) SyncCourseDefaults(_ context.Context, courseID int64, maxStudents *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Sessions {
		if s.CourseID == courseID && !s.MaxStudentsDiffCourse {
			if maxStudents == nil {
				s.MaxStudents = nil
			} else {
				v := *maxStudents
				s.MaxStudents = &v
			}
		}
	}
	return nil
}

func (r SessionRepo) filter(keep func(*models.Session) bool) []*models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Session
	for _, s := range r.Sessions {
		if keep(s) {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (r SessionRepo) AddUser(_ context.Context, sessionID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[sessionID]
	if !ok {
		return apperr.ErrNotFound
	}
	s.SubscribedIDs = append(s.SubscribedIDs, userID)
	return nil
}

func (r SessionRepo) RemoveUser(_ context.Context, sessionID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[sessionID]
	if !ok {
		return apperr.ErrNotFound
	}
	i := slices.Index(s.SubscribedIDs, userID)
	if i < 0 {
		return apperr.ErrNotFound
	}
	s.SubscribedIDs = slices.Delete(s.SubscribedIDs, i, i+1)
	return nil
}

// Events and building days

type EventRepo struct{ *Store }

func (r EventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.id()
	cp := *e
	r.Events[e.ID] = &cp
	return nil
}

func (r EventRepo) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Events[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r EventRepo) ListInRange(_ context.Context, from, to time.Time) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.Events {
		if !e.Start.Before(from) && e.Start.Before(to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

type BuildingDayRepo struct{ *Store }

func (r BuildingDayRepo) Create(_ context.Context, d *models.BuildingDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.id()
	r.BuildingDays[d.ID] = cloneDay(d)
	return nil
}

func (r BuildingDayRepo) GetByID(_ context.Context, id int64) (*models.BuildingDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.BuildingDays[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneDay(d), nil
}

func (r BuildingDayRepo) ListInRange(_ context.Context, from, to time.Time) ([]*models.BuildingDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BuildingDay
	for _, d := range r.BuildingDays {
		if !d.Start.Before(from) && d.Start.Before(to) {
			out = append(out, cloneDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r BuildingDayRepo) AddResponsible(_ context.Context, dayID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.BuildingDays[dayID]
	if !ok {
		return apperr.ErrNotFound
	}
	if !d.UserIsResponsible(userID) {
		d.ResponsibleIDs = append(d.ResponsibleIDs, userID)
	}
	return nil
}

func (r BuildingDayRepo) AddUser(_ context.Context, dayID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.BuildingDays[dayID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	return d.SubscribeUser(userID), nil
}

func (r BuildingDayRepo) RemoveUser(_ context.Context, dayID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.BuildingDays[dayID]
	if !ok {
		return false, nil
	}
	return d.UnsubscribeUser(userID) == nil, nil
}

// News

type NewsRepo struct{ *Store }

func (r NewsRepo) CreateItem(_ context.Context, item *models.NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.id()
	if item.PublicationDate.IsZero() {
		item.PublicationDate = time.Now()
	}
	cp := *item
	r.NewsItems[item.ID] = &cp
	return nil
}

func (r NewsRepo) GetItem(_ context.Context, id int64) (*models.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.NewsItems[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r NewsRepo) ListItems(_ context.Context, limit int) ([]*models.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.NewsItem
	for _, item := range r.NewsItems {
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublicationDate.After(out[j].PublicationDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r NewsRepo) PutBulletin(_ context.Context, b *models.NewsBulletin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.Bulletins[b.Level]; ok {
		b.ID = old.ID
	} else {
		b.ID = r.id()
	}
	cp := *b
	cp.NewsItem = nil
	r.Bulletins[b.Level] = &cp
	return nil
}

func (r NewsRepo) ListBulletins(_ context.Context) ([]*models.NewsBulletin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.NewsBulletin
	for _, level := range models.BulletinLevels {
		b, ok := r.Bulletins[level]
		if !ok {
			continue
		}
		cp := *b
		if item, ok := r.NewsItems[b.NewsItemID]; ok {
			itemCopy := *item
			cp.NewsItem = &itemCopy
		}
		out = append(out, &cp)
	}
	return out, nil
}

// Albums

type AlbumRepo struct{ *Store }

func (r AlbumRepo) Create(_ context.Context, a *models.Album) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	cp := *a
	cp.Images = nil
	r.Albums[a.ID] = &cp
	return nil
}

func (r AlbumRepo) withImages(a *models.Album) *models.Album {
	cp := *a
	cp.Images = nil
	var ids []int64
	for id, img := range r.Images {
		if img.AlbumID == a.ID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		img := *r.Images[id]
		cp.Images = append(cp.Images, &img)
	}
	return &cp
}

func (r AlbumRepo) GetByID(_ context.Context, id int64) (*models.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Albums[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return r.withImages(a), nil
}

func (r AlbumRepo) List(_ context.Context) ([]*models.Album, error) {
	return r.filter(func(*models.Album) bool { return true }), nil
}

func (r AlbumRepo) ListFavourites(_ context.Context) ([]*models.Album, error) {
	return r.filter(func(a *models.Album) bool { return a.IsFavourite }), nil
}

func (r AlbumRepo) filter(keep func(*models.Album) bool) []*models.Album {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Album
	for _, a := range r.Albums {
		if keep(a) {
			out = append(out, r.withImages(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r AlbumRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Albums[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.Albums, id)
	for imgID, img := range r.Images {
		if img.AlbumID == id {
			delete(r.Images, imgID)
		}
	}
	return nil
}

func (r AlbumRepo) SetFavourite(_ context.Context, id int64, favourite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Albums[id]
	if !ok {
		return apperr.ErrNotFound
	}
	a.IsFavourite = favourite
	return nil
}

func (r AlbumRepo) SetCover(_ context.Context, albumID, imageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Albums[albumID]
	img, imgOK := r.Images[imageID]
	if !ok || !imgOK || img.AlbumID != albumID {
		return apperr.ErrNotFound
	}
	a.CoverImageID = &imageID
	return nil
}

func (r AlbumRepo) AddImage(_ context.Context, img *models.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img.ID = r.id()
	cp := *img
	r.Images[img.ID] = &cp
	return nil
}

func (r AlbumRepo) GetImage(_ context.Context, id int64) (*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.Images[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *img
	return &cp, nil
}

func (r AlbumRepo) DeleteImage(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Images[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.Images, id)
	for _, a := range r.Albums {
		if a.CoverImageID != nil && *a.CoverImageID == id {
			a.CoverImageID = nil
		}
	}
	return nil
}

var (
	_ repository.UserRepository        = UserRepo{}
	_ repository.CourseRepository      = CourseRepo{}
	_ repository.SessionRepository     = SessionRepo{}
	_ repository.EventRepository       = EventRepo{}
	_ repository.BuildingDayRepository = BuildingDayRepo{}
	_ repository.NewsRepository        = NewsRepo{}
	_ repository.AlbumRepository       = AlbumRepo{}
)
