package session

import (
	"context"
	"time"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectSessions = `
	SELECT s.*,
		ARRAY(SELECT su.user_id FROM opengym.session_users su
			WHERE su.session_id = s.id ORDER BY su.subscribed_at, su.user_id) AS subscribed_ids
	FROM opengym.sessions s
`

type sessionRow struct {
	models.Session
	SubscribedIDs pq.Int64Array `db:"subscribed_ids"`
}

func (r sessionRow) toModel() *models.Session {
	s := r.Session
	s.SubscribedIDs = []int64(r.SubscribedIDs)
	return &s
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO opengym.sessions
		(course_id, start_at, duration_seconds, extra_info, location_diff_course, max_students_diff_course,
		 max_students, location_short, location_street, location_number, location_city)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query,
		session.CourseID,
		session.Start,
		session.Duration,
		session.ExtraInfo,
		session.LocationDiffCourse,
		session.MaxStudentsDiffCourse,
		session.MaxStudents,
		session.Location.Short,
		session.Location.Street,
		session.Location.Number,
		session.Location.City,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	query := `
		UPDATE opengym.sessions SET
			start_at = $1, duration_seconds = $2, extra_info = $3,
			location_diff_course = $4, max_students_diff_course = $5, max_students = $6,
			location_short = $7, location_street = $8, location_number = $9, location_city = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $11
		RETURNING updated_at
	`
	err := repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query,
		session.Start,
		session.Duration,
		session.ExtraInfo,
		session.LocationDiffCourse,
		session.MaxStudentsDiffCourse,
		session.MaxStudents,
		session.Location.Short,
		session.Location.Street,
		session.Location.Number,
		session.Location.City,
		session.ID,
	).Scan(&session.UpdatedAt)
	return repository.NotFound(err, "session")
}

func (r *sessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM opengym.sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}

func (r *sessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	var row sessionRow
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &row, selectSessions+` WHERE s.id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "session")
	}
	return row.toModel(), nil
}

// GetForUpdate locks first and reads the subscriptions in a second statement,
// see the course repository.
func (r *sessionRepository) GetForUpdate(ctx context.Context, id int64) (*models.Session, error) {
	var locked int64
	err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &locked,
		`SELECT id FROM opengym.sessions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, repository.NotFound(err, "session")
	}
	return r.GetByID(ctx, id)
}

func (r *sessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Session, error) {
	return r.selectMany(ctx, selectSessions+` WHERE s.course_id = $1 ORDER BY s.start_at ASC`, courseID)
}

func (r *sessionRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	query := selectSessions + `
		JOIN opengym.courses c ON c.id = s.course_id
		WHERE c.is_active AND s.start_at >= $1 AND s.start_at < $2
		ORDER BY s.start_at ASC
	`
	return r.selectMany(ctx, query, from, to)
}

func (r *sessionRepository) NextForCourse(ctx context.Context, courseID int64, after time.Time) (*models.Session, error) {
	var row sessionRow
	query := selectSessions + `
		WHERE s.course_id = $1 AND s.start_at >= $2
		ORDER BY s.start_at ASC
		LIMIT 1
	`
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &row, query, courseID, after); err != nil {
		return nil, repository.NotFound(err, "next session")
	}
	return row.toModel(), nil
}

func (r *sessionRepository) SyncCourseDefaults(ctx context.Context, courseID int64, maxStudents *int) error {
	query := `
		UPDATE opengym.sessions SET max_students = $1, updated_at = CURRENT_TIMESTAMP
		WHERE course_id = $2 AND NOT max_students_diff_course
	`
	_, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, maxStudents, courseID)
	return err
}

func (r *sessionRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}
	sessions := make([]*models.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toModel())
	}
	return sessions, nil
}

func (r *sessionRepository) AddUser(ctx context.Context, sessionID, userID int64) error {
	query := `INSERT INTO opengym.session_users (session_id, user_id) VALUES ($1, $2)`
	_, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, sessionID, userID)
	return err
}

func (r *sessionRepository) RemoveUser(ctx context.Context, sessionID, userID int64) error {
	query := `DELETE FROM opengym.session_users WHERE session_id = $1 AND user_id = $2`
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}
