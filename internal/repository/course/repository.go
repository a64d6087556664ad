package course

import (
	"context"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectCourses = `
	SELECT c.*,
		ARRAY(SELECT t.user_id FROM opengym.course_teachers t
			WHERE t.course_id = c.id ORDER BY t.user_id) AS teacher_ids,
		ARRAY(SELECT s.user_id FROM opengym.course_students s
			WHERE s.course_id = c.id ORDER BY s.subscribed_at, s.user_id) AS student_ids
	FROM opengym.courses c
`

type courseRow struct {
	models.Course
	TeacherIDs pq.Int64Array `db:"teacher_ids"`
	StudentIDs pq.Int64Array `db:"student_ids"`
}

func (r courseRow) toModel() *models.Course {
	c := r.Course
	c.TeacherIDs = []int64(r.TeacherIDs)
	c.StudentIDs = []int64(r.StudentIDs)
	return &c
}

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) repository.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO opengym.courses
		(course_name, course_level, build_up_sessions, description, max_students_course, max_students_session,
		 location_short, location_street, location_number, location_city, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query,
		course.Name,
		course.Level,
		course.BuildUpSessions,
		course.Description,
		course.MaxStudentsCourse,
		course.MaxStudentsSession,
		course.Location.Short,
		course.Location.Street,
		course.Location.Number,
		course.Location.City,
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE opengym.courses SET
			course_name = $1, course_level = $2, build_up_sessions = $3, description = $4,
			max_students_course = $5, max_students_session = $6,
			location_short = $7, location_street = $8, location_number = $9, location_city = $10,
			is_active = $11, updated_at = CURRENT_TIMESTAMP
		WHERE id = $12
		RETURNING updated_at
	`
	err := repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query,
		course.Name,
		course.Level,
		course.BuildUpSessions,
		course.Description,
		course.MaxStudentsCourse,
		course.MaxStudentsSession,
		course.Location.Short,
		course.Location.Street,
		course.Location.Number,
		course.Location.City,
		course.IsActive,
		course.ID,
	).Scan(&course.UpdatedAt)
	return repository.NotFound(err, "course")
}

// Delete relies on ON DELETE CASCADE for sessions and memberships.
func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM opengym.courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	var row courseRow
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &row, selectCourses+` WHERE c.id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "course")
	}
	return row.toModel(), nil
}

// GetForUpdate takes the row lock in its own statement so the member lists
// are read with a snapshot taken after the lock is granted.
func (r *courseRepository) GetForUpdate(ctx context.Context, id int64) (*models.Course, error) {
	var locked int64
	err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &locked,
		`SELECT id FROM opengym.courses WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, repository.NotFound(err, "course")
	}
	return r.GetByID(ctx, id)
}

func (r *courseRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.selectMany(ctx, selectCourses+` WHERE c.id = ANY($1) ORDER BY c.course_name`, pq.Array(ids))
}

func (r *courseRepository) List(ctx context.Context, activeOnly bool) ([]*models.Course, error) {
	query := selectCourses
	if activeOnly {
		query += ` WHERE c.is_active`
	}
	return r.selectMany(ctx, query+` ORDER BY c.course_level, c.course_name`)
}

func (r *courseRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Course, error) {
	query := selectCourses + `
		WHERE EXISTS (SELECT 1 FROM opengym.course_teachers t WHERE t.course_id = c.id AND t.user_id = $1)
		   OR EXISTS (SELECT 1 FROM opengym.course_students s WHERE s.course_id = c.id AND s.user_id = $1)
		ORDER BY c.course_name
	`
	return r.selectMany(ctx, query, userID)
}

func (r *courseRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Course, error) {
	var rows []courseRow
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}
	courses := make([]*models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

func (r *courseRepository) AddTeacher(ctx context.Context, courseID, userID int64) error {
	query := `
		INSERT INTO opengym.course_teachers (course_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, courseID, userID)
	return err
}

func (r *courseRepository) AddStudent(ctx context.Context, courseID, userID int64) error {
	query := `INSERT INTO opengym.course_students (course_id, user_id) VALUES ($1, $2)`
	_, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, courseID, userID)
	return err
}

func (r *courseRepository) RemoveStudent(ctx context.Context, courseID, userID int64) error {
	query := `DELETE FROM opengym.course_students WHERE course_id = $1 AND user_id = $2`
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, courseID, userID)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}
