package user

import (
	"context"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO opengym.users
		(email, first_name, last_name, birthdate, volunteer, is_teacher, is_staff, is_active, email_confirmed, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, registered_at, updated_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Birthdate,
		user.Volunteer,
		user.IsTeacher,
		user.IsStaff,
		user.IsActive,
		user.EmailConfirmed,
		user.PasswordHash,
	).Scan(&user.ID, &user.RegisteredAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM opengym.users WHERE id = $1`
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &user, query, id); err != nil {
		return nil, repository.NotFound(err, "user")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM opengym.users WHERE lower(email) = lower($1)`
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &user, query, email); err != nil {
		return nil, repository.NotFound(err, "user")
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	query := `SELECT * FROM opengym.users WHERE id = ANY($1) ORDER BY first_name, last_name`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &users, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Activate(ctx context.Context, id int64) error {
	query := `
		UPDATE opengym.users
		SET is_active = TRUE, email_confirmed = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}
