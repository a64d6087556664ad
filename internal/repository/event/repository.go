package event

import (
	"context"
	"time"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO opengym.events (event_name, description, start_at, duration_seconds, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, event.Name, event.Description, event.Start, event.Duration, event.Link,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	query := `SELECT * FROM opengym.events WHERE id = $1`
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &event, query, id); err != nil {
		return nil, repository.NotFound(err, "event")
	}
	return &event, nil
}

func (r *eventRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	var events []*models.Event
	query := `
		SELECT * FROM opengym.events
		WHERE start_at >= $1 AND start_at < $2
		ORDER BY start_at ASC
	`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &events, query, from, to); err != nil {
		return nil, err
	}
	return events, nil
}
