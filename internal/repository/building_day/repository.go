package building_day

import (
	"context"
	"database/sql"
	"time"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectDays = `
	SELECT b.*,
		ARRAY(SELECT r.user_id FROM opengym.building_day_responsibles r
			WHERE r.building_day_id = b.id ORDER BY r.user_id) AS responsible_ids,
		ARRAY(SELECT u.user_id FROM opengym.building_day_users u
			WHERE u.building_day_id = b.id ORDER BY u.user_id) AS subscribed_ids
	FROM opengym.building_days b
`

type dayRow struct {
	models.BuildingDay
	ResponsibleIDs pq.Int64Array `db:"responsible_ids"`
	SubscribedIDs  pq.Int64Array `db:"subscribed_ids"`
}

func (r dayRow) toModel() *models.BuildingDay {
	d := r.BuildingDay
	d.ResponsibleIDs = []int64(r.ResponsibleIDs)
	d.SubscribedIDs = []int64(r.SubscribedIDs)
	return &d
}

type buildingDayRepository struct {
	db *sqlx.DB
}

func NewBuildingDayRepository(db *sqlx.DB) repository.BuildingDayRepository {
	return &buildingDayRepository{db: db}
}

func (r *buildingDayRepository) Create(ctx context.Context, day *models.BuildingDay) error {
	query := `
		INSERT INTO opengym.building_days (description, start_at, duration_seconds)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, day.Description, day.Start, day.Duration,
	).Scan(&day.ID, &day.CreatedAt)
}

func (r *buildingDayRepository) GetByID(ctx context.Context, id int64) (*models.BuildingDay, error) {
	var row dayRow
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &row, selectDays+` WHERE b.id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "building day")
	}
	return row.toModel(), nil
}

func (r *buildingDayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*models.BuildingDay, error) {
	var rows []dayRow
	query := selectDays + `
		WHERE b.start_at >= $1 AND b.start_at < $2
		ORDER BY b.start_at ASC
	`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &rows, query, from, to); err != nil {
		return nil, err
	}
	days := make([]*models.BuildingDay, 0, len(rows))
	for _, row := range rows {
		days = append(days, row.toModel())
	}
	return days, nil
}

func (r *buildingDayRepository) AddResponsible(ctx context.Context, dayID, userID int64) error {
	query := `
		INSERT INTO opengym.building_day_responsibles (building_day_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, dayID, userID)
	return err
}

func (r *buildingDayRepository) AddUser(ctx context.Context, dayID, userID int64) (bool, error) {
	query := `
		INSERT INTO opengym.building_day_users (building_day_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	return affected(repository.Ext(ctx, r.db).ExecContext(ctx, query, dayID, userID))
}

func (r *buildingDayRepository) RemoveUser(ctx context.Context, dayID, userID int64) (bool, error) {
	query := `DELETE FROM opengym.building_day_users WHERE building_day_id = $1 AND user_id = $2`
	return affected(repository.Ext(ctx, r.db).ExecContext(ctx, query, dayID, userID))
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
