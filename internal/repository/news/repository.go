package news

import (
	"context"
	"time"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
)

type newsRepository struct {
	db *sqlx.DB
}

func NewNewsRepository(db *sqlx.DB) repository.NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) CreateItem(ctx context.Context, item *models.NewsItem) error {
	query := `
		INSERT INTO opengym.news_items (title, text, short_text, image_url, publication_date)
		VALUES ($1, $2, $3, $4, COALESCE($5, CURRENT_TIMESTAMP))
		RETURNING id, publication_date
	`
	var published any
	if !item.PublicationDate.IsZero() {
		published = item.PublicationDate
	}
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, item.Title, item.Text, item.ShortText, item.ImageURL, published,
	).Scan(&item.ID, &item.PublicationDate)
}

func (r *newsRepository) GetItem(ctx context.Context, id int64) (*models.NewsItem, error) {
	var item models.NewsItem
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &item, `SELECT * FROM opengym.news_items WHERE id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "news item")
	}
	return &item, nil
}

func (r *newsRepository) ListItems(ctx context.Context, limit int) ([]*models.NewsItem, error) {
	var items []*models.NewsItem
	query := `SELECT * FROM opengym.news_items ORDER BY publication_date DESC LIMIT $1`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &items, query, limit); err != nil {
		return nil, err
	}
	return items, nil
}

// PutBulletin relies on the unique bulletin_level: the previous holder of the
// level is overwritten.
func (r *newsRepository) PutBulletin(ctx context.Context, bulletin *models.NewsBulletin) error {
	query := `
		INSERT INTO opengym.news_bulletins (bulletin_level, news_item_id)
		VALUES ($1, $2)
		ON CONFLICT (bulletin_level) DO UPDATE SET news_item_id = EXCLUDED.news_item_id
		RETURNING id
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, bulletin.Level, bulletin.NewsItemID,
	).Scan(&bulletin.ID)
}

type bulletinRow struct {
	models.NewsBulletin
	Title           string    `db:"title"`
	Text            string    `db:"text"`
	ShortText       *string   `db:"short_text"`
	ImageURL        *string   `db:"image_url"`
	PublicationDate time.Time `db:"publication_date"`
}

func (r *newsRepository) ListBulletins(ctx context.Context) ([]*models.NewsBulletin, error) {
	var rows []bulletinRow
	query := `
		SELECT b.id, b.bulletin_level, b.news_item_id,
			n.title, n.text, n.short_text, n.image_url, n.publication_date
		FROM opengym.news_bulletins b
		JOIN opengym.news_items n ON n.id = b.news_item_id
		ORDER BY b.bulletin_level ASC
	`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &rows, query); err != nil {
		return nil, err
	}
	bulletins := make([]*models.NewsBulletin, 0, len(rows))
	for _, row := range rows {
		b := row.NewsBulletin
		b.NewsItem = &models.NewsItem{
			ID:              row.NewsItemID,
			Title:           row.Title,
			Text:            row.Text,
			ShortText:       row.ShortText,
			ImageURL:        row.ImageURL,
			PublicationDate: row.PublicationDate,
		}
		bulletins = append(bulletins, &b)
	}
	return bulletins, nil
}
