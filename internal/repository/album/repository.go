package album

import (
	"context"

	"opengym/internal/models"
	"opengym/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type albumRepository struct {
	db *sqlx.DB
}

func NewAlbumRepository(db *sqlx.DB) repository.AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO opengym.albums (folder, title, description, is_favourite)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, album.Folder, album.Title, album.Description, album.IsFavourite,
	).Scan(&album.ID, &album.CreatedAt)
}

func (r *albumRepository) GetByID(ctx context.Context, id int64) (*models.Album, error) {
	var album models.Album
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &album, `SELECT * FROM opengym.albums WHERE id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "album")
	}
	albums := []*models.Album{&album}
	if err := r.attachImages(ctx, albums); err != nil {
		return nil, err
	}
	return &album, nil
}

func (r *albumRepository) List(ctx context.Context) ([]*models.Album, error) {
	return r.selectMany(ctx, `SELECT * FROM opengym.albums ORDER BY created_at DESC`)
}

func (r *albumRepository) ListFavourites(ctx context.Context) ([]*models.Album, error) {
	return r.selectMany(ctx, `SELECT * FROM opengym.albums WHERE is_favourite ORDER BY created_at DESC`)
}

func (r *albumRepository) selectMany(ctx context.Context, query string) ([]*models.Album, error) {
	var albums []*models.Album
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &albums, query); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *albumRepository) attachImages(ctx context.Context, albums []*models.Album) error {
	if len(albums) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(albums))
	byID := make(map[int64]*models.Album, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}
	var images []*models.Image
	query := `SELECT * FROM opengym.images WHERE album_id = ANY($1) ORDER BY id ASC`
	if err := sqlx.SelectContext(ctx, repository.Ext(ctx, r.db), &images, query, pq.Array(ids)); err != nil {
		return err
	}
	for _, img := range images {
		a := byID[img.AlbumID]
		a.Images = append(a.Images, img)
	}
	return nil
}

func (r *albumRepository) Delete(ctx context.Context, id int64) error {
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM opengym.albums WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}

func (r *albumRepository) SetFavourite(ctx context.Context, id int64, favourite bool) error {
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx,
		`UPDATE opengym.albums SET is_favourite = $1 WHERE id = $2`, favourite, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}

// SetCover only accepts an image of the same album.
func (r *albumRepository) SetCover(ctx context.Context, albumID, imageID int64) error {
	query := `
		UPDATE opengym.albums SET cover_image_id = $1
		WHERE id = $2 AND EXISTS (SELECT 1 FROM opengym.images WHERE id = $1 AND album_id = $2)
	`
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, query, imageID, albumID)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}

func (r *albumRepository) AddImage(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO opengym.images (album_id, public_id, image_url, thumb_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return repository.Ext(ctx, r.db).QueryRowxContext(ctx,
		query, image.AlbumID, image.PublicID, image.ImageURL, image.ThumbURL,
	).Scan(&image.ID)
}

func (r *albumRepository) GetImage(ctx context.Context, id int64) (*models.Image, error) {
	var image models.Image
	if err := sqlx.GetContext(ctx, repository.Ext(ctx, r.db), &image, `SELECT * FROM opengym.images WHERE id = $1`, id); err != nil {
		return nil, repository.NotFound(err, "image")
	}
	return &image, nil
}

func (r *albumRepository) DeleteImage(ctx context.Context, id int64) error {
	res, err := repository.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM opengym.images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return repository.ExpectOne(res)
}
