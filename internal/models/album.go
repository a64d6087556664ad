package models

import "time"

// Album groups images hosted on the external image service. Folder is the
// remote folder holding the album's images.
type Album struct {
	ID           int64     `db:"id" json:"id"`
	Folder       string    `db:"folder" json:"folder"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	IsFavourite  bool      `db:"is_favourite" json:"is_favourite"`
	CoverImageID *int64    `db:"cover_image_id" json:"cover_image_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Images []*Image `db:"-" json:"images,omitempty"`
}

func (a *Album) Cover() *Image {
	for _, img := range a.Images {
		if a.CoverImageID != nil && img.ID == *a.CoverImageID {
			return img
		}
	}
	if len(a.Images) > 0 {
		return a.Images[0]
	}
	return nil
}

type Image struct {
	ID       int64  `db:"id" json:"id"`
	AlbumID  int64  `db:"album_id" json:"album_id"`
	PublicID string `db:"public_id" json:"public_id"`
	ImageURL string `db:"image_url" json:"image_url"`
	ThumbURL string `db:"thumb_url" json:"thumb_url"`
}
