package models

import (
	"strings"
	"time"

	"opengym/internal/apperr"
)

type NewsItem struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Text            string    `db:"text" json:"text"`
	ShortText       *string   `db:"short_text" json:"short_text"`
	ImageURL        *string   `db:"image_url" json:"image_url"`
	PublicationDate time.Time `db:"publication_date" json:"publication_date"`
}

type BulletinLevel int16

const (
	BulletinFirst  BulletinLevel = 1
	BulletinSecond BulletinLevel = 2
	BulletinThird  BulletinLevel = 3
)

var BulletinLevels = []BulletinLevel{BulletinFirst, BulletinSecond, BulletinThird}

func (l BulletinLevel) Valid() bool {
	return l >= BulletinFirst && l <= BulletinThird
}

func (l BulletinLevel) String() string {
	switch l {
	case BulletinFirst:
		return "First"
	case BulletinSecond:
		return "Second"
	case BulletinThird:
		return "Third"
	}
	return "Unknown"
}

// NewsBulletin places a news item in one of the landing page slots. At most
// one bulletin exists per level.
type NewsBulletin struct {
	ID         int64         `db:"id" json:"id"`
	Level      BulletinLevel `db:"bulletin_level" json:"bulletin_level"`
	NewsItemID int64         `db:"news_item_id" json:"news_item_id"`

	NewsItem *NewsItem `db:"-" json:"news_item,omitempty"`
}

func (b *NewsBulletin) Validate() error {
	if !b.Level.Valid() {
		return apperr.Validation("invalid bulletin_level", "bulletin level %d does not exist", b.Level)
	}
	item := b.NewsItem
	if item == nil {
		return apperr.Validation("missing news_item", "a bulletin needs a news item")
	}
	if item.ShortText == nil || strings.TrimSpace(*item.ShortText) == "" {
		return apperr.Validation("invalid short_text",
			"news item : %s needs to have a short_text in order to become a bulletin", item.Title)
	}
	if item.ImageURL == nil || *item.ImageURL == "" {
		return apperr.Validation("missing image",
			"news item : %s needs to have an image in order to become a bulletin", item.Title)
	}
	return nil
}
