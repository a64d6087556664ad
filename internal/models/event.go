package models

import (
	"slices"
	"time"

	"opengym/internal/apperr"
)

// Event is a one-off calendar entry without subscriptions.
type Event struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"event_name" json:"event_name"`
	Description string    `db:"description" json:"description"`
	Start       time.Time `db:"start_at" json:"start"`
	Duration    Duration  `db:"duration_seconds" json:"duration"`
	Link        *string   `db:"link" json:"link"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (e *Event) StartTime() time.Time { return e.Start }

func (e *Event) End() time.Time { return e.Start.Add(e.Duration.Std()) }

// BuildingDay is a volunteer work day on the building.
type BuildingDay struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Start       time.Time `db:"start_at" json:"start"`
	Duration    Duration  `db:"duration_seconds" json:"duration"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	ResponsibleIDs []int64 `db:"-" json:"responsible_ids"`
	SubscribedIDs  []int64 `db:"-" json:"subscribed_ids"`
}

func (b *BuildingDay) StartTime() time.Time { return b.Start }

func (b *BuildingDay) End() time.Time { return b.Start.Add(b.Duration.Std()) }

func (b *BuildingDay) UserIsResponsible(userID int64) bool {
	return slices.Contains(b.ResponsibleIDs, userID)
}

func (b *BuildingDay) UserIsSubscribed(userID int64) bool {
	return slices.Contains(b.SubscribedIDs, userID)
}

// SubscribeUser reports whether the user was added; subscribing twice is a no-op.
func (b *BuildingDay) SubscribeUser(userID int64) bool {
	if b.UserIsSubscribed(userID) {
		return false
	}
	b.SubscribedIDs = append(b.SubscribedIDs, userID)
	return true
}

func (b *BuildingDay) UnsubscribeUser(userID int64) error {
	i := slices.Index(b.SubscribedIDs, userID)
	if i < 0 {
		return apperr.ErrNotSubscribed
	}
	b.SubscribedIDs = slices.Delete(b.SubscribedIDs, i, i+1)
	return nil
}
