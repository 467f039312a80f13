package models

import "time"

type Item struct {
	ID          int64     `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Available   bool      `yaml:"available" json:"available"`
	OwnerID     int64     `yaml:"owner_id" json:"owner_id"`
	RequestID   *int64    `yaml:"request_id" json:"request_id,omitempty"`
	CreatedAt   time.Time `yaml:"-" json:"created_at"`
	UpdatedAt   time.Time `yaml:"-" json:"updated_at"`
}

// ItemPatch carries the fields of a partial item update; nil leaves the value as is.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// ItemView is an item enriched with its booking neighbours and comments.
type ItemView struct {
	Item
	LastBooking *Booking
	NextBooking *Booking
	Comments    []*Comment
}
