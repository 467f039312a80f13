package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Booking struct {
	ID          int64         `json:"id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	ItemID      int64         `json:"item_id"`
	ItemName    string        `json:"item_name"`
	OwnerID     int64         `json:"owner_id"`
	BookerID    int64         `json:"booker_id"`
	BookerName  string        `json:"booker_name"`
	BookerEmail string        `json:"booker_email"`
	Status      BookingStatus `json:"status"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CompletedBy reports whether the booking is an approved stay that ended before now.
func (b *Booking) CompletedBy(now time.Time) bool {
	return b.Status == StatusApproved && b.End.Before(now)
}
