package service

import (
	"sort"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// ParseBookingState maps a query value onto a state; empty means ALL.
// Names are matched exactly, so "waiting" is rejected.
func ParseBookingState(raw string) (models.BookingState, error) {
	if raw == "" {
		return models.StateAll, nil
	}
	for _, s := range models.BookingStates {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", domain.Validationf("Unknown state: %s", raw)
}

// Matches reports whether b falls into state at instant now.
func Matches(b *models.Booking, state models.BookingState, now time.Time) bool {
	switch state {
	case models.StateAll:
		return true
	case models.StateCurrent:
		return b.Start.Before(now) && b.End.After(now)
	case models.StatePast:
		return b.End.Before(now)
	case models.StateFuture:
		return b.Start.After(now)
	case models.StateWaiting:
		return b.Status == models.StatusWaiting
	case models.StateRejected:
		return b.Status == models.StatusRejected
	default:
		return false
	}
}

// FilterBookings keeps the bookings matching state, newest start first, ties by id.
func FilterBookings(bookings []*models.Booking, state models.BookingState, now time.Time) []*models.Booking {
	out := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if Matches(b, state, now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
