package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
)

func systemClock() time.Time { return time.Now() }

func clockOrDefault(c domain.Clock) domain.Clock {
	if c == nil {
		return systemClock
	}
	return c
}

func getUser(ctx context.Context, repo domain.UserRepository, userID int64) (*models.User, error) {
	user, err := repo.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFoundf("user %d not found", userID)
	}
	return user, err
}

func getItem(ctx context.Context, repo domain.ItemRepository, itemID int64) (*models.Item, error) {
	item, err := repo.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFoundf("item %d not found", itemID)
	}
	return item, err
}

func getBooking(ctx context.Context, repo domain.BookingRepository, bookingID int64) (*models.Booking, error) {
	booking, err := repo.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFoundf("booking %d not found", bookingID)
	}
	return booking, err
}

func itemIDs(items []*models.Item) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
