package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// AvailabilityAggregator attaches last/next bookings and comments to an item set
// with one booking query and one comment query regardless of the set size.
type AvailabilityAggregator struct {
	bookings domain.BookingRepository
	comments domain.CommentRepository
}

func NewAvailabilityAggregator(bookings domain.BookingRepository, comments domain.CommentRepository) *AvailabilityAggregator {
	return &AvailabilityAggregator{bookings: bookings, comments: comments}
}

// Views builds one view per item, in input order. Booking slots are filled only when withBookings is set.
func (a *AvailabilityAggregator) Views(ctx context.Context, items []*models.Item, now time.Time, withBookings bool) ([]*models.ItemView, error) {
	views := make([]*models.ItemView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}
	ids := itemIDs(items)

	comments, err := a.comments.GetCommentsForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]*models.Comment, len(items))
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	var slots map[int64]*BookingSlots
	if withBookings {
		bookings, err := a.bookings.GetActiveBookingsForItems(ctx, ids)
		if err != nil {
			return nil, err
		}
		slots = LastNext(bookings, now)
	}

	for _, item := range items {
		view := &models.ItemView{Item: *item, Comments: commentsByItem[item.ID]}
		if view.Comments == nil {
			view.Comments = []*models.Comment{}
		}
		if slot, ok := slots[item.ID]; ok {
			view.LastBooking = slot.Last
			view.NextBooking = slot.Next
		}
		views = append(views, view)
	}
	return views, nil
}

// BookingSlots holds the last and next booking of one item.
type BookingSlots struct {
	Last *models.Booking
	Next *models.Booking
}

// LastNext groups bookings by item in a single pass. Last is the greatest start
// strictly before now, Next the smallest start at or after now. REJECTED bookings
// never occupy a slot.
func LastNext(bookings []*models.Booking, now time.Time) map[int64]*BookingSlots {
	out := make(map[int64]*BookingSlots)
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		slot := out[b.ItemID]
		if slot == nil {
			slot = &BookingSlots{}
			out[b.ItemID] = slot
		}
		if b.Start.Before(now) {
			if slot.Last == nil || b.Start.After(slot.Last.Start) {
				slot.Last = b
			}
			continue
		}
		if slot.Next == nil || b.Start.Before(slot.Next.Start) {
			slot.Next = b
		}
	}
	return out
}
