package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	now      domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		now:      clockOrDefault(clock),
		logger:   logger,
	}
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.Validationf("booking start and end are required")
	}
	if !end.After(start) {
		return domain.Validationf("booking end must be after start")
	}
	return nil
}

// Create books itemID for bookerID in WAITING status. Past and overlapping windows are accepted.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if _, err := getUser(ctx, s.repo, bookerID); err != nil {
		return nil, err
	}
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		s.logger.Warn().Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("Booking rejected: item unavailable")
		return nil, domain.Validationf("item %d is not available", itemID)
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Start:    start,
		End:      end,
		ItemID:   item.ID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// ChangeStatus moves a WAITING booking to APPROVED or REJECTED on behalf of the item owner.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID, actingUserID int64, approve bool) (*models.Booking, error) {
	booking, err := getBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByID(ctx, actingUserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.Validationf("user %d is not registered", actingUserID)
		}
		return nil, err
	}

	if booking.OwnerID != actingUserID {
		s.logger.Warn().Int64("booking_id", bookingID).Int64("user_id", actingUserID).Msg("Status change by non-owner")
		return nil, domain.NotFoundf("booking %d not found for owner %d", bookingID, actingUserID)
	}

	if booking.Status.Terminal() {
		return nil, domain.Validationf("status already decided")
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approve {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status)
	if errors.Is(err, database.ErrConcurrentModification) {
		s.logger.Warn().Int64("booking_id", bookingID).Msg("Concurrent status change lost")
		return nil, domain.Validationf("status already decided")
	}
	if err != nil {
		return nil, err
	}

	booking.Status = status
	booking.Version++

	s.logger.Info().Int64("booking_id", booking.ID).Str("status", string(status)).Msg("Booking status changed")
	s.publishEvent(eventType, booking, actingUserID)
	return booking, nil
}

// GetByID hides bookings from everyone except the booker and the item owner.
func (s *BookingService) GetByID(ctx context.Context, bookingID, requesterID int64) (*models.Booking, error) {
	if _, err := getUser(ctx, s.repo, requesterID); err != nil {
		return nil, err
	}
	booking, err := getBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != requesterID && booking.OwnerID != requesterID {
		return nil, domain.NotFoundf("booking %d not found", bookingID)
	}
	return booking, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state models.BookingState) ([]*models.Booking, error) {
	state, err := ParseBookingState(string(state))
	if err != nil {
		return nil, err
	}
	if _, err := getUser(ctx, s.repo, bookerID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.GetBookingsByBooker(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	return FilterBookings(bookings, state, s.now()), nil
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState) ([]*models.Booking, error) {
	state, err := ParseBookingState(string(state))
	if err != nil {
		return nil, err
	}
	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.GetBookingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterBookings(bookings, state, s.now()), nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		ItemName:    booking.ItemName,
		OwnerID:     booking.OwnerID,
		BookerID:    booking.BookerID,
		BookerName:  booking.BookerName,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
