package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type CommentService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	now      domain.Clock
	logger   *zerolog.Logger
}

func NewCommentService(repo domain.Repository, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *CommentService {
	return &CommentService{
		repo:     repo,
		eventBus: eventBus,
		now:      clockOrDefault(clock),
		logger:   logger,
	}
}

// SaveComment stores text on itemID if authorID finished an approved booking of it.
func (s *CommentService) SaveComment(ctx context.Context, text string, itemID, authorID int64) (*models.Comment, error) {
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	author, err := getUser(ctx, s.repo, authorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.Validationf("comment text must not be blank")
	}

	now := s.now()
	eligible, err := s.hasCompletedBooking(ctx, authorID, item.ID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", authorID).Msg("Comment rejected: no completed booking")
		return nil, domain.Validationf("user %d has no completed booking of item %d", authorID, itemID)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Int64("user_id", authorID).Msg("Comment saved")
	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID:  comment.ID,
			ItemID:     comment.ItemID,
			AuthorID:   comment.AuthorID,
			AuthorName: comment.AuthorName,
			Text:       comment.Text,
			Created:    comment.Created,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func (s *CommentService) hasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	bookings, err := s.repo.GetBookingsByBookerAndItem(ctx, bookerID, itemID)
	if err != nil {
		return false, err
	}
	for _, b := range bookings {
		if b.CompletedBy(now) {
			return true, nil
		}
	}
	return false, nil
}
