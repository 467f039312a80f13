package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo       domain.Repository
	aggregator *AvailabilityAggregator
	now        domain.Clock
	logger     *zerolog.Logger
}

func NewItemService(repo domain.Repository, clock domain.Clock, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:       repo,
		aggregator: NewAvailabilityAggregator(repo, repo),
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, domain.Validationf("item name must not be blank")
	}
	if strings.TrimSpace(item.Description) == "" {
		return nil, domain.Validationf("item description must not be blank")
	}
	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		_, err := s.repo.GetItemRequest(ctx, *item.RequestID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFoundf("item request %d not found", *item.RequestID)
		}
		if err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	return item, nil
}

func (s *ItemService) ownedItem(ctx context.Context, ownerID, itemID int64) (*models.Item, error) {
	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", ownerID).Msg("Item access by non-owner")
		return nil, domain.NotFoundf("user %d has no item %d", ownerID, itemID)
	}
	return item, nil
}

// Update applies the non-nil fields of patch atomically with the ownership check.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Validationf("item name must not be blank")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, domain.Validationf("item description must not be blank")
	}

	item, err := s.repo.PatchItem(ctx, ownerID, itemID, patch)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, domain.NotFoundf("item %d not found", itemID)
	case errors.Is(err, database.ErrNotOwner):
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", ownerID).Msg("Item access by non-owner")
		return nil, domain.NotFoundf("user %d has no item %d", ownerID, itemID)
	case err != nil:
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.ownedItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", itemID).Int64("owner_id", ownerID).Msg("Item deleted")
	return nil
}

// GetByID returns the item with its comments. Only the owner sees last/next bookings.
func (s *ItemService) GetByID(ctx context.Context, itemID, userID int64) (*models.ItemView, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	views, err := s.aggregator.Views(ctx, []*models.Item{item}, s.now(), item.OwnerID == userID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Views(ctx, items, s.now(), true)
}

func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchAvailableItems(ctx, text)
}
