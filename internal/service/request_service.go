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

type RequestService struct {
	repo   domain.Repository
	now    domain.Clock
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, now: clockOrDefault(clock), logger: logger}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.Validationf("request description must not be blank")
	}
	if _, err := getUser(ctx, s.repo, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.now(),
	}
	if err := s.repo.CreateItemRequest(ctx, request); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("request_id", request.ID).Int64("user_id", requestorID).Msg("Item request created")
	return request, nil
}

// GetByID returns the request together with the items created in answer to it.
func (s *RequestService) GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequestView, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetItemRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFoundf("item request %d not found", requestID)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &models.ItemRequestView{ItemRequest: *request, Items: items}, nil
}

func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	return s.repo.GetItemRequestsByRequestor(ctx, userID)
}

func (s *RequestService) ListAll(ctx context.Context) ([]*models.ItemRequest, error) {
	return s.repo.GetAllItemRequests(ctx)
}
