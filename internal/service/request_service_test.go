package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestService(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewRequestService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("CreateItemRequest", ctx, mock.MatchedBy(func(r *models.ItemRequest) bool {
			return r.RequestorID == 1 && r.Created.Equal(testNow)
		})).Return(nil).Once()

		r, err := svc.Create(ctx, 1, "Need a tent")
		require.NoError(t, err)
		assert.Equal(t, "Need a tent", r.Description)
	})

	t.Run("blank description", func(t *testing.T) {
		svc := NewRequestService(new(MockRepository), fixedClock, nopLogger())
		_, err := svc.Create(ctx, 1, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("get with items", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewRequestService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetItemRequest", ctx, int64(5)).Return(&models.ItemRequest{ID: 5, RequestorID: 1}, nil).Once()
		repo.On("GetItemsByRequest", ctx, int64(5)).Return([]*models.Item{{ID: 7}}, nil).Once()

		view, err := svc.GetByID(ctx, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), view.ID)
		assert.Len(t, view.Items, 1)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewRequestService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetItemRequest", ctx, int64(5)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.GetByID(ctx, 5, 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lists", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewRequestService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("GetItemRequestsByRequestor", ctx, int64(1)).Return([]*models.ItemRequest{{ID: 2}, {ID: 1}}, nil).Once()
		repo.On("GetAllItemRequests", ctx).Return([]*models.ItemRequest{{ID: 3}, {ID: 2}, {ID: 1}}, nil).Once()

		own, err := svc.ListOwn(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, own, 2)

		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
