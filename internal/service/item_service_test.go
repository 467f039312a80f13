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

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func TestItemService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil).Once()

		item, err := svc.Create(ctx, 1, &models.Item{Name: "Drill", Description: "Cordless", Available: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.OwnerID)
		repo.AssertExpectations(t)
	})

	t.Run("blank fields", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())

		_, err := svc.Create(ctx, 1, &models.Item{Name: " ", Description: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Create(ctx, 1, &models.Item{Name: "x", Description: ""})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown owner", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(1)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Create(ctx, 1, &models.Item{Name: "x", Description: "y"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown request", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		reqID := int64(42)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("GetItemRequest", ctx, reqID).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Create(ctx, 1, &models.Item{Name: "x", Description: "y", RequestID: &reqID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})
}

func TestItemService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		patch := models.ItemPatch{Available: boolPtr(false)}
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("PatchItem", ctx, int64(1), int64(10), patch).
			Return(&models.Item{ID: 10, OwnerID: 1, Name: "Drill", Description: "Old", Available: false}, nil).Once()

		item, err := svc.Update(ctx, 1, 10, patch)
		require.NoError(t, err)
		assert.Equal(t, "Drill", item.Name)
		assert.Equal(t, "Old", item.Description)
		assert.False(t, item.Available)
		repo.AssertExpectations(t)
	})

	t.Run("non owner", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		patch := models.ItemPatch{Name: strPtr("Mine")}
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("PatchItem", ctx, int64(2), int64(10), patch).Return(nil, database.ErrNotOwner).Once()

		_, err := svc.Update(ctx, 2, 10, patch)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "user 2 has no item 10", domain.Message(err))
	})

	t.Run("item missing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		patch := models.ItemPatch{Name: strPtr("Mine")}
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("PatchItem", ctx, int64(1), int64(10), patch).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Update(ctx, 1, 10, patch)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank fields", func(t *testing.T) {
		for _, patch := range []models.ItemPatch{{Name: strPtr("")}, {Description: strPtr("  ")}} {
			repo := new(MockRepository)
			svc := NewItemService(repo, fixedClock, nopLogger())
			repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()

			_, err := svc.Update(ctx, 1, 10, patch)
			assert.ErrorIs(t, err, domain.ErrValidation)
			repo.AssertNotCalled(t, "PatchItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewItemService(repo, fixedClock, nopLogger())

	repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
	repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil).Once()
	repo.On("DeleteItem", ctx, int64(10)).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, 1, 10))
	repo.AssertExpectations(t)
}

func TestItemService_GetByID(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, OwnerID: 1}
	bookings := []*models.Booking{{ID: 5, ItemID: 10, Start: testNow.AddDate(0, 0, 1), Status: models.StatusApproved}}

	t.Run("owner sees bookings", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		repo.On("GetCommentsForItems", ctx, []int64{10}).Return([]*models.Comment{}, nil).Once()
		repo.On("GetActiveBookingsForItems", ctx, []int64{10}).Return(bookings, nil).Once()

		view, err := svc.GetByID(ctx, 10, 1)
		require.NoError(t, err)
		require.NotNil(t, view.NextBooking)
		assert.Equal(t, int64(5), view.NextBooking.ID)
	})

	t.Run("others do not", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewItemService(repo, fixedClock, nopLogger())
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		repo.On("GetCommentsForItems", ctx, []int64{10}).Return([]*models.Comment{{ID: 1, ItemID: 10}}, nil).Once()

		view, err := svc.GetByID(ctx, 10, 2)
		require.NoError(t, err)
		assert.Nil(t, view.NextBooking)
		assert.Len(t, view.Comments, 1)
	})
}

func TestItemService_Search(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewItemService(repo, fixedClock, nopLogger())

	items, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, items)
	repo.AssertNotCalled(t, "SearchAvailableItems", mock.Anything, mock.Anything)

	repo.On("SearchAvailableItems", ctx, "drill").Return([]*models.Item{{ID: 1}}, nil).Once()
	items, err = svc.Search(ctx, "drill")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
