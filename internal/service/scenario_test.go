package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	db       *database.DB
	now      time.Time
	users    *UserService
	items    *ItemService
	bookings *BookingService
	comments *CommentService

	owner, booker, stranger *models.User
	item                    *models.Item
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	db, err := database.NewDB(":memory:", nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &scenario{db: db, now: testNow}
	clock := func() time.Time { return s.now }
	s.users = NewUserService(db, nopLogger())
	s.items = NewItemService(db, clock, nopLogger())
	s.bookings = NewBookingService(db, nil, clock, nopLogger())
	s.comments = NewCommentService(db, nil, clock, nopLogger())

	ctx := context.Background()
	s.owner, err = s.users.Create(ctx, &models.User{Name: "Owner", Email: "owner@example.com"})
	require.NoError(t, err)
	s.booker, err = s.users.Create(ctx, &models.User{Name: "Booker", Email: "booker@example.com"})
	require.NoError(t, err)
	s.stranger, err = s.users.Create(ctx, &models.User{Name: "Stranger", Email: "stranger@example.com"})
	require.NoError(t, err)
	s.item, err = s.items.Create(ctx, s.owner.ID, &models.Item{Name: "Drill", Description: "Cordless drill", Available: true})
	require.NoError(t, err)
	return s
}

func TestScenario_ApproveOnce(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	b, err := s.bookings.Create(ctx, s.booker.ID, s.item.ID, s.now.Add(time.Hour), s.now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, b.Status)
	assert.Equal(t, "Drill", b.ItemName)

	waiting, err := s.bookings.ListByOwner(ctx, s.owner.ID, models.StateWaiting)
	require.NoError(t, err)
	require.Len(t, waiting, 1)

	approved, err := s.bookings.ChangeStatus(ctx, b.ID, s.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	_, err = s.bookings.ChangeStatus(ctx, b.ID, s.owner.ID, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	waiting, err = s.bookings.ListByOwner(ctx, s.owner.ID, models.StateWaiting)
	require.NoError(t, err)
	assert.Empty(t, waiting)

	future, err := s.bookings.ListByBooker(ctx, s.booker.ID, models.StateFuture)
	require.NoError(t, err)
	assert.Len(t, future, 1)
}

func TestScenario_Visibility(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	b, err := s.bookings.Create(ctx, s.booker.ID, s.item.ID, s.now.Add(time.Hour), s.now.Add(2*time.Hour))
	require.NoError(t, err)

	asBooker, err := s.bookings.GetByID(ctx, b.ID, s.booker.ID)
	require.NoError(t, err)
	asOwner, err := s.bookings.GetByID(ctx, b.ID, s.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, asBooker, asOwner)
	assert.True(t, asBooker.Start.Equal(b.Start))

	_, err = s.bookings.GetByID(ctx, b.ID, s.stranger.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.bookings.ChangeStatus(ctx, b.ID, s.booker.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScenario_ConcurrentDecisions(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	b, err := s.bookings.Create(ctx, s.booker.ID, s.item.ID, s.now.Add(time.Hour), s.now.Add(2*time.Hour))
	require.NoError(t, err)

	var wins, rejects int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			_, err := s.bookings.ChangeStatus(ctx, b.ID, s.owner.ID, approve)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case domain.Kind(err) == domain.ErrValidation:
				atomic.AddInt32(&rejects, 1)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(7), rejects)
}

func TestScenario_ConcurrentItemPatches(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			patch := models.ItemPatch{Name: strPtr("Hammer drill")}
			if i%2 == 1 {
				patch = models.ItemPatch{Available: boolPtr(false)}
			}
			_, err := s.items.Update(ctx, s.owner.ID, s.item.ID, patch)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.db.GetItemByID(ctx, s.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer drill", stored.Name)
	assert.Equal(t, "Cordless drill", stored.Description)
	assert.False(t, stored.Available)

	_, err = s.items.Update(ctx, s.stranger.ID, s.item.ID, models.ItemPatch{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScenario_CommentAfterCompletedBooking(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	b, err := s.bookings.Create(ctx, s.booker.ID, s.item.ID, s.now.Add(time.Hour), s.now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = s.comments.SaveComment(ctx, "Nice", s.item.ID, s.booker.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.bookings.ChangeStatus(ctx, b.ID, s.owner.ID, true)
	require.NoError(t, err)

	s.now = s.now.Add(3 * time.Hour)
	c, err := s.comments.SaveComment(ctx, "Nice", s.item.ID, s.booker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Booker", c.AuthorName)

	view, err := s.items.GetByID(ctx, s.item.ID, s.owner.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	require.NotNil(t, view.LastBooking)
	assert.Equal(t, b.ID, view.LastBooking.ID)
	assert.Nil(t, view.NextBooking)

	other, err := s.items.GetByID(ctx, s.item.ID, s.booker.ID)
	require.NoError(t, err)
	assert.Nil(t, other.LastBooking)
	assert.Len(t, other.Comments, 1)
}
