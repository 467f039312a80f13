package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisQuotaRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisQuotaRepository(client)
	ctx := context.Background()

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(789)
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third request exceeds the limit
		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.True(t, s.TTL(quotaKey(userID)) > 0)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("UsersAreIndependent", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, 1, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		allowed, err = repo.CheckRateLimit(ctx, 2, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("RepairsMissingWindow", func(t *testing.T) {
		require.NoError(t, s.Set(quotaKey(55), "3"))
		_, err := repo.CheckRateLimit(ctx, 55, 10, time.Minute)
		require.NoError(t, err)
		assert.True(t, s.TTL(quotaKey(55)) > 0)
	})

	t.Run("NilClient", func(t *testing.T) {
		_, err := NewRedisQuotaRepository(nil).CheckRateLimit(ctx, 1, 1, time.Second)
		assert.ErrorContains(t, err, "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("LOADING")
		defer s.SetError("")
		_, err := repo.CheckRateLimit(ctx, 1, 1, time.Second)
		assert.Error(t, err)
	})
}
