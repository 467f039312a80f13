package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRecoverAfter = time.Minute

// FailoverQuotaRepository uses primary until it errors, then serves from
// fallback and probes primary again once recoverAfter has passed.
type FailoverQuotaRepository struct {
	primary      domain.RateLimitRepository
	fallback     domain.RateLimitRepository
	logger       *zerolog.Logger
	recoverAfter time.Duration

	mu       sync.Mutex
	down     bool
	downedAt time.Time
	now      func() time.Time
}

func NewFailoverQuotaRepository(primary, fallback domain.RateLimitRepository, logger *zerolog.Logger) *FailoverQuotaRepository {
	return &FailoverQuotaRepository{
		primary:      primary,
		fallback:     fallback,
		logger:       logger,
		recoverAfter: defaultRecoverAfter,
		now:          time.Now,
	}
}

func (r *FailoverQuotaRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.down || r.now().Sub(r.downedAt) >= r.recoverAfter
}

func (r *FailoverQuotaRepository) markDown(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.down {
		r.logger.Error().Err(err).Msg("Primary quota store failed, falling back to memory")
	}
	r.down = true
	r.downedAt = r.now()
}

func (r *FailoverQuotaRepository) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		r.logger.Info().Msg("Primary quota store recovered")
	}
	r.down = false
}

func (r *FailoverQuotaRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
