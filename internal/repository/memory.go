package repository

import (
	"context"
	"sync"
	"time"
)

type quotaEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryQuotaRepository is the process-local quota counter.
type MemoryQuotaRepository struct {
	mu      sync.Mutex
	entries map[int64]*quotaEntry
	now     func() time.Time
}

func NewMemoryQuotaRepository() *MemoryQuotaRepository {
	return &MemoryQuotaRepository{
		entries: make(map[int64]*quotaEntry),
		now:     time.Now,
	}
}

func (r *MemoryQuotaRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.entries[userID]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &quotaEntry{expiresAt: now.Add(window)}
		r.entries[userID] = entry
	}
	entry.count++

	if len(r.entries) > 1024 {
		r.pruneLocked(now)
	}
	return entry.count <= limit, nil
}

func (r *MemoryQuotaRepository) pruneLocked(now time.Time) {
	for id, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, id)
		}
	}
}
