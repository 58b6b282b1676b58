package inflight

import (
	"context"
	"time"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryGuard keeps in-flight slots in process memory. Entries expire on
// their own so a crashed handler cannot wedge a pair forever.
type MemoryGuard struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := cache.New(ttl, 10*time.Minute)
	return &MemoryGuard{
		cache: c,
		ttl:   ttl,
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, sessionID uuid.UUID, step entity.StepType) (bool, error) {
	// Add is atomic: it fails when the key already exists.
	err := g.cache.Add(slotKey(sessionID, step), struct{}{}, g.ttl)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, sessionID uuid.UUID, step entity.StepType) error {
	g.cache.Delete(slotKey(sessionID, step))
	return nil
}
