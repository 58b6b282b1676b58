package inflight

import (
	"context"
	"time"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisGuard stores in-flight slots in Redis so the guard holds across
// multiple API instances. SetNX gives the same win-or-lose semantics as
// the in-memory variant.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisGuard{
		rdb: rdb,
		ttl: ttl,
	}
}

func (g *RedisGuard) Acquire(ctx context.Context, sessionID uuid.UUID, step entity.StepType) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, slotKey(sessionID, step), "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, sessionID uuid.UUID, step entity.StepType) error {
	return g.rdb.Del(ctx, slotKey(sessionID, step)).Err()
}
