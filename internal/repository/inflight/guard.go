package inflight

import (
	"context"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
)

// ExecutionGuard tracks which (session, step) pairs currently have a
// generation in progress. Acquire must be atomic: when two requests race
// for the same pair, exactly one wins.
type ExecutionGuard interface {
	// Acquire marks the pair as running. It returns false when another
	// execution already holds the slot.
	Acquire(ctx context.Context, sessionID uuid.UUID, step entity.StepType) (bool, error)
	// Release frees the slot so the pair can be executed again.
	Release(ctx context.Context, sessionID uuid.UUID, step entity.StepType) error
}

func slotKey(sessionID uuid.UUID, step entity.StepType) string {
	return "inflight:" + sessionID.String() + ":" + string(step)
}
