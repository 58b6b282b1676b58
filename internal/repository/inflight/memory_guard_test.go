package inflight

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
)

func TestMemoryGuardAcquireRelease(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()
	sessionID := uuid.New()

	ok, err := g.Acquire(ctx, sessionID, entity.StepThesis)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("first acquire should win")
	}

	ok, err = g.Acquire(ctx, sessionID, entity.StepThesis)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second acquire on held slot should lose")
	}

	if err := g.Release(ctx, sessionID, entity.StepThesis); err != nil {
		t.Fatalf("release: %v", err)
	}

	ok, _ = g.Acquire(ctx, sessionID, entity.StepThesis)
	if !ok {
		t.Fatal("acquire after release should win")
	}
}

func TestMemoryGuardIsolatesSlots(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()
	sessionID := uuid.New()

	if ok, _ := g.Acquire(ctx, sessionID, entity.StepThesis); !ok {
		t.Fatal("thesis acquire should win")
	}
	if ok, _ := g.Acquire(ctx, sessionID, entity.StepSearch); !ok {
		t.Fatal("different step on same session should not be blocked")
	}
	if ok, _ := g.Acquire(ctx, uuid.New(), entity.StepThesis); !ok {
		t.Fatal("same step on different session should not be blocked")
	}
}

func TestMemoryGuardConcurrentAcquire(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()
	sessionID := uuid.New()

	const racers = 16
	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := g.Acquire(ctx, sessionID, entity.StepSearch)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
