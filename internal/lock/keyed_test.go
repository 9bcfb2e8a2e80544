package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedSerialisesSameKey(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(ctx, SlotKey("room-1", "2025-06-10"))
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen.Load())
	}
	if k.Len() != 0 {
		t.Fatalf("expected entries to be released, got %d", k.Len())
	}
}

func TestKeyedIndependentKeys(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	first, err := k.Lock(ctx, SlotKey("room-1", "2025-06-10"))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer first()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	second, err := k.Lock(ctx, SlotKey("room-2", "2025-06-10"))
	if err != nil {
		t.Fatalf("expected other key to be free, got %v", err)
	}
	second()
}

func TestKeyedHonoursContext(t *testing.T) {
	k := NewKeyed()
	held, err := k.Lock(context.Background(), "slot")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := k.Lock(ctx, "slot"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	held()
	held()
	if k.Len() != 0 {
		t.Fatalf("expected entries to be released, got %d", k.Len())
	}
}
