package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
)

type stubComputer struct {
	mu      sync.Mutex
	calls   int32
	blocked map[uuid.UUID]struct{}
	delay   time.Duration
	err     error
}

func (c *stubComputer) BlockedIDs(ctx context.Context, tc tenancy.Context, w Window, ignoreEventID *uuid.UUID) (map[uuid.UUID]struct{}, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uuid.UUID]struct{}, len(c.blocked))
	for id := range c.blocked {
		out[id] = struct{}{}
	}
	return out, nil
}

type stubSnapshotStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{data: make(map[string]string)}
}

func (s *stubSnapshotStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return val, nil
}

func (s *stubSnapshotStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = fmt.Sprint(value)
	return nil
}

func (s *stubSnapshotStore) SnapshotKey(workspaceID, scope string) string {
	return strings.Join([]string{"javi", "snapshot", workspaceID, scope}, ":")
}

func newTestSnapshot(computer blockedComputer, store SnapshotStore) *Snapshot {
	return &Snapshot{
		engine:   computer,
		store:    store,
		ttl:      15 * time.Second,
		inflight: make(map[string]*flight),
	}
}

func TestSnapshotCachesBlockedSet(t *testing.T) {
	blockedID := uuid.New()
	computer := &stubComputer{blocked: map[uuid.UUID]struct{}{blockedID: {}}}
	store := newStubSnapshotStore()
	snap := newTestSnapshot(computer, store)

	window := Window{Start: ts("2024-03-01T09:00:00Z"), End: ts("2024-03-01T18:00:00Z")}
	tc := tenancy.Legacy()
	ctx := context.Background()

	ids, err := snap.BlockedIDs(ctx, tc, window, nil)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(ids) != 1 || ids[0] != blockedID {
		t.Fatalf("unexpected blocked set %v", ids)
	}

	// second call is served from cache
	ids, err = snap.BlockedIDs(ctx, tc, window, nil)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("unexpected cached set %v", ids)
	}
	if got := atomic.LoadInt32(&computer.calls); got != 1 {
		t.Fatalf("expected one computation, got %d", got)
	}
}

func TestSnapshotCoalescesConcurrentRefreshes(t *testing.T) {
	computer := &stubComputer{delay: 50 * time.Millisecond}
	store := newStubSnapshotStore()
	snap := newTestSnapshot(computer, store)

	window := Window{Start: ts("2024-03-01T09:00:00Z"), End: ts("2024-03-01T18:00:00Z")}
	tc := tenancy.Legacy()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := snap.BlockedIDs(context.Background(), tc, window, nil); err != nil {
				t.Errorf("concurrent call: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&computer.calls); got != 1 {
		t.Fatalf("expected overlapping refreshes to collapse into one, got %d", got)
	}
}

func TestSnapshotKeyVariesByWindowAndEvent(t *testing.T) {
	computer := &stubComputer{}
	store := newStubSnapshotStore()
	snap := newTestSnapshot(computer, store)
	tc := tenancy.Legacy()
	ctx := context.Background()

	w1 := Window{Start: ts("2024-03-01T09:00:00Z"), End: ts("2024-03-01T18:00:00Z")}
	w2 := Window{Start: ts("2024-03-02T09:00:00Z"), End: ts("2024-03-02T18:00:00Z")}
	eventID := uuid.New()

	if _, err := snap.BlockedIDs(ctx, tc, w1, nil); err != nil {
		t.Fatalf("w1: %v", err)
	}
	if _, err := snap.BlockedIDs(ctx, tc, w2, nil); err != nil {
		t.Fatalf("w2: %v", err)
	}
	if _, err := snap.BlockedIDs(ctx, tc, w1, &eventID); err != nil {
		t.Fatalf("w1 ignore: %v", err)
	}

	if got := atomic.LoadInt32(&computer.calls); got != 3 {
		t.Fatalf("distinct windows/events must not share cache entries, got %d calls", got)
	}
}

func TestSnapshotPropagatesComputeErrors(t *testing.T) {
	computer := &stubComputer{err: errors.New("boom")}
	snap := newTestSnapshot(computer, newStubSnapshotStore())

	window := Window{Start: ts("2024-03-01T09:00:00Z"), End: ts("2024-03-01T18:00:00Z")}
	if _, err := snap.BlockedIDs(context.Background(), tenancy.Legacy(), window, nil); err == nil {
		t.Fatal("expected compute error to propagate")
	}
}
