package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/metrics"
)

// blockedComputer is the slice of the engine the snapshot cache needs.
type blockedComputer interface {
	BlockedIDs(ctx context.Context, tc tenancy.Context, w Window, ignoreEventID *uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// SnapshotStore is the cache surface, satisfied by the redis client.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(workspaceID, scope string) string
}

type flight struct {
	done chan struct{}
	ids  []uuid.UUID
	err  error
}

// Snapshot caches blocked-id sets for picker prefetch. Snapshots are allowed
// to go stale within the TTL; the write-time re-check is always the
// authority. Overlapping refreshes for the same key collapse into a single
// computation, with later callers receiving the in-flight result.
type Snapshot struct {
	engine  blockedComputer
	store   SnapshotStore
	ttl     time.Duration
	metrics *metrics.BookingMetrics

	mu       sync.Mutex
	inflight map[string]*flight
}

// SnapshotParams groups dependencies for the snapshot cache.
type SnapshotParams struct {
	Engine  *Engine
	Store   SnapshotStore
	TTL     time.Duration
	Metrics *metrics.BookingMetrics
}

// NewSnapshot builds the snapshot cache.
func NewSnapshot(params SnapshotParams) (*Snapshot, error) {
	if params.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Snapshot{
		engine:   params.Engine,
		store:    params.Store,
		ttl:      ttl,
		metrics:  params.Metrics,
		inflight: make(map[string]*flight),
	}, nil
}

// BlockedIDs returns the blocked set for the window, from cache when fresh.
func (s *Snapshot) BlockedIDs(ctx context.Context, tc tenancy.Context, w Window, ignoreEventID *uuid.UUID) ([]uuid.UUID, error) {
	key := s.key(tc, w, ignoreEventID)

	if cached, err := s.store.Get(ctx, key); err == nil {
		var ids []uuid.UUID
		if jsonErr := json.Unmarshal([]byte(cached), &ids); jsonErr == nil {
			s.count("hit")
			return ids, nil
		}
		// unreadable payload falls through to a refresh
	}

	s.mu.Lock()
	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		<-f.done
		s.count("coalesced")
		return f.ids, f.err
	}
	f := &flight{done: make(chan struct{})}
	s.inflight[key] = f
	s.mu.Unlock()

	f.ids, f.err = s.refresh(ctx, tc, w, ignoreEventID, key)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(f.done)

	return f.ids, f.err
}

func (s *Snapshot) refresh(ctx context.Context, tc tenancy.Context, w Window, ignoreEventID *uuid.UUID, key string) ([]uuid.UUID, error) {
	blocked, err := s.engine.BlockedIDs(ctx, tc, w, ignoreEventID)
	if err != nil {
		s.count("error")
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(blocked))
	for id := range blocked {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	if payload, jsonErr := json.Marshal(ids); jsonErr == nil {
		// cache write is best-effort
		_ = s.store.Set(ctx, key, string(payload), s.ttl)
	}
	s.count("refreshed")
	return ids, nil
}

func (s *Snapshot) key(tc tenancy.Context, w Window, ignoreEventID *uuid.UUID) string {
	workspace := "legacy"
	if tc.WorkspaceID != nil {
		workspace = tc.WorkspaceID.String()
	}
	scope := fmt.Sprintf("blocked:%d:%d", w.Start.UTC().Unix(), w.End.UTC().Unix())
	if ignoreEventID != nil {
		scope += ":" + ignoreEventID.String()
	}
	return s.store.SnapshotKey(workspace, scope)
}

func (s *Snapshot) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncRefresh(outcome)
	}
}
