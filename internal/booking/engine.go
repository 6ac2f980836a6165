package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/metrics"
)

// EngineParams groups dependencies for the conflict engine.
type EngineParams struct {
	Repo    Repository
	Metrics *metrics.BookingMetrics
}

// Engine answers the availability question: is a physical item free over a
// window? Two booking records can block it: an ACTIVE reservation whose
// window overlaps (symmetric), or an OPEN checkout whose due instant falls
// after the window start (asymmetric — an open checkout has no end, only a
// due-back time).
type Engine struct {
	repo    Repository
	metrics *metrics.BookingMetrics
}

// NewEngine builds a conflict engine.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Engine{repo: params.Repo, metrics: params.Metrics}, nil
}

// IsAvailable is the single-item point check used to guard every insert.
// ignoreEventID excludes that event's own reservations: a reservation cannot
// conflict with the event that owns it.
func (e *Engine) IsAvailable(ctx context.Context, tc tenancy.Context, itemID uuid.UUID, w Window, ignoreEventID *uuid.UUID) (bool, error) {
	count, err := e.repo.CountActiveOverlapping(ctx, tc, itemID, w, ignoreEventID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	checkouts, err := e.repo.OpenCheckouts(ctx, tc)
	if err != nil {
		return false, err
	}
	for _, checkout := range checkouts {
		if !checkout.DueAt.After(w.Start) {
			continue
		}
		if checkout.Items.Contains(itemID) {
			return false, nil
		}
	}
	return true, nil
}

// BlockedIDs precomputes the set of unavailable item ids for a window. This
// feeds picker UIs only; it may go stale and every write re-verifies with
// IsAvailable.
func (e *Engine) BlockedIDs(ctx context.Context, tc tenancy.Context, w Window, ignoreEventID *uuid.UUID) (map[uuid.UUID]struct{}, error) {
	blocked := make(map[uuid.UUID]struct{})

	reservations, err := e.repo.ActiveReservations(ctx, tc)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		if ignoreEventID != nil && r.EventID == *ignoreEventID {
			continue
		}
		if (Window{Start: r.StartAt, End: r.EndAt}).Overlaps(w) {
			blocked[r.GearItemID] = struct{}{}
		}
	}

	checkouts, err := e.repo.OpenCheckouts(ctx, tc)
	if err != nil {
		return nil, err
	}
	for _, checkout := range checkouts {
		if !checkout.DueAt.After(w.Start) {
			continue
		}
		for _, id := range checkout.Items {
			blocked[id] = struct{}{}
		}
	}
	return blocked, nil
}

// InUseItemIDs returns every item holding any ACTIVE reservation or sitting
// in an OPEN checkout, regardless of window. The gear service consults this
// before shrinking or deleting copies.
func (e *Engine) InUseItemIDs(ctx context.Context, tc tenancy.Context) (map[uuid.UUID]struct{}, error) {
	inUse := make(map[uuid.UUID]struct{})

	reservations, err := e.repo.ActiveReservations(ctx, tc)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		inUse[r.GearItemID] = struct{}{}
	}

	checkouts, err := e.repo.OpenCheckouts(ctx, tc)
	if err != nil {
		return nil, err
	}
	for _, checkout := range checkouts {
		for _, id := range checkout.Items {
			inUse[id] = struct{}{}
		}
	}
	return inUse, nil
}

// CountConflict records a rejected booking for observability.
func (e *Engine) CountConflict(stage string) {
	if e.metrics != nil {
		e.metrics.IncConflict(stage)
	}
}
