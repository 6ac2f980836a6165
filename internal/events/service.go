package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/javi-app/javi-backend/internal/booking"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
	"github.com/javi-app/javi-backend/pkg/types"
)

// Actor identifies who performed an operation, for audit columns.
type Actor struct {
	UserID *uuid.UUID
	Email  string
}

// ReservationStore is the slice of the reservations repository the event
// lifecycle needs for window realignment and cancellation.
type ReservationStore interface {
	ActiveByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
}

// BlockedSetComputer reports which items are unavailable for a window.
type BlockedSetComputer interface {
	BlockedIDs(ctx context.Context, tc tenancy.Context, w booking.Window, ignoreEventID *uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// ServiceParams groups dependencies for the event service.
type ServiceParams struct {
	Repo         Repository
	Reservations ReservationStore
	Blocked      BlockedSetComputer
	Logger       *logger.Logger
	Now          func() time.Time
}

// Service manages the event lifecycle.
type Service struct {
	repo         Repository
	reservations ReservationStore
	blocked      BlockedSetComputer
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the event service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Reservations == nil {
		return nil, errors.New("reservation store is required")
	}
	if params.Blocked == nil {
		return nil, errors.New("blocked set computer is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:         params.Repo,
		reservations: params.Reservations,
		blocked:      params.Blocked,
		logg:         params.Logger,
		now:          now,
	}, nil
}

// CreateInput describes a new event. Events start in DRAFT.
type CreateInput struct {
	Title          string
	StartAt        time.Time
	EndAt          time.Time
	Location       string
	Notes          string
	ProductionDocs types.DocumentList
	AssignedPeople []string
}

// Create validates the window and inserts a DRAFT event.
func (s *Service) Create(ctx context.Context, tc tenancy.Context, in CreateInput, actor Actor) (*models.Event, error) {
	if in.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	window, err := booking.NewWindow(in.StartAt, in.EndAt)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		ID:             uuid.New(),
		Title:          in.Title,
		StartAt:        window.Start,
		EndAt:          window.End,
		Location:       in.Location,
		Status:         enums.EventStatusDraft,
		Notes:          in.Notes,
		ProductionDocs: in.ProductionDocs,
		AssignedPeople: pq.StringArray(in.AssignedPeople),
		CreatedBy:      actor.UserID,
	}
	if actor.Email != "" {
		email := actor.Email
		event.CreatedByEmail = &email
	}
	if err := s.repo.Create(ctx, tc, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns the tenant's events, newest window first.
func (s *Service) List(ctx context.Context, tc tenancy.Context) ([]models.Event, error) {
	return s.repo.List(ctx, tc)
}

// Find returns one event.
func (s *Service) Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error) {
	return s.repo.FindByID(ctx, tc, id)
}

// UpdateInput carries the editable non-window fields. Nil means unchanged.
type UpdateInput struct {
	Title          *string
	Location       *string
	Notes          *string
	ProductionDocs *types.DocumentList
	AssignedPeople *[]string
}

// Update edits descriptive event fields. The window has its own path.
func (s *Service) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in UpdateInput) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if event.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "event is closed")
	}

	values := map[string]any{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		values["title"] = *in.Title
	}
	if in.Location != nil {
		values["location"] = *in.Location
	}
	if in.Notes != nil {
		values["notes"] = *in.Notes
	}
	if in.ProductionDocs != nil {
		values["production_docs"] = *in.ProductionDocs
	}
	if in.AssignedPeople != nil {
		values["assigned_people"] = pq.StringArray(*in.AssignedPeople)
	}
	if len(values) == 0 {
		return event, nil
	}
	if err := s.repo.Update(ctx, tc, id, values); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tc, id)
}

// UpdateWindow moves the event to a new time window. Every ACTIVE
// reservation must still be free of conflicts in the new window (the
// event's own holds are ignored); otherwise the edit is rejected with the
// number of double-booked items and nothing changes. On success all ACTIVE
// reservations are realigned to the new window.
func (s *Service) UpdateWindow(ctx context.Context, tc tenancy.Context, id uuid.UUID, startAt, endAt time.Time) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if event.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "event is closed")
	}
	window, err := booking.NewWindow(startAt, endAt)
	if err != nil {
		return nil, err
	}

	active, err := s.reservations.ActiveByEvent(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		blocked, err := s.blocked.BlockedIDs(ctx, tc, window, &event.ID)
		if err != nil {
			return nil, err
		}
		doubleBooked := 0
		for _, reservation := range active {
			if _, hit := blocked[reservation.GearItemID]; hit {
				doubleBooked++
			}
		}
		if doubleBooked > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "new window double-books reserved gear").
				WithDetails(map[string]any{"double_booked": doubleBooked})
		}
	}

	if err := s.repo.Update(ctx, tc, id, map[string]any{
		"start_at": window.Start,
		"end_at":   window.End,
	}); err != nil {
		return nil, err
	}
	for _, reservation := range active {
		if err := s.reservations.UpdateReservation(ctx, tc, reservation.ID, map[string]any{
			"start_at": window.Start,
			"end_at":   window.End,
		}); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, tc, id)
}

// Cancel voids the event and every ACTIVE reservation on it.
func (s *Service) Cancel(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	event, err := s.repo.FindByID(ctx, tc, id)
	if err != nil {
		return err
	}
	if event.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "event is already closed")
	}

	active, err := s.reservations.ActiveByEvent(ctx, tc, id)
	if err != nil {
		return err
	}
	for _, reservation := range active {
		if err := s.reservations.UpdateReservation(ctx, tc, reservation.ID, map[string]any{
			"status": enums.ReservationStatusCanceled,
		}); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, tc, id, map[string]any{
		"status": enums.EventStatusCanceled,
	})
}

// Delete removes an event. Events holding ACTIVE reservations cannot be
// deleted; cancel or return them first.
func (s *Service) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, tc, id); err != nil {
		return err
	}
	active, err := s.reservations.ActiveByEvent(ctx, tc, id)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "event still holds active reservations").
			WithDetails(map[string]any{"active_reservations": len(active)})
	}
	return s.repo.Delete(ctx, tc, id)
}
