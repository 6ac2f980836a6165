package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/javi-app/javi-backend/internal/booking"
	"github.com/javi-app/javi-backend/internal/gear"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// activeNoOverlapConstraint is the database backstop for the write-time
// re-check: when two writers race past the check, one insert loses here.
const activeNoOverlapConstraint = "reservations_active_no_overlap"

// Actor identifies who performed an operation, for audit columns.
type Actor struct {
	UserID *uuid.UUID
	Email  string
}

// EventStore is the slice of the events repository the lifecycle needs.
type EventStore interface {
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
}

// GearStore lists the tenant's physical items for grouping and scanning.
type GearStore interface {
	List(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error)
}

// KitStore fetches kits for AddKit.
type KitStore interface {
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error)
}

// AvailabilityChecker is the write-time availability gate.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, tc tenancy.Context, itemID uuid.UUID, w booking.Window, ignoreEventID *uuid.UUID) (bool, error)
	CountConflict(stage string)
}

// ServiceParams groups dependencies for the reservation lifecycle.
type ServiceParams struct {
	Repo     Repository
	Events   EventStore
	Gear     GearStore
	Kits     KitStore
	Checker  AvailabilityChecker
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service orchestrates reserve / cancel / return operations.
type Service struct {
	repo    Repository
	events  EventStore
	gear    GearStore
	kits    KitStore
	checker AvailabilityChecker
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the reservation lifecycle service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Events == nil {
		return nil, errors.New("event store is required")
	}
	if params.Gear == nil {
		return nil, errors.New("gear store is required")
	}
	if params.Checker == nil {
		return nil, errors.New("availability checker is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    params.Repo,
		events:  params.Events,
		gear:    params.Gear,
		kits:    params.Kits,
		checker: params.Checker,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// ListByEvent returns every reservation row of an event, history included.
func (s *Service) ListByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error) {
	return s.repo.ListByEvent(ctx, tc, eventID)
}

// ReserveItem re-verifies availability and inserts an ACTIVE reservation for
// the event's window, promoting the event out of DRAFT.
func (s *Service) ReserveItem(ctx context.Context, tc tenancy.Context, eventID, itemID uuid.UUID, actor Actor) (*models.Reservation, error) {
	event, window, err := s.reservableEvent(ctx, tc, eventID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.ActiveByEvent(ctx, tc, eventID)
	if err != nil {
		return nil, err
	}
	for _, r := range active {
		if r.GearItemID == itemID {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is already reserved on this event")
		}
	}

	reservation, err := s.reserveOne(ctx, tc, event, window, itemID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.promoteIfDraft(ctx, tc, event); err != nil {
		return nil, err
	}
	return reservation, nil
}

// GroupResult summarizes a greedy reserve-from-group pass.
type GroupResult struct {
	Requested    int                  `json:"requested"`
	Reserved     int                  `json:"reserved"`
	Conflicted   int                  `json:"conflicted"`
	Reservations []models.Reservation `json:"reservations"`
}

// ReserveGroup greedily reserves up to qty available copies from a logical
// group in ascending copy order. Fewer available than requested is a partial
// success, never an error: each copy stands or falls on its own.
func (s *Service) ReserveGroup(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, category enums.GearCategory, baseName string, qty int, actor Actor) (GroupResult, error) {
	result := GroupResult{Requested: qty}
	if qty < 1 {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	event, window, err := s.reservableEvent(ctx, tc, eventID)
	if err != nil {
		return result, err
	}

	items, err := s.gear.List(ctx, tc)
	if err != nil {
		return result, err
	}
	var group *gear.Group
	for _, g := range gear.GroupItems(items) {
		if g.Category == category && g.BaseName == baseName {
			found := g
			group = &found
			break
		}
	}
	if group == nil {
		return result, pkgerrors.New(pkgerrors.CodeNotFound, "gear group not found")
	}

	alreadyActive, err := s.activeItemSet(ctx, tc, eventID)
	if err != nil {
		return result, err
	}

	for _, item := range group.Items {
		if result.Reserved == qty {
			break
		}
		if _, taken := alreadyActive[item.ID]; taken {
			continue
		}
		reservation, err := s.reserveOne(ctx, tc, event, window, item.ID, actor)
		if err != nil {
			if isConflict(err) {
				result.Conflicted++
				continue
			}
			return result, err
		}
		result.Reserved++
		result.Reservations = append(result.Reservations, *reservation)
	}

	if result.Reserved > 0 {
		if err := s.promoteIfDraft(ctx, tc, event); err != nil {
			return result, err
		}
	}
	return result, nil
}

// KitResult summarizes adding a kit to an event.
type KitResult struct {
	Added      int `json:"added"`
	Already    int `json:"already"`
	Conflicted int `json:"conflicted"`
	Missing    int `json:"missing"`
}

// AddKit reserves every item of a kit onto the event, best-effort per item.
func (s *Service) AddKit(ctx context.Context, tc tenancy.Context, eventID, kitID uuid.UUID, actor Actor) (KitResult, error) {
	var result KitResult
	if s.kits == nil {
		return result, pkgerrors.New(pkgerrors.CodeInternal, "kit store not configured")
	}

	kit, err := s.kits.FindByID(ctx, tc, kitID)
	if err != nil {
		return result, err
	}
	event, window, err := s.reservableEvent(ctx, tc, eventID)
	if err != nil {
		return result, err
	}

	items, err := s.gear.List(ctx, tc)
	if err != nil {
		return result, err
	}
	byID := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		byID[item.ID] = struct{}{}
	}

	alreadyActive, err := s.activeItemSet(ctx, tc, eventID)
	if err != nil {
		return result, err
	}

	for _, itemID := range kit.ItemIDs {
		if _, exists := byID[itemID]; !exists {
			result.Missing++
			continue
		}
		if _, taken := alreadyActive[itemID]; taken {
			result.Already++
			continue
		}
		if _, err := s.reserveOne(ctx, tc, event, window, itemID, actor); err != nil {
			if isConflict(err) {
				result.Conflicted++
				continue
			}
			return result, err
		}
		result.Added++
	}

	if result.Added > 0 {
		if err := s.promoteIfDraft(ctx, tc, event); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Cancel flips an ACTIVE reservation to CANCELED. History rows are kept.
func (s *Service) Cancel(ctx context.Context, tc tenancy.Context, reservationID uuid.UUID) error {
	reservation, err := s.repo.FindReservation(ctx, tc, reservationID)
	if err != nil {
		return err
	}
	if reservation.Status != enums.ReservationStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is not active")
	}
	return s.repo.UpdateReservation(ctx, tc, reservationID, map[string]any{
		"status": enums.ReservationStatusCanceled,
	})
}

// ReturnAllResult summarizes a bulk return.
type ReturnAllResult struct {
	Returned        int `json:"returned"`
	ClosedCheckouts int `json:"closed_checkouts"`
}

// ReturnAll flips every ACTIVE reservation of the event to RETURNED, closes
// the event's OPEN checkouts, and closes the event with its end snapped to
// now. Per-row failures are collected, not short-circuited: one stuck row
// must not strand the rest of the gear.
func (s *Service) ReturnAll(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, actor Actor) (ReturnAllResult, error) {
	var result ReturnAllResult

	event, err := s.events.FindByID(ctx, tc, eventID)
	if err != nil {
		return result, err
	}

	now := s.now().UTC()
	returnedValues := map[string]any{
		"status":      enums.ReservationStatusReturned,
		"returned_at": now,
	}
	if actor.UserID != nil {
		returnedValues["returned_by"] = *actor.UserID
	}
	if actor.Email != "" {
		returnedValues["returned_by_email"] = actor.Email
	}

	var errs error

	active, err := s.repo.ActiveByEvent(ctx, tc, eventID)
	if err != nil {
		return result, err
	}
	for _, reservation := range active {
		if err := s.repo.UpdateReservation(ctx, tc, reservation.ID, returnedValues); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		result.Returned++
	}

	checkouts, err := s.repo.OpenCheckoutsByEvent(ctx, tc, eventID)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		for _, checkout := range checkouts {
			values := map[string]any{
				"status":      enums.CheckoutStatusReturned,
				"returned_at": now,
			}
			if err := s.repo.UpdateCheckout(ctx, tc, checkout.ID, values); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			result.ClosedCheckouts++
		}
	}

	closeValues := map[string]any{
		"status": enums.EventStatusClosed,
		"end_at": now,
	}
	if actor.UserID != nil {
		closeValues["closed_by"] = *actor.UserID
	}
	if actor.Email != "" {
		closeValues["closed_by_email"] = actor.Email
	}
	if err := s.events.Update(ctx, tc, event.ID, closeValues); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "bulk return finished with failures")
	}
	return result, nil
}

// ReturnByScan resolves scanned text against the tenant's gear and returns
// the matching ACTIVE reservation on the event.
func (s *Service) ReturnByScan(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, scanned string, actor Actor) (*models.Reservation, error) {
	items, err := s.gear.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	item, err := ScanMatch(items, scanned)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.ActiveByEvent(ctx, tc, eventID)
	if err != nil {
		return nil, err
	}
	for _, reservation := range active {
		if reservation.GearItemID != item.ID {
			continue
		}
		values := map[string]any{
			"status":      enums.ReservationStatusReturned,
			"returned_at": s.now().UTC(),
		}
		if actor.UserID != nil {
			values["returned_by"] = *actor.UserID
		}
		if actor.Email != "" {
			values["returned_by_email"] = actor.Email
		}
		if err := s.repo.UpdateReservation(ctx, tc, reservation.ID, values); err != nil {
			return nil, err
		}
		reservation.Status = enums.ReservationStatusReturned
		return &reservation, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active reservation for the scanned item on this event")
}

// ReserveByScan resolves scanned text and reserves the matching item.
func (s *Service) ReserveByScan(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, scanned string, actor Actor) (*models.Reservation, error) {
	items, err := s.gear.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	item, err := ScanMatch(items, scanned)
	if err != nil {
		return nil, err
	}
	return s.ReserveItem(ctx, tc, eventID, item.ID, actor)
}

// CreateCheckoutInput describes an ad-hoc custody record.
type CreateCheckoutInput struct {
	EventID *uuid.UUID
	ItemIDs []uuid.UUID
	DueAt   time.Time
	Note    string
}

// CreateCheckout opens a custody record. Open checkouts block reservations
// for windows starting before DueAt.
func (s *Service) CreateCheckout(ctx context.Context, tc tenancy.Context, in CreateCheckoutInput) (*models.Checkout, error) {
	if len(in.ItemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if in.DueAt.IsZero() || !in.DueAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must be in the future")
	}
	checkout := models.Checkout{
		ID:      uuid.New(),
		EventID: in.EventID,
		Items:   in.ItemIDs,
		DueAt:   in.DueAt.UTC(),
		Status:  enums.CheckoutStatusOpen,
		Note:    in.Note,
	}
	if err := s.repo.CreateCheckout(ctx, tc, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// ReturnCheckout closes one custody record.
func (s *Service) ReturnCheckout(ctx context.Context, tc tenancy.Context, checkoutID uuid.UUID) error {
	checkout, err := s.repo.FindCheckout(ctx, tc, checkoutID)
	if err != nil {
		return err
	}
	if checkout.Status != enums.CheckoutStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not open")
	}
	return s.repo.UpdateCheckout(ctx, tc, checkoutID, map[string]any{
		"status":      enums.CheckoutStatusReturned,
		"returned_at": s.now().UTC(),
	})
}

func (s *Service) reservableEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) (*models.Event, booking.Window, error) {
	event, err := s.events.FindByID(ctx, tc, eventID)
	if err != nil {
		return nil, booking.Window{}, err
	}
	if event.Status.IsTerminal() {
		return nil, booking.Window{}, pkgerrors.New(pkgerrors.CodeStateConflict, "event is closed")
	}
	window, err := booking.NewWindow(event.StartAt, event.EndAt)
	if err != nil {
		return nil, booking.Window{}, err
	}
	return event, window, nil
}

// reserveOne runs the write-time availability re-check and inserts one
// ACTIVE reservation. The UI's blocked-set snapshot may be stale; this check
// plus the exclusion constraint are the authority.
func (s *Service) reserveOne(ctx context.Context, tc tenancy.Context, event *models.Event, window booking.Window, itemID uuid.UUID, actor Actor) (*models.Reservation, error) {
	available, err := s.checker.IsAvailable(ctx, tc, itemID, window, &event.ID)
	if err != nil {
		return nil, err
	}
	if !available {
		s.checker.CountConflict("write")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item became unavailable").
			WithDetails(map[string]any{"gear_item_id": itemID})
	}

	reservation := models.Reservation{
		ID:         uuid.New(),
		EventID:    event.ID,
		GearItemID: itemID,
		StartAt:    window.Start,
		EndAt:      window.End,
		Status:     enums.ReservationStatusActive,
		ReservedBy: actor.UserID,
	}
	if actor.Email != "" {
		email := actor.Email
		reservation.ReservedByEmail = &email
	}
	if err := s.repo.CreateReservation(ctx, tc, &reservation); err != nil {
		if db.IsUniqueViolation(err, activeNoOverlapConstraint) {
			s.checker.CountConflict("write")
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item became unavailable").
				WithDetails(map[string]any{"gear_item_id": itemID})
		}
		return nil, err
	}
	return &reservation, nil
}

func (s *Service) promoteIfDraft(ctx context.Context, tc tenancy.Context, event *models.Event) error {
	if event.Status != enums.EventStatusDraft {
		return nil
	}
	if err := s.events.Update(ctx, tc, event.ID, map[string]any{
		"status": enums.EventStatusReserved,
	}); err != nil {
		return err
	}
	event.Status = enums.EventStatusReserved
	return nil
}

func (s *Service) activeItemSet(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	active, err := s.repo.ActiveByEvent(ctx, tc, eventID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(active))
	for _, reservation := range active {
		set[reservation.GearItemID] = struct{}{}
	}
	return set, nil
}

func isConflict(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeConflict
}
