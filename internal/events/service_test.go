package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/booking"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

type stubEventRepo struct {
	events map[uuid.UUID]*models.Event
}

func newStubEventRepo(events ...*models.Event) *stubEventRepo {
	s := &stubEventRepo{events: make(map[uuid.UUID]*models.Event)}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *stubEventRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubEventRepo) List(ctx context.Context, tc tenancy.Context) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out, nil
}

func (s *stubEventRepo) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	copied := *event
	return &copied, nil
}

func (s *stubEventRepo) Create(ctx context.Context, tc tenancy.Context, event *models.Event) error {
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *stubEventRepo) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	event, ok := s.events[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	if title, ok := values["title"].(string); ok {
		event.Title = title
	}
	if status, ok := values["status"].(enums.EventStatus); ok {
		event.Status = status
	}
	if start, ok := values["start_at"].(time.Time); ok {
		event.StartAt = start
	}
	if end, ok := values["end_at"].(time.Time); ok {
		event.EndAt = end
	}
	return nil
}

func (s *stubEventRepo) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	delete(s.events, id)
	return nil
}

type stubReservationStore struct {
	reservations map[uuid.UUID]*models.Reservation
	updates      map[uuid.UUID][]map[string]any
}

func newStubReservationStore(reservations ...*models.Reservation) *stubReservationStore {
	s := &stubReservationStore{
		reservations: make(map[uuid.UUID]*models.Reservation),
		updates:      make(map[uuid.UUID][]map[string]any),
	}
	for _, r := range reservations {
		s.reservations[r.ID] = r
	}
	return s
}

func (s *stubReservationStore) ActiveByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.EventID == eventID && r.Status == enums.ReservationStatusActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubReservationStore) UpdateReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	reservation, ok := s.reservations[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	s.updates[id] = append(s.updates[id], values)
	if status, ok := values["status"].(enums.ReservationStatus); ok {
		reservation.Status = status
	}
	if start, ok := values["start_at"].(time.Time); ok {
		reservation.StartAt = start
	}
	if end, ok := values["end_at"].(time.Time); ok {
		reservation.EndAt = end
	}
	return nil
}

type stubBlocked struct {
	blocked map[uuid.UUID]struct{}
}

func (s *stubBlocked) BlockedIDs(ctx context.Context, tc tenancy.Context, w booking.Window, ignoreEventID *uuid.UUID) (map[uuid.UUID]struct{}, error) {
	out := make(map[uuid.UUID]struct{}, len(s.blocked))
	for id := range s.blocked {
		out[id] = struct{}{}
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository, reservations ReservationStore, blocked BlockedSetComputer) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:         repo,
		Reservations: reservations,
		Blocked:      blocked,
		Now:          func() time.Time { return ts("2024-05-01T12:00:00Z") },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateStartsInDraft(t *testing.T) {
	repo := newStubEventRepo()
	svc := newTestService(t, repo, newStubReservationStore(), &stubBlocked{})
	userID := uuid.New()

	event, err := svc.Create(context.Background(), tenancy.Legacy(), CreateInput{
		Title:   "Doc Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"),
		EndAt:   ts("2024-06-01T18:00:00Z"),
	}, Actor{UserID: &userID, Email: "amy@javi.app"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.Status != enums.EventStatusDraft {
		t.Fatalf("expected DRAFT, got %s", event.Status)
	}
	if event.CreatedByEmail == nil || *event.CreatedByEmail != "amy@javi.app" {
		t.Fatal("created_by_email not stamped")
	}
}

func TestCreateRejectsInvalidWindow(t *testing.T) {
	svc := newTestService(t, newStubEventRepo(), newStubReservationStore(), &stubBlocked{})

	_, err := svc.Create(context.Background(), tenancy.Legacy(), CreateInput{
		Title:   "Backwards",
		StartAt: ts("2024-06-01T18:00:00Z"),
		EndAt:   ts("2024-06-01T09:00:00Z"),
	}, Actor{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateWindowRealignsActiveReservations(t *testing.T) {
	event := &models.Event{
		ID: uuid.New(), Title: "Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"), EndAt: ts("2024-06-01T18:00:00Z"),
		Status: enums.EventStatusReserved,
	}
	active := &models.Reservation{
		ID: uuid.New(), EventID: event.ID, GearItemID: uuid.New(),
		StartAt: event.StartAt, EndAt: event.EndAt,
		Status: enums.ReservationStatusActive,
	}
	canceled := &models.Reservation{
		ID: uuid.New(), EventID: event.ID, GearItemID: uuid.New(),
		StartAt: event.StartAt, EndAt: event.EndAt,
		Status: enums.ReservationStatusCanceled,
	}
	repo := newStubEventRepo(event)
	reservations := newStubReservationStore(active, canceled)
	svc := newTestService(t, repo, reservations, &stubBlocked{})

	newStart, newEnd := ts("2024-06-02T09:00:00Z"), ts("2024-06-02T18:00:00Z")
	updated, err := svc.UpdateWindow(context.Background(), tenancy.Legacy(), event.ID, newStart, newEnd)
	if err != nil {
		t.Fatalf("UpdateWindow: %v", err)
	}
	if !updated.StartAt.Equal(newStart) || !updated.EndAt.Equal(newEnd) {
		t.Fatal("event window not updated")
	}
	if !active.StartAt.Equal(newStart) || !active.EndAt.Equal(newEnd) {
		t.Fatal("active reservation not realigned")
	}
	if len(reservations.updates[canceled.ID]) != 0 {
		t.Fatal("history rows must not be touched")
	}
}

func TestUpdateWindowRejectsDoubleBooking(t *testing.T) {
	event := &models.Event{
		ID: uuid.New(), Title: "Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"), EndAt: ts("2024-06-01T18:00:00Z"),
		Status: enums.EventStatusReserved,
	}
	itemID := uuid.New()
	active := &models.Reservation{
		ID: uuid.New(), EventID: event.ID, GearItemID: itemID,
		StartAt: event.StartAt, EndAt: event.EndAt,
		Status: enums.ReservationStatusActive,
	}
	repo := newStubEventRepo(event)
	reservations := newStubReservationStore(active)
	blocked := &stubBlocked{blocked: map[uuid.UUID]struct{}{itemID: {}}}
	svc := newTestService(t, repo, reservations, blocked)

	_, err := svc.UpdateWindow(context.Background(), tenancy.Legacy(), event.ID,
		ts("2024-06-02T09:00:00Z"), ts("2024-06-02T18:00:00Z"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["double_booked"] != 1 {
		t.Fatalf("expected double_booked count, got %v", typed.Details())
	}
	if !repo.events[event.ID].StartAt.Equal(ts("2024-06-01T09:00:00Z")) {
		t.Fatal("rejected edit must leave the window unchanged")
	}
	if len(reservations.updates[active.ID]) != 0 {
		t.Fatal("rejected edit must leave reservations unchanged")
	}
}

func TestCancelVoidsActiveReservations(t *testing.T) {
	event := &models.Event{
		ID: uuid.New(), Title: "Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"), EndAt: ts("2024-06-01T18:00:00Z"),
		Status: enums.EventStatusReserved,
	}
	active := &models.Reservation{
		ID: uuid.New(), EventID: event.ID, GearItemID: uuid.New(),
		Status: enums.ReservationStatusActive,
	}
	repo := newStubEventRepo(event)
	reservations := newStubReservationStore(active)
	svc := newTestService(t, repo, reservations, &stubBlocked{})

	if err := svc.Cancel(context.Background(), tenancy.Legacy(), event.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if repo.events[event.ID].Status != enums.EventStatusCanceled {
		t.Fatal("event not canceled")
	}
	if active.Status != enums.ReservationStatusCanceled {
		t.Fatal("active reservation not canceled")
	}
}

func TestDeleteBlockedByActiveReservations(t *testing.T) {
	event := &models.Event{
		ID: uuid.New(), Title: "Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"), EndAt: ts("2024-06-01T18:00:00Z"),
		Status: enums.EventStatusReserved,
	}
	active := &models.Reservation{
		ID: uuid.New(), EventID: event.ID, GearItemID: uuid.New(),
		Status: enums.ReservationStatusActive,
	}
	repo := newStubEventRepo(event)
	svc := newTestService(t, repo, newStubReservationStore(active), &stubBlocked{})

	err := svc.Delete(context.Background(), tenancy.Legacy(), event.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["active_reservations"] != 1 {
		t.Fatalf("expected blocking count, got %v", typed.Details())
	}
	if _, ok := repo.events[event.ID]; !ok {
		t.Fatal("blocked delete must not remove the event")
	}
}

func TestUpdateEditsDescriptiveFields(t *testing.T) {
	event := &models.Event{
		ID: uuid.New(), Title: "Shoot",
		StartAt: ts("2024-06-01T09:00:00Z"), EndAt: ts("2024-06-01T18:00:00Z"),
		Status: enums.EventStatusDraft,
	}
	repo := newStubEventRepo(event)
	svc := newTestService(t, repo, newStubReservationStore(), &stubBlocked{})

	title := "Studio Shoot"
	updated, err := svc.Update(context.Background(), tenancy.Legacy(), event.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Studio Shoot" {
		t.Fatalf("title not updated, got %q", updated.Title)
	}

	empty := ""
	if _, err := svc.Update(context.Background(), tenancy.Legacy(), event.ID, UpdateInput{Title: &empty}); err == nil {
		t.Fatal("empty title must be rejected")
	}
}
