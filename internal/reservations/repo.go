package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

const (
	reservationTable = "reservations"
	checkoutTable    = "checkouts"
)

// Repository handles reservation and checkout persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateReservation(ctx context.Context, tc tenancy.Context, reservation *models.Reservation) error
	UpdateReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	FindReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Reservation, error)
	ListByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error)
	ActiveByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error)
	CreateCheckout(ctx context.Context, tc tenancy.Context, checkout *models.Checkout) error
	UpdateCheckout(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	FindCheckout(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Checkout, error)
	OpenCheckoutsByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Checkout, error)
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns a reservation repository over the scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) CreateReservation(ctx context.Context, tc tenancy.Context, reservation *models.Reservation) error {
	reservation.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, reservationTable, reservation)
}

func (r *repository) UpdateReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, reservationTable, &models.Reservation{}, id, values)
}

func (r *repository) FindReservation(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.store.Query(ctx, tc, &models.Reservation{}).
		Where("id = ?", id).
		First(&reservation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.store.Query(ctx, tc, &models.Reservation{}).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) ActiveByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.store.Query(ctx, tc, &models.Reservation{}).
		Where("event_id = ?", eventID).
		Where("status = ?", enums.ReservationStatusActive).
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) CreateCheckout(ctx context.Context, tc tenancy.Context, checkout *models.Checkout) error {
	checkout.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, checkoutTable, checkout)
}

func (r *repository) UpdateCheckout(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, checkoutTable, &models.Checkout{}, id, values)
}

func (r *repository) FindCheckout(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := r.store.Query(ctx, tc, &models.Checkout{}).
		Where("id = ?", id).
		First(&checkout).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) OpenCheckoutsByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Checkout, error) {
	var checkouts []models.Checkout
	if err := r.store.Query(ctx, tc, &models.Checkout{}).
		Where("event_id = ?", eventID).
		Where("status = ?", enums.CheckoutStatusOpen).
		Find(&checkouts).Error; err != nil {
		return nil, err
	}
	return checkouts, nil
}
