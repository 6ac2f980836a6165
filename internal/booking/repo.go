package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
)

// Repository exposes the booking reads the conflict engine needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ActiveReservations(ctx context.Context, tc tenancy.Context) ([]models.Reservation, error)
	CountActiveOverlapping(ctx context.Context, tc tenancy.Context, itemID uuid.UUID, w Window, ignoreEventID *uuid.UUID) (int64, error)
	OpenCheckouts(ctx context.Context, tc tenancy.Context) ([]models.Checkout, error)
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns a booking repository over the scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) ActiveReservations(ctx context.Context, tc tenancy.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.store.Query(ctx, tc, &models.Reservation{}).
		Where("status = ?", enums.ReservationStatusActive).
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) CountActiveOverlapping(ctx context.Context, tc tenancy.Context, itemID uuid.UUID, w Window, ignoreEventID *uuid.UUID) (int64, error) {
	q := r.store.Query(ctx, tc, &models.Reservation{}).
		Where("gear_item_id = ?", itemID).
		Where("status = ?", enums.ReservationStatusActive).
		Where("start_at < ? AND end_at > ?", w.End, w.Start)
	if ignoreEventID != nil {
		q = q.Where("event_id <> ?", *ignoreEventID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) OpenCheckouts(ctx context.Context, tc tenancy.Context) ([]models.Checkout, error) {
	var checkouts []models.Checkout
	if err := r.store.Query(ctx, tc, &models.Checkout{}).
		Where("status = ?", enums.CheckoutStatusOpen).
		Find(&checkouts).Error; err != nil {
		return nil, err
	}
	return checkouts, nil
}
