package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

const table = "events"

// Repository handles event persistence through the scoped store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, tc tenancy.Context) ([]models.Event, error)
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, tc tenancy.Context, event *models.Event) error
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns an event repository bound to the provided scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) List(ctx context.Context, tc tenancy.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.store.Query(ctx, tc, &models.Event{}).
		Order("start_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.store.Query(ctx, tc, &models.Event{}).
		Where("id = ?", id).
		First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) Create(ctx context.Context, tc tenancy.Context, event *models.Event) error {
	event.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, table, event)
}

func (r *repository) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, table, &models.Event{}, id, values)
}

func (r *repository) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, tc, table, &models.Event{}, id)
}
