package gear

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

const table = "gear_items"

// Repository handles gear persistence through the scoped store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error)
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.GearItem, error)
	Create(ctx context.Context, tc tenancy.Context, item *models.GearItem) error
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns a gear repository bound to the provided scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) List(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error) {
	var items []models.GearItem
	if err := r.store.Query(ctx, tc, &models.GearItem{}).
		Order("category ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.GearItem, error) {
	var item models.GearItem
	if err := r.store.Query(ctx, tc, &models.GearItem{}).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gear item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, tc tenancy.Context, item *models.GearItem) error {
	item.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, table, item)
}

func (r *repository) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, table, &models.GearItem{}, id, values)
}

func (r *repository) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, tc, table, &models.GearItem{}, id)
}
