package kits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

const table = "kits"

// Repository handles kit persistence through the scoped store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, tc tenancy.Context) ([]models.Kit, error)
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error)
	Create(ctx context.Context, tc tenancy.Context, kit *models.Kit) error
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns a kit repository bound to the provided scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) List(ctx context.Context, tc tenancy.Context) ([]models.Kit, error) {
	var kits []models.Kit
	if err := r.store.Query(ctx, tc, &models.Kit{}).
		Order("name ASC").
		Find(&kits).Error; err != nil {
		return nil, err
	}
	return kits, nil
}

func (r *repository) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error) {
	var kit models.Kit
	if err := r.store.Query(ctx, tc, &models.Kit{}).
		Where("id = ?", id).
		First(&kit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
		}
		return nil, err
	}
	return &kit, nil
}

func (r *repository) Create(ctx context.Context, tc tenancy.Context, kit *models.Kit) error {
	kit.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, table, kit)
}

func (r *repository) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, table, &models.Kit{}, id, values)
}

func (r *repository) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, tc, table, &models.Kit{}, id)
}
