package team

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

// Repository handles crew contact persistence. It rides the scoped store's
// team-table fallback: rows may predate the workspace_id column.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, tc tenancy.Context) ([]models.TeamMember, error)
	FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.TeamMember, error)
	Create(ctx context.Context, tc tenancy.Context, member *models.TeamMember) error
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

type repository struct {
	store *scoped.Store
}

// NewRepository returns a team repository bound to the provided scoped store.
func NewRepository(store *scoped.Store) Repository {
	return &repository{store: store}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) List(ctx context.Context, tc tenancy.Context) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.store.Query(ctx, tc, &models.TeamMember{}).
		Order("name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.store.Query(ctx, tc, &models.TeamMember{}).
		Where("id = ?", id).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team member not found")
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) Create(ctx context.Context, tc tenancy.Context, member *models.TeamMember) error {
	member.WorkspaceID = tc.ScopeID()
	return r.store.Create(ctx, tc, scoped.TeamTable, member)
}

func (r *repository) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	return r.store.Updates(ctx, tc, scoped.TeamTable, &models.TeamMember{}, id, values)
}

func (r *repository) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, tc, scoped.TeamTable, &models.TeamMember{}, id)
}
