package workspaces

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

// Membership is a user's seat in a workspace, joined with its name.
type Membership struct {
	WorkspaceID   uuid.UUID        `gorm:"column:workspace_id"`
	WorkspaceName string           `gorm:"column:workspace_name"`
	Role          enums.MemberRole `gorm:"column:role"`
}

// tenantTables lists every scoped collection, in delete-safe order.
var tenantTables = []string{
	"reservations",
	"checkouts",
	"kits",
	"events",
	"gear_items",
	"team_members",
}

// Repository handles the control-plane tables. These are not tenant-scoped;
// they define the tenants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MembershipsByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	OwnedByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error)
	FindWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	RenameWorkspace(ctx context.Context, id uuid.UUID, name string) error
	MembersOf(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error)
	EnsureMember(ctx context.Context, member *models.WorkspaceMember) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	Bootstrap(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error)
	DeleteTenantData(ctx context.Context, workspaceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a workspace repository over the raw connection.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) MembershipsByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	var memberships []Membership
	err := r.db.WithContext(ctx).
		Table("workspace_members").
		Select("workspace_members.workspace_id, workspaces.name AS workspace_name, workspace_members.role").
		Joins("JOIN workspaces ON workspaces.id = workspace_members.workspace_id").
		Where("workspace_members.user_id = ?", userID).
		Order("workspaces.name ASC").
		Scan(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) OwnedByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("name ASC").
		Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (r *repository) FindWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&workspace).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
		}
		return nil, err
	}
	return &workspace, nil
}

func (r *repository) RenameWorkspace(ctx context.Context, id uuid.UUID, name string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Workspace{}).
		Where("id = ?", id).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
	}
	return nil
}

func (r *repository) MembersOf(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) EnsureMember(ctx context.Context, member *models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO workspace_members (id, workspace_id, user_id, role, display_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (workspace_id, user_id) DO NOTHING`,
		member.ID, member.WorkspaceID, member.UserID, member.Role, member.DisplayName,
	).Error
}

func (r *repository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.WorkspaceMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

// Bootstrap runs the find-or-create workspace function shipped with the
// migrations. It also adopts any rows the user stamped before workspaces
// existed.
func (r *repository) Bootstrap(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	var workspaceID uuid.UUID
	if err := r.db.WithContext(ctx).
		Raw(`SELECT javi_bootstrap_workspace(?, ?)`, userID, name).
		Scan(&workspaceID).Error; err != nil {
		return uuid.Nil, err
	}
	return workspaceID, nil
}

func (r *repository) DeleteTenantData(ctx context.Context, workspaceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tenantTables {
			if err := tx.Exec(
				`DELETE FROM `+table+` WHERE workspace_id = ?`, workspaceID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
