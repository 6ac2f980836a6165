package workspaces

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// ServiceParams groups dependencies for the workspace service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service resolves tenant scopes and manages workspace membership.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the workspace service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// Resolve decides the tenant scope for a request.
//
// A missing workspace_members relation means the database predates the
// workspace migration: the caller gets legacy single-tenant scope. A
// permission-denied error is NOT drift and never downgrades to legacy; the
// request is blocked. With memberships present, preferredID wins when the
// user actually holds a seat there, otherwise the first workspace by name.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, preferredID *uuid.UUID) (tenancy.Context, error) {
	memberships, err := s.repo.MembershipsByUser(ctx, userID)
	if err != nil {
		switch db.Classify(err) {
		case db.KindCollectionAbsent:
			if s.logg != nil {
				s.logg.Warn(ctx, "workspace tables absent, serving legacy scope")
			}
			return tenancy.Legacy(), nil
		case db.KindPermissionDenied:
			return tenancy.Context{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "workspace lookup denied")
		default:
			return tenancy.Context{}, err
		}
	}

	if len(memberships) == 0 {
		healed, err := s.healOwnerMemberships(ctx, userID)
		if err != nil {
			return tenancy.Context{}, err
		}
		memberships = healed
	}
	if len(memberships) == 0 {
		return tenancy.Legacy(), nil
	}

	if preferredID != nil {
		for _, m := range memberships {
			if m.WorkspaceID == *preferredID {
				return tenancy.Multi(m.WorkspaceID, m.WorkspaceName, m.Role), nil
			}
		}
	}
	first := memberships[0]
	return tenancy.Multi(first.WorkspaceID, first.WorkspaceName, first.Role), nil
}

// healOwnerMemberships re-creates owner seats for workspaces the user
// created. Membership rows went missing in the wild after partial restores.
func (s *Service) healOwnerMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	owned, err := s.repo.OwnedByUser(ctx, userID)
	if err != nil {
		if db.Classify(err) == db.KindCollectionAbsent {
			return nil, nil
		}
		return nil, err
	}
	if len(owned) == 0 {
		return nil, nil
	}
	memberships := make([]Membership, 0, len(owned))
	for _, workspace := range owned {
		member := models.WorkspaceMember{
			ID:          uuid.New(),
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        enums.MemberRoleOwner,
		}
		if err := s.repo.EnsureMember(ctx, &member); err != nil {
			return nil, err
		}
		memberships = append(memberships, Membership{
			WorkspaceID:   workspace.ID,
			WorkspaceName: workspace.Name,
			Role:          enums.MemberRoleOwner,
		})
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "restored missing owner memberships")
	}
	return memberships, nil
}

// List returns every workspace the user belongs to.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	return s.repo.MembershipsByUser(ctx, userID)
}

// Bootstrap finds or creates the user's owned workspace and adopts any
// unstamped rows they created before the workspace migration. One owned
// workspace per user.
func (s *Service) Bootstrap(ctx context.Context, userID uuid.UUID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workspace name is required")
	}
	workspaceID, err := s.repo.Bootstrap(ctx, userID, name)
	if err != nil {
		if db.Classify(err) == db.KindCollectionAbsent {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "workspace tables not migrated yet")
		}
		return nil, err
	}
	return s.repo.FindWorkspace(ctx, workspaceID)
}

// Rename changes the workspace name. Owner only.
func (s *Service) Rename(ctx context.Context, tc tenancy.Context, name string) (*models.Workspace, error) {
	workspaceID, err := requireWorkspaceID(tc)
	if err != nil {
		return nil, err
	}
	if !tc.CanManage() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can rename a workspace")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workspace name is required")
	}
	if err := s.repo.RenameWorkspace(ctx, workspaceID, name); err != nil {
		return nil, err
	}
	return s.repo.FindWorkspace(ctx, workspaceID)
}

// Members lists the seats of the current workspace.
func (s *Service) Members(ctx context.Context, tc tenancy.Context) ([]models.WorkspaceMember, error) {
	workspaceID, err := requireWorkspaceID(tc)
	if err != nil {
		return nil, err
	}
	return s.repo.MembersOf(ctx, workspaceID)
}

// Leave gives up the caller's seat. Owners cannot leave their own
// workspace; the tenant would be orphaned.
func (s *Service) Leave(ctx context.Context, tc tenancy.Context, userID uuid.UUID) error {
	workspaceID, err := requireWorkspaceID(tc)
	if err != nil {
		return err
	}
	if tc.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the owner cannot leave their workspace")
	}
	return s.repo.RemoveMember(ctx, workspaceID, userID)
}

// DeleteAllData wipes every scoped row of the current workspace. Owner
// only; the workspace itself and its memberships survive.
func (s *Service) DeleteAllData(ctx context.Context, tc tenancy.Context) error {
	workspaceID, err := requireWorkspaceID(tc)
	if err != nil {
		return err
	}
	if !tc.CanManage() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete workspace data")
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithWorkspaceID(ctx, workspaceID.String()), "deleting all workspace data")
	}
	return s.repo.DeleteTenantData(ctx, workspaceID)
}

func requireWorkspaceID(tc tenancy.Context) (uuid.UUID, error) {
	if tc.IsLegacy() || tc.WorkspaceID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "workspace operations require a workspace scope")
	}
	return *tc.WorkspaceID, nil
}
