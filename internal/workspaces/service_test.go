package workspaces

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

type stubWorkspaceRepo struct {
	memberships    map[uuid.UUID][]Membership
	membershipsErr error
	owned          map[uuid.UUID][]models.Workspace
	workspaces     map[uuid.UUID]*models.Workspace
	ensured        []models.WorkspaceMember
	removed        []uuid.UUID
	wiped          []uuid.UUID
	bootstrapID    uuid.UUID
	bootstrapErr   error
}

func newStubWorkspaceRepo() *stubWorkspaceRepo {
	return &stubWorkspaceRepo{
		memberships: make(map[uuid.UUID][]Membership),
		owned:       make(map[uuid.UUID][]models.Workspace),
		workspaces:  make(map[uuid.UUID]*models.Workspace),
	}
}

func (s *stubWorkspaceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWorkspaceRepo) MembershipsByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	if s.membershipsErr != nil {
		return nil, s.membershipsErr
	}
	return s.memberships[userID], nil
}

func (s *stubWorkspaceRepo) OwnedByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	return s.owned[userID], nil
}

func (s *stubWorkspaceRepo) FindWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	workspace, ok := s.workspaces[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
	}
	return workspace, nil
}

func (s *stubWorkspaceRepo) RenameWorkspace(ctx context.Context, id uuid.UUID, name string) error {
	workspace, ok := s.workspaces[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
	}
	workspace.Name = name
	return nil
}

func (s *stubWorkspaceRepo) MembersOf(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	return nil, nil
}

func (s *stubWorkspaceRepo) EnsureMember(ctx context.Context, member *models.WorkspaceMember) error {
	s.ensured = append(s.ensured, *member)
	return nil
}

func (s *stubWorkspaceRepo) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	s.removed = append(s.removed, userID)
	return nil
}

func (s *stubWorkspaceRepo) Bootstrap(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	if s.bootstrapErr != nil {
		return uuid.Nil, s.bootstrapErr
	}
	return s.bootstrapID, nil
}

func (s *stubWorkspaceRepo) DeleteTenantData(ctx context.Context, workspaceID uuid.UUID) error {
	s.wiped = append(s.wiped, workspaceID)
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestResolveFallsBackToLegacyWhenTablesAbsent(t *testing.T) {
	repo := newStubWorkspaceRepo()
	repo.membershipsErr = errors.New(`pq: relation "workspace_members" does not exist`)
	svc := newTestService(t, repo)

	tc, err := svc.Resolve(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !tc.IsLegacy() {
		t.Fatal("missing tables must resolve to legacy scope")
	}
}

func TestResolveNeverDowngradesPermissionDenied(t *testing.T) {
	repo := newStubWorkspaceRepo()
	repo.membershipsErr = errors.New("pq: permission denied for table workspace_members")
	svc := newTestService(t, repo)

	_, err := svc.Resolve(context.Background(), uuid.New(), nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("denied lookup must block, got %v", err)
	}
}

func TestResolvePrefersSelectedWorkspace(t *testing.T) {
	userID := uuid.New()
	alpha := Membership{WorkspaceID: uuid.New(), WorkspaceName: "Alpha", Role: enums.MemberRoleMember}
	beta := Membership{WorkspaceID: uuid.New(), WorkspaceName: "Beta", Role: enums.MemberRoleOwner}
	repo := newStubWorkspaceRepo()
	repo.memberships[userID] = []Membership{alpha, beta}
	svc := newTestService(t, repo)
	ctx := context.Background()

	tc, err := svc.Resolve(ctx, userID, &beta.WorkspaceID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.WorkspaceID == nil || *tc.WorkspaceID != beta.WorkspaceID {
		t.Fatal("preferred workspace must win when the user holds a seat")
	}

	// unknown preference falls back to the first by name
	ghost := uuid.New()
	tc, err = svc.Resolve(ctx, userID, &ghost)
	if err != nil {
		t.Fatalf("Resolve fallback: %v", err)
	}
	if tc.WorkspaceID == nil || *tc.WorkspaceID != alpha.WorkspaceID {
		t.Fatal("unknown preference must fall back to first membership")
	}
}

func TestResolveHealsMissingOwnerMembership(t *testing.T) {
	userID := uuid.New()
	workspace := models.Workspace{ID: uuid.New(), Name: "Javi Films", CreatedBy: userID}
	repo := newStubWorkspaceRepo()
	repo.owned[userID] = []models.Workspace{workspace}
	svc := newTestService(t, repo)

	tc, err := svc.Resolve(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.IsLegacy() || tc.WorkspaceID == nil || *tc.WorkspaceID != workspace.ID {
		t.Fatalf("owned workspace must be restored, got %+v", tc)
	}
	if tc.Role != enums.MemberRoleOwner {
		t.Fatalf("restored seat must be owner, got %s", tc.Role)
	}
	if len(repo.ensured) != 1 {
		t.Fatalf("membership row must be re-created, got %d", len(repo.ensured))
	}
}

func TestResolveNoMembershipsIsLegacy(t *testing.T) {
	svc := newTestService(t, newStubWorkspaceRepo())
	tc, err := svc.Resolve(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !tc.IsLegacy() {
		t.Fatal("user without workspaces must get legacy scope")
	}
}

func TestRenameOwnerOnly(t *testing.T) {
	workspace := &models.Workspace{ID: uuid.New(), Name: "Old Name"}
	repo := newStubWorkspaceRepo()
	repo.workspaces[workspace.ID] = workspace
	svc := newTestService(t, repo)
	ctx := context.Background()

	memberScope := tenancy.Multi(workspace.ID, "Old Name", enums.MemberRoleMember)
	_, err := svc.Rename(ctx, memberScope, "New Name")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("member rename must be forbidden, got %v", err)
	}

	ownerScope := tenancy.Multi(workspace.ID, "Old Name", enums.MemberRoleOwner)
	renamed, err := svc.Rename(ctx, ownerScope, "New Name")
	if err != nil {
		t.Fatalf("owner rename: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Fatalf("rename not applied, got %q", renamed.Name)
	}
}

func TestLeaveBlockedForOwner(t *testing.T) {
	workspaceID := uuid.New()
	repo := newStubWorkspaceRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()
	ctx := context.Background()

	err := svc.Leave(ctx, tenancy.Multi(workspaceID, "W", enums.MemberRoleOwner), userID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("owner leave must be blocked, got %v", err)
	}

	if err := svc.Leave(ctx, tenancy.Multi(workspaceID, "W", enums.MemberRoleMember), userID); err != nil {
		t.Fatalf("member leave: %v", err)
	}
	if len(repo.removed) != 1 {
		t.Fatal("member seat must be removed")
	}
}

func TestDeleteAllDataOwnerOnly(t *testing.T) {
	workspaceID := uuid.New()
	repo := newStubWorkspaceRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	err := svc.DeleteAllData(ctx, tenancy.Multi(workspaceID, "W", enums.MemberRoleMember))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("member wipe must be forbidden, got %v", err)
	}

	if err := svc.DeleteAllData(ctx, tenancy.Multi(workspaceID, "W", enums.MemberRoleOwner)); err != nil {
		t.Fatalf("owner wipe: %v", err)
	}
	if len(repo.wiped) != 1 || repo.wiped[0] != workspaceID {
		t.Fatal("tenant data must be wiped for the workspace")
	}
}

func TestBootstrapRequiresName(t *testing.T) {
	repo := newStubWorkspaceRepo()
	workspace := &models.Workspace{ID: uuid.New(), Name: "Javi Films"}
	repo.workspaces[workspace.ID] = workspace
	repo.bootstrapID = workspace.ID
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Bootstrap(ctx, uuid.New(), "   "); err == nil {
		t.Fatal("blank name must be rejected")
	}
	created, err := svc.Bootstrap(ctx, uuid.New(), "Javi Films")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if created.ID != workspace.ID {
		t.Fatal("bootstrap must return the owned workspace")
	}
}
