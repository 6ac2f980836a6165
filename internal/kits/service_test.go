package kits

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	dbtypes "github.com/javi-app/javi-backend/pkg/db/types"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

type stubKitRepo struct {
	kits map[uuid.UUID]*models.Kit
}

func newStubKitRepo(kits ...*models.Kit) *stubKitRepo {
	s := &stubKitRepo{kits: make(map[uuid.UUID]*models.Kit)}
	for _, k := range kits {
		s.kits[k.ID] = k
	}
	return s
}

func (s *stubKitRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubKitRepo) List(ctx context.Context, tc tenancy.Context) ([]models.Kit, error) {
	var out []models.Kit
	for _, k := range s.kits {
		out = append(out, *k)
	}
	return out, nil
}

func (s *stubKitRepo) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error) {
	kit, ok := s.kits[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
	}
	copied := *kit
	return &copied, nil
}

func (s *stubKitRepo) Create(ctx context.Context, tc tenancy.Context, kit *models.Kit) error {
	copied := *kit
	s.kits[kit.ID] = &copied
	return nil
}

func (s *stubKitRepo) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	kit, ok := s.kits[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
	}
	if name, ok := values["name"].(string); ok {
		kit.Name = name
	}
	if ids, ok := values["item_ids"].(dbtypes.UUIDArray); ok {
		kit.ItemIDs = ids
	}
	return nil
}

func (s *stubKitRepo) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	if _, ok := s.kits[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
	}
	delete(s.kits, id)
	return nil
}

type stubGearStore struct {
	items []models.GearItem
}

func (s *stubGearStore) List(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error) {
	return s.items, nil
}

func newTestService(t *testing.T, repo Repository, gear GearStore) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Gear: gear})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func gearItems(n int) []models.GearItem {
	items := make([]models.GearItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.GearItem{ID: uuid.New(), Category: enums.GearCategoryCamera, Name: "Camera"})
	}
	return items
}

func TestCreateDedupesAndValidatesContents(t *testing.T) {
	items := gearItems(2)
	repo := newStubKitRepo()
	svc := newTestService(t, repo, &stubGearStore{items: items})
	ctx := context.Background()

	kit, err := svc.Create(ctx, tenancy.Legacy(), "Interview Kit",
		[]uuid.UUID{items[0].ID, items[1].ID, items[0].ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(kit.ItemIDs) != 2 {
		t.Fatalf("duplicates must collapse, got %d ids", len(kit.ItemIDs))
	}

	_, err = svc.Create(ctx, tenancy.Legacy(), "Ghost Kit", []uuid.UUID{uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown gear must be rejected, got %v", err)
	}

	if _, err := svc.Create(ctx, tenancy.Legacy(), "", []uuid.UUID{items[0].ID}); err == nil {
		t.Fatal("empty name must be rejected")
	}
	if _, err := svc.Create(ctx, tenancy.Legacy(), "Empty Kit", nil); err == nil {
		t.Fatal("empty contents must be rejected")
	}
}

func TestRemoveItemRefsScrubsEveryKit(t *testing.T) {
	items := gearItems(3)
	gone := items[2].ID
	kitA := &models.Kit{ID: uuid.New(), Name: "A", ItemIDs: dbtypes.UUIDArray{items[0].ID, gone}}
	kitB := &models.Kit{ID: uuid.New(), Name: "B", ItemIDs: dbtypes.UUIDArray{gone}}
	kitC := &models.Kit{ID: uuid.New(), Name: "C", ItemIDs: dbtypes.UUIDArray{items[1].ID}}
	repo := newStubKitRepo(kitA, kitB, kitC)
	svc := newTestService(t, repo, &stubGearStore{items: items})

	if err := svc.RemoveItemRefs(context.Background(), tenancy.Legacy(), []uuid.UUID{gone}); err != nil {
		t.Fatalf("RemoveItemRefs: %v", err)
	}
	if repo.kits[kitA.ID].ItemIDs.Contains(gone) {
		t.Fatal("kit A still references deleted gear")
	}
	if len(repo.kits[kitB.ID].ItemIDs) != 0 {
		t.Fatal("kit B should be emptied")
	}
	if len(repo.kits[kitC.ID].ItemIDs) != 1 {
		t.Fatal("kit C must be untouched")
	}
}

func TestUpdateReplacesContents(t *testing.T) {
	items := gearItems(2)
	kit := &models.Kit{ID: uuid.New(), Name: "A", ItemIDs: dbtypes.UUIDArray{items[0].ID}}
	repo := newStubKitRepo(kit)
	svc := newTestService(t, repo, &stubGearStore{items: items})

	name := "A/V Kit"
	newIDs := []uuid.UUID{items[1].ID}
	updated, err := svc.Update(context.Background(), tenancy.Legacy(), kit.ID, UpdateInput{
		Name:    &name,
		ItemIDs: &newIDs,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "A/V Kit" || !updated.ItemIDs.Contains(items[1].ID) || updated.ItemIDs.Contains(items[0].ID) {
		t.Fatalf("unexpected kit %+v", updated)
	}
}

func TestDeleteUnknownKit(t *testing.T) {
	svc := newTestService(t, newStubKitRepo(), &stubGearStore{})
	err := svc.Delete(context.Background(), tenancy.Legacy(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
