package kits

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	dbtypes "github.com/javi-app/javi-backend/pkg/db/types"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// GearStore lists the tenant's items so kit contents can be validated.
type GearStore interface {
	List(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error)
}

// ServiceParams groups dependencies for the kit service.
type ServiceParams struct {
	Repo   Repository
	Gear   GearStore
	Logger *logger.Logger
}

// Service manages named bundles of gear items.
type Service struct {
	repo Repository
	gear GearStore
	logg *logger.Logger
}

// NewService builds the kit service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Gear == nil {
		return nil, errors.New("gear store is required")
	}
	return &Service{repo: params.Repo, gear: params.Gear, logg: params.Logger}, nil
}

// List returns the tenant's kits sorted by name.
func (s *Service) List(ctx context.Context, tc tenancy.Context) ([]models.Kit, error) {
	return s.repo.List(ctx, tc)
}

// Find returns one kit.
func (s *Service) Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error) {
	return s.repo.FindByID(ctx, tc, id)
}

// FindByID satisfies the reservation service's kit store.
func (s *Service) FindByID(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error) {
	return s.repo.FindByID(ctx, tc, id)
}

// Create validates the contents against the tenant's gear and inserts a kit.
// Duplicate ids collapse; unknown ids are rejected.
func (s *Service) Create(ctx context.Context, tc tenancy.Context, name string, itemIDs []uuid.UUID) (*models.Kit, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	deduped, err := s.validateContents(ctx, tc, itemIDs)
	if err != nil {
		return nil, err
	}
	kit := models.Kit{
		ID:      uuid.New(),
		Name:    name,
		ItemIDs: deduped,
	}
	if err := s.repo.Create(ctx, tc, &kit); err != nil {
		return nil, err
	}
	return &kit, nil
}

// UpdateInput carries editable kit fields. Nil means unchanged.
type UpdateInput struct {
	Name    *string
	ItemIDs *[]uuid.UUID
}

// Update edits a kit's name or contents.
func (s *Service) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in UpdateInput) (*models.Kit, error) {
	if _, err := s.repo.FindByID(ctx, tc, id); err != nil {
		return nil, err
	}
	values := map[string]any{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		values["name"] = *in.Name
	}
	if in.ItemIDs != nil {
		deduped, err := s.validateContents(ctx, tc, *in.ItemIDs)
		if err != nil {
			return nil, err
		}
		values["item_ids"] = deduped
	}
	if len(values) > 0 {
		if err := s.repo.Update(ctx, tc, id, values); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, tc, id)
}

// Delete removes a kit. Reservations made from it are untouched.
func (s *Service) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, tc, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tc, id)
}

// RemoveItemRefs strips the given item ids from every kit that references
// them. Called when gear is deleted so kits never point at ghosts.
func (s *Service) RemoveItemRefs(ctx context.Context, tc tenancy.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	kits, err := s.repo.List(ctx, tc)
	if err != nil {
		return err
	}
	for _, kit := range kits {
		trimmed := kit.ItemIDs.Without(itemIDs...)
		if len(trimmed) == len(kit.ItemIDs) {
			continue
		}
		if err := s.repo.Update(ctx, tc, kit.ID, map[string]any{"item_ids": trimmed}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validateContents(ctx context.Context, tc tenancy.Context, itemIDs []uuid.UUID) (dbtypes.UUIDArray, error) {
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a kit needs at least one item")
	}
	items, err := s.gear.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		known[item.ID] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(itemIDs))
	deduped := make(dbtypes.UUIDArray, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit references unknown gear").
				WithDetails(map[string]any{"gear_item_id": id})
		}
		deduped = append(deduped, id)
	}
	return deduped, nil
}
