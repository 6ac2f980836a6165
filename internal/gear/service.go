package gear

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// UsageChecker reports which items currently hold a live reservation or sit
// inside an open checkout. Implemented by the booking engine.
type UsageChecker interface {
	InUseItemIDs(ctx context.Context, tc tenancy.Context) (map[uuid.UUID]struct{}, error)
}

// KitScrubber removes dangling item references after deletions.
type KitScrubber interface {
	RemoveItemRefs(ctx context.Context, tc tenancy.Context, itemIDs []uuid.UUID) error
}

// ServiceParams groups dependencies for the gear service.
type ServiceParams struct {
	Repo   Repository
	Usage  UsageChecker
	Kits   KitScrubber
	Logger *logger.Logger
}

// Service owns the logical-item view over physical gear copies.
type Service struct {
	repo  Repository
	usage UsageChecker
	kits  KitScrubber
	logg  *logger.Logger
}

// NewService builds a gear service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Usage == nil {
		return nil, errors.New("usage checker is required")
	}
	return &Service{
		repo:  params.Repo,
		usage: params.Usage,
		kits:  params.Kits,
		logg:  params.Logger,
	}, nil
}

// ListGroups returns the grouped projection of the tenant's gear.
func (s *Service) ListGroups(ctx context.Context, tc tenancy.Context) ([]Group, error) {
	items, err := s.repo.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	return GroupItems(items), nil
}

// ListItems returns the flat physical copies.
func (s *Service) ListItems(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error) {
	return s.repo.List(ctx, tc)
}

// FindItem returns one physical copy.
func (s *Service) FindItem(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.GearItem, error) {
	return s.repo.FindByID(ctx, tc, id)
}

// CreateGroupInput describes a logical item with a desired copy count.
type CreateGroupInput struct {
	Category    enums.GearCategory
	Name        string
	Quantity    int
	Description string
	AssetTag    string
	Serial      string
	QRCode      string
	Location    string
	ImageURL    string
}

// CreateGroup creates Quantity physical copies of a logical item. Identifying
// fields land on the first copy only; duplicating an asset tag across copies
// would break scan matching.
func (s *Service) CreateGroup(ctx context.Context, tc tenancy.Context, in CreateGroupInput) ([]models.GearItem, error) {
	base := strings.TrimSpace(in.Name)
	if base == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !in.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gear category")
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	created := make([]models.GearItem, 0, in.Quantity)
	for copyNo := 1; copyNo <= in.Quantity; copyNo++ {
		item := models.GearItem{
			ID:          uuid.New(),
			Category:    in.Category,
			Name:        CopyName(base, copyNo),
			Description: in.Description,
			Location:    in.Location,
			ImageURL:    in.ImageURL,
		}
		if copyNo == 1 {
			item.AssetTag = strings.TrimSpace(in.AssetTag)
			item.Serial = strings.TrimSpace(in.Serial)
			item.QRCode = strings.TrimSpace(in.QRCode)
		}
		if err := s.repo.Create(ctx, tc, &item); err != nil {
			return created, err
		}
		created = append(created, item)
	}
	return created, nil
}

// ReconcileInput identifies a group and the desired end state.
type ReconcileInput struct {
	Category    enums.GearCategory
	BaseName    string
	NewName     string
	NewCategory enums.GearCategory
	Quantity    int
	Description *string
	Location    *string
	ImageURL    *string
}

// ReconcileResult reports what the three-step quantity reconcile did.
type ReconcileResult struct {
	Renamed   int
	Added     int
	Removed   int
	Shortfall int
}

// Reconcile applies a desired quantity (and optional rename/recategorize) to
// an existing group: rename preserving suffixes, then grow with blanked
// identifiers, then shrink from the highest copy down, skipping in-use copies
// and reporting the shortfall instead of failing partway.
func (s *Service) Reconcile(ctx context.Context, tc tenancy.Context, in ReconcileInput) (ReconcileResult, error) {
	var result ReconcileResult

	group, err := s.findGroup(ctx, tc, in.Category, in.BaseName)
	if err != nil {
		return result, err
	}
	if in.Quantity < 0 {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	newBase := group.BaseName
	if trimmed := strings.TrimSpace(in.NewName); trimmed != "" {
		newBase = trimmed
	}
	newCategory := group.Category
	if in.NewCategory != "" {
		if !in.NewCategory.IsValid() {
			return result, pkgerrors.New(pkgerrors.CodeValidation, "invalid gear category")
		}
		newCategory = in.NewCategory
	}

	// step 1: rename every copy, preserving its suffix number
	for _, item := range group.Items {
		_, copyNo := SplitName(item.Name)
		values := map[string]any{}
		if newBase != group.BaseName {
			values["name"] = CopyName(newBase, copyNo)
		}
		if newCategory != group.Category {
			values["category"] = newCategory
		}
		if in.Description != nil {
			values["description"] = *in.Description
		}
		if in.Location != nil {
			values["location"] = *in.Location
		}
		if in.ImageURL != nil {
			values["image_url"] = *in.ImageURL
		}
		if len(values) == 0 {
			continue
		}
		if err := s.repo.Update(ctx, tc, item.ID, values); err != nil {
			return result, err
		}
		if newBase != group.BaseName {
			result.Renamed++
		}
	}

	current := group.Quantity()

	// step 2: grow with blanked identifying fields
	if in.Quantity > current {
		primary := group.Primary()
		nextCopy := group.MaxCopyNo() + 1
		for added := 0; added < in.Quantity-current; added++ {
			item := models.GearItem{
				ID:          uuid.New(),
				Category:    newCategory,
				Name:        CopyName(newBase, nextCopy),
				Description: primary.Description,
				Location:    primary.Location,
				ImageURL:    primary.ImageURL,
			}
			if in.Description != nil {
				item.Description = *in.Description
			}
			if in.Location != nil {
				item.Location = *in.Location
			}
			if in.ImageURL != nil {
				item.ImageURL = *in.ImageURL
			}
			if err := s.repo.Create(ctx, tc, &item); err != nil {
				return result, err
			}
			result.Added++
			nextCopy++
		}
	}

	// step 3: shrink from the highest copy down, never touching in-use copies
	if in.Quantity < current {
		inUse, err := s.usage.InUseItemIDs(ctx, tc)
		if err != nil {
			return result, err
		}
		descending := make([]models.GearItem, len(group.Items))
		copy(descending, group.Items)
		sort.SliceStable(descending, func(i, j int) bool {
			_, ni := SplitName(descending[i].Name)
			_, nj := SplitName(descending[j].Name)
			return ni > nj
		})

		want := current - in.Quantity
		var removedIDs []uuid.UUID
		for _, item := range descending {
			if len(removedIDs) == want {
				break
			}
			if _, busy := inUse[item.ID]; busy {
				continue
			}
			if err := s.repo.Delete(ctx, tc, item.ID); err != nil {
				return result, err
			}
			removedIDs = append(removedIDs, item.ID)
		}
		result.Removed = len(removedIDs)
		result.Shortfall = want - result.Removed
		s.scrubKits(ctx, tc, removedIDs)
	}

	return result, nil
}

// DeleteGroupResult reports the outcome of a whole-group delete.
type DeleteGroupResult struct {
	Deleted int
}

// DeleteGroup removes every copy of a logical item. Unlike shrink this is
// all-or-nothing: one in-use copy blocks the whole delete.
func (s *Service) DeleteGroup(ctx context.Context, tc tenancy.Context, category enums.GearCategory, baseName string) (DeleteGroupResult, error) {
	var result DeleteGroupResult

	group, err := s.findGroup(ctx, tc, category, baseName)
	if err != nil {
		return result, err
	}

	inUse, err := s.usage.InUseItemIDs(ctx, tc)
	if err != nil {
		return result, err
	}
	blocking := 0
	for _, item := range group.Items {
		if _, busy := inUse[item.ID]; busy {
			blocking++
		}
	}
	if blocking > 0 {
		return result, pkgerrors.New(pkgerrors.CodeStateConflict, "group has copies in use").
			WithDetails(map[string]any{"blocking": blocking})
	}

	var removedIDs []uuid.UUID
	for _, item := range group.Items {
		if err := s.repo.Delete(ctx, tc, item.ID); err != nil {
			return result, err
		}
		removedIDs = append(removedIDs, item.ID)
	}
	result.Deleted = len(removedIDs)
	s.scrubKits(ctx, tc, removedIDs)
	return result, nil
}

// UpdateItem edits one physical copy.
func (s *Service) UpdateItem(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error {
	if len(values) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return s.repo.Update(ctx, tc, id, values)
}

// DeleteItem removes one physical copy unless it is in use.
func (s *Service) DeleteItem(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	inUse, err := s.usage.InUseItemIDs(ctx, tc)
	if err != nil {
		return err
	}
	if _, busy := inUse[id]; busy {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "gear item is reserved or checked out")
	}
	if err := s.repo.Delete(ctx, tc, id); err != nil {
		return err
	}
	s.scrubKits(ctx, tc, []uuid.UUID{id})
	return nil
}

func (s *Service) findGroup(ctx context.Context, tc tenancy.Context, category enums.GearCategory, baseName string) (*Group, error) {
	items, err := s.repo.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSpace(baseName)
	for _, group := range GroupItems(items) {
		if group.Category == category && group.BaseName == base {
			g := group
			return &g, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gear group not found")
}

// scrubKits is best-effort: a dangling kit reference is cosmetic, a failed
// delete is not.
func (s *Service) scrubKits(ctx context.Context, tc tenancy.Context, itemIDs []uuid.UUID) {
	if s.kits == nil || len(itemIDs) == 0 {
		return
	}
	if err := s.kits.RemoveItemRefs(ctx, tc, itemIDs); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to scrub kit item references")
	}
}
