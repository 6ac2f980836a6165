package team

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// ServiceParams groups dependencies for the team service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service manages the crew contact roster.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the team service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// List returns the roster sorted by name.
func (s *Service) List(ctx context.Context, tc tenancy.Context) ([]models.TeamMember, error) {
	return s.repo.List(ctx, tc)
}

// Find returns one contact.
func (s *Service) Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.TeamMember, error) {
	return s.repo.FindByID(ctx, tc, id)
}

// CreateInput describes a new crew contact.
type CreateInput struct {
	Name  string
	Email string
	Phone string
	Role  string
	Notes string
}

// Create inserts a contact card.
func (s *Service) Create(ctx context.Context, tc tenancy.Context, in CreateInput) (*models.TeamMember, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	member := models.TeamMember{
		ID:    uuid.New(),
		Name:  name,
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Role:  strings.TrimSpace(in.Role),
		Notes: in.Notes,
	}
	if err := s.repo.Create(ctx, tc, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateInput carries editable contact fields. Nil means unchanged.
type UpdateInput struct {
	Name  *string
	Email *string
	Phone *string
	Role  *string
	Notes *string
}

// Update edits a contact card.
func (s *Service) Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in UpdateInput) (*models.TeamMember, error) {
	if _, err := s.repo.FindByID(ctx, tc, id); err != nil {
		return nil, err
	}
	values := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		values["name"] = name
	}
	if in.Email != nil {
		values["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		values["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		values["role"] = strings.TrimSpace(*in.Role)
	}
	if in.Notes != nil {
		values["notes"] = *in.Notes
	}
	if len(values) > 0 {
		if err := s.repo.Update(ctx, tc, id, values); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, tc, id)
}

// Delete removes a contact card.
func (s *Service) Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, tc, id)
}
