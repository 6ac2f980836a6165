package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	teamsvc "github.com/javi-app/javi-backend/internal/team"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/logger"
)

type teamService interface {
	List(ctx context.Context, tc tenancy.Context) ([]models.TeamMember, error)
	Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.TeamMember, error)
	Create(ctx context.Context, tc tenancy.Context, in teamsvc.CreateInput) (*models.TeamMember, error)
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in teamsvc.UpdateInput) (*models.TeamMember, error)
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

// TeamList returns the crew roster.
func TeamList(svc teamService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.List(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

// TeamGet returns one contact card.
func TeamGet(svc teamService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "memberID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Find(r.Context(), tc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

type createTeamMemberRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Role  string `json:"role,omitempty" validate:"omitempty,max=120"`
	Notes string `json:"notes,omitempty"`
}

// TeamCreate adds a contact card to the roster.
func TeamCreate(svc teamService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTeamMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Create(r.Context(), tc, teamsvc.CreateInput{
			Name:  body.Name,
			Email: body.Email,
			Phone: body.Phone,
			Role:  body.Role,
			Notes: body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

type updateTeamMemberRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Role  *string `json:"role,omitempty" validate:"omitempty,max=120"`
	Notes *string `json:"notes,omitempty"`
}

// TeamUpdate edits a contact card.
func TeamUpdate(svc teamService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "memberID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTeamMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Update(r.Context(), tc, id, teamsvc.UpdateInput{
			Name:  body.Name,
			Email: body.Email,
			Phone: body.Phone,
			Role:  body.Role,
			Notes: body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// TeamDelete removes a contact card.
func TeamDelete(svc teamService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "memberID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), tc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
