package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/middleware"
	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/internal/workspaces"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

type workspaceService interface {
	List(ctx context.Context, userID uuid.UUID) ([]workspaces.Membership, error)
	Bootstrap(ctx context.Context, userID uuid.UUID, name string) (*models.Workspace, error)
	Rename(ctx context.Context, tc tenancy.Context, name string) (*models.Workspace, error)
	Members(ctx context.Context, tc tenancy.Context) ([]models.WorkspaceMember, error)
	Leave(ctx context.Context, tc tenancy.Context, userID uuid.UUID) error
	DeleteAllData(ctx context.Context, tc tenancy.Context) error
}

type workspaceNameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// WorkspaceList returns every workspace the caller belongs to.
func WorkspaceList(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		memberships, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, memberships)
	}
}

// WorkspaceBootstrap provisions a workspace and adopts the caller's legacy rows.
func WorkspaceBootstrap(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body workspaceNameRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workspace, err := svc.Bootstrap(r.Context(), userID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, workspace)
	}
}

// WorkspaceRename renames the active workspace. Owner only.
func WorkspaceRename(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body workspaceNameRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workspace, err := svc.Rename(r.Context(), tc, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, workspace)
	}
}

// WorkspaceMembers lists the active workspace roster.
func WorkspaceMembers(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.Members(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

// WorkspaceLeave removes the caller from the active workspace.
func WorkspaceLeave(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := svc.Leave(r.Context(), tc, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "left"})
	}
}

// WorkspaceDeleteData wipes every scoped row in the active workspace. Owner only.
func WorkspaceDeleteData(svc workspaceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAllData(r.Context(), tc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
