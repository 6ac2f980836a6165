package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/middleware"
	"github.com/javi-app/javi-backend/api/validators"
	"github.com/javi-app/javi-backend/internal/tenancy"
)

// requireScope pulls the tenant scope the workspace middleware attached.
func requireScope(r *http.Request) (tenancy.Context, error) {
	return tenancy.RequireWorkspace(r.Context())
}

// pathUUID parses a chi route parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return validators.ParseUUID(chi.URLParam(r, name), name)
}

// requestActor identifies the authenticated caller for audit columns.
func requestActor(r *http.Request) (*uuid.UUID, string) {
	userID := middleware.UserIDFromContext(r.Context())
	email := middleware.EmailFromContext(r.Context())
	if userID == uuid.Nil {
		return nil, email
	}
	return &userID, email
}
