package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/internal/tenancy"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

const workspaceIDHeader = "X-Workspace-Id"

// WorkspaceResolver decides the tenant scope for an authenticated user.
type WorkspaceResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, preferredID *uuid.UUID) (tenancy.Context, error)
}

// Workspace resolves the tenant scope for every request behind Auth. The
// X-Workspace-Id header selects among the user's workspaces; it never grants
// access to one the user is not a member of.
func Workspace(resolver WorkspaceResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			var preferred *uuid.UUID
			if raw := strings.TrimSpace(r.Header.Get(workspaceIDHeader)); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "workspace header must be a uuid"))
					return
				}
				preferred = &id
			}

			tc, err := resolver.Resolve(r.Context(), userID, preferred)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := tenancy.WithContext(r.Context(), tc)
			if logg != nil {
				if tc.IsLegacy() {
					ctx = logg.WithWorkspaceMode(ctx, "legacy")
				} else {
					ctx = logg.WithWorkspaceMode(ctx, "multi")
					ctx = logg.WithWorkspaceID(ctx, tc.WorkspaceID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
