package tenancy

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/enums"
)

// Context describes the tenant scope resolved for a request. In multi mode
// every read and write is confined to one workspace; legacy mode means the
// database predates the workspace tables and rows carry no tenant stamp.
type Context struct {
	Mode          enums.WorkspaceMode
	WorkspaceID   *uuid.UUID
	WorkspaceName string
	Role          enums.MemberRole
}

// Legacy returns the scope used when the workspace tables do not exist.
func Legacy() Context {
	return Context{Mode: enums.WorkspaceModeLegacy}
}

// Multi returns a workspace-bound scope.
func Multi(workspaceID uuid.UUID, name string, role enums.MemberRole) Context {
	id := workspaceID
	return Context{
		Mode:          enums.WorkspaceModeMulti,
		WorkspaceID:   &id,
		WorkspaceName: name,
		Role:          role,
	}
}

// IsLegacy reports whether the scope is unstamped single-tenant data.
func (c Context) IsLegacy() bool {
	return c.Mode.IsLegacy()
}

// ScopeID returns the workspace id rows should be stamped with, nil in legacy mode.
func (c Context) ScopeID() *uuid.UUID {
	if c.IsLegacy() {
		return nil
	}
	return c.WorkspaceID
}

// CanManage reports whether the caller may perform owner-only operations.
func (c Context) CanManage() bool {
	if c.IsLegacy() {
		return true
	}
	return c.Role.CanManage()
}

type ctxKey struct{}

// WithContext attaches the tenant scope to the request context.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the tenant scope if one was attached.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// RequireWorkspace extracts the tenant scope or fails with an unauthorized error.
func RequireWorkspace(ctx context.Context) (Context, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return Context{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no workspace scope resolved for request")
	}
	if !tc.IsLegacy() && tc.WorkspaceID == nil {
		return Context{}, pkgerrors.New(pkgerrors.CodeInternal, "workspace scope missing workspace id")
	}
	return tc, nil
}
