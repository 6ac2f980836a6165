package scoped

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
	"github.com/javi-app/javi-backend/pkg/metrics"
)

// TeamTable is the one collection allowed to lag behind the workspace
// migration. Nothing else may run without a tenant stamp.
const TeamTable = "team_members"

// auditColumns are attribution fields that older deployments may not have.
// A write that trips over one of them is retried without that column rather
// than failed, so attribution degrades before the operation does.
var auditColumns = []string{
	"created_by",
	"created_by_email",
	"reserved_by",
	"reserved_by_email",
	"returned_by",
	"returned_by_email",
	"returned_at",
	"closed_by",
	"closed_by_email",
}

// teamTableUnscoped is process-wide: once one write proves the column is
// missing, every later team write skips the stamp instead of failing first.
var teamTableUnscoped atomic.Bool

// TeamTableUnscoped reports whether team writes currently skip the tenant stamp.
func TeamTableUnscoped() bool {
	return teamTableUnscoped.Load()
}

// ResetTeamTableFlag clears the drift flag. Test hook.
func ResetTeamTableFlag() {
	teamTableUnscoped.Store(false)
}

// Store wraps gorm with tenant scoping and schema-drift fallbacks.
type Store struct {
	db    *gorm.DB
	drift *metrics.DriftMetrics
	logg  *logger.Logger
}

// NewStore builds a scoped store over the provided database handle.
func NewStore(gdb *gorm.DB, drift *metrics.DriftMetrics, logg *logger.Logger) *Store {
	return &Store{db: gdb, drift: drift, logg: logg}
}

// WithTx rebinds the store to a transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	if tx == nil {
		return s
	}
	return &Store{db: tx, drift: s.drift, logg: s.logg}
}

// DB exposes the underlying handle for reads that compose their own queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Scope narrows a query to the tenant. Rows written before the workspace
// migration carry a NULL stamp and stay visible to whichever workspace
// adopted the database. A multi-mode scope without a workspace id is a bug
// upstream; the query fails rather than running unscoped.
func (s *Store) Scope(q *gorm.DB, tc tenancy.Context) *gorm.DB {
	if tc.IsLegacy() {
		return q
	}
	if tc.WorkspaceID == nil {
		_ = q.AddError(pkgerrors.New(pkgerrors.CodeInternal, "workspace scope missing workspace id"))
		return q
	}
	return q.Where("workspace_id = ? OR workspace_id IS NULL", *tc.WorkspaceID)
}

// Query starts a scoped query for the model.
func (s *Store) Query(ctx context.Context, tc tenancy.Context, model any) *gorm.DB {
	return s.Scope(s.db.WithContext(ctx).Model(model), tc)
}

// Create inserts the model, dropping columns the live schema does not have:
// the tenant stamp for the team table, audit attribution anywhere.
func (s *Store) Create(ctx context.Context, tc tenancy.Context, table string, model any) error {
	var omit []string
	if table == TeamTable && teamTableUnscoped.Load() {
		omit = append(omit, "workspace_id")
	}
	for attempt := 0; attempt <= len(auditColumns)+1; attempt++ {
		q := s.db.WithContext(ctx)
		if len(omit) > 0 {
			q = q.Omit(omit...)
		}
		err := q.Create(model).Error
		if err == nil {
			return nil
		}
		col, ok := s.missingColumn(ctx, table, err, omit)
		if !ok {
			return err
		}
		omit = append(omit, col)
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "insert kept hitting missing columns")
}

// Updates applies values to one row inside the tenant scope. The scoped
// filter already reaches rows written before the workspace migration (NULL
// stamp), so a zero-row match means the id is unknown or belongs to another
// workspace; either way the answer is not found, never an unscoped write.
func (s *Store) Updates(ctx context.Context, tc tenancy.Context, table string, model any, id uuid.UUID, values map[string]any) error {
	vals := cloneValues(values)
	if table == TeamTable && teamTableUnscoped.Load() {
		delete(vals, "workspace_id")
	}
	scoped := true
	for attempt := 0; attempt <= len(auditColumns)+1; attempt++ {
		q := s.db.WithContext(ctx).Model(model).Where("id = ?", id)
		if scoped {
			q = s.Scope(q, tc)
		}
		res := q.Updates(vals)
		if res.Error == nil {
			if res.RowsAffected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			return nil
		}
		col, ok := s.missingColumn(ctx, table, res.Error, nil)
		if !ok {
			return res.Error
		}
		if col == "workspace_id" {
			scoped = false
			continue
		}
		delete(vals, col)
		if len(vals) == 0 {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "update kept hitting missing columns")
}

// Delete removes one row inside the tenant scope, retrying unscoped by id
// when the scoped form matches nothing.
func (s *Store) Delete(ctx context.Context, tc tenancy.Context, table string, model any, id uuid.UUID) error {
	res := s.Scope(s.db.WithContext(ctx).Where("id = ?", id), tc).Delete(model)
	if res.Error != nil {
		if _, ok := s.missingColumn(ctx, table, res.Error, nil); !ok {
			return res.Error
		}
	} else if res.RowsAffected > 0 {
		return nil
	} else if tc.IsLegacy() {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}

	res = s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	s.countRetry(table, "unscoped_by_id")
	return nil
}

// missingColumn decides whether err is recoverable drift, and if so which
// column to drop on the retry.
func (s *Store) missingColumn(ctx context.Context, table string, err error, omitted []string) (string, bool) {
	if db.Classify(err) != db.KindColumnAbsent {
		return "", false
	}
	if table == TeamTable && db.IsColumnAbsent(err, "workspace_id") && !containsString(omitted, "workspace_id") {
		teamTableUnscoped.Store(true)
		s.countRetry(table, "strip_workspace")
		if s.logg != nil {
			s.logg.Warn(ctx, "team table missing workspace_id column, writes continue unscoped")
		}
		return "workspace_id", true
	}
	for _, col := range auditColumns {
		if db.IsColumnAbsent(err, col) && !containsString(omitted, col) {
			s.countRetry(table, "strip_audit")
			return col, true
		}
	}
	return "", false
}

func (s *Store) countRetry(table, fallback string) {
	if s.drift != nil {
		s.drift.IncRetry(table, fallback)
	}
}

func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
