package scoped

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

var testDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:scoped_test_%d?mode=memory&cache=shared", testDBSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(ResetTeamTableFlag)
	return gdb
}

func mustExec(t *testing.T, gdb *gorm.DB, sql string) {
	t.Helper()
	if err := gdb.Exec(sql).Error; err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func TestCreateStripsWorkspaceForTeamTable(t *testing.T) {
	gdb := openTestDB(t)
	// pre-migration shape: no workspace_id column
	mustExec(t, gdb, `CREATE TABLE team_members (
		id text PRIMARY KEY, name text, email text, phone text, role text, notes text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	wsID := uuid.New()
	tc := tenancy.Multi(wsID, "Studio", enums.MemberRoleOwner)

	member := &models.TeamMember{ID: uuid.New(), WorkspaceID: &wsID, Name: "Ana"}
	if err := store.Create(context.Background(), tc, TeamTable, member); err != nil {
		t.Fatalf("create should survive missing workspace_id: %v", err)
	}
	if !TeamTableUnscoped() {
		t.Fatal("expected process-wide drift flag to be set")
	}

	var count int64
	if err := gdb.Table("team_members").Where("name = ?", "Ana").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	// later writes skip the stamp up front
	second := &models.TeamMember{ID: uuid.New(), WorkspaceID: &wsID, Name: "Ben"}
	if err := store.Create(context.Background(), tc, TeamTable, second); err != nil {
		t.Fatalf("second create: %v", err)
	}
}

func TestCreateDoesNotStripWorkspaceForOtherTables(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE gear_items (
		id text PRIMARY KEY, category text, name text, description text, asset_tag text,
		serial text, qr_code text, location text, image_url text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	wsID := uuid.New()
	tc := tenancy.Multi(wsID, "Studio", enums.MemberRoleOwner)

	item := &models.GearItem{ID: uuid.New(), WorkspaceID: &wsID, Category: enums.GearCategoryCamera, Name: "Camera A"}
	if err := store.Create(context.Background(), tc, "gear_items", item); err == nil {
		t.Fatal("only the team table may run without a tenant stamp")
	}
	if TeamTableUnscoped() {
		t.Fatal("drift flag must not be set by other tables")
	}
}

func TestUpdatesRefusesForeignWorkspaceRow(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE gear_items (
		id text PRIMARY KEY, workspace_id text, category text, name text, description text,
		asset_tag text, serial text, qr_code text, location text, image_url text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	mine := tenancy.Multi(uuid.New(), "Mine", enums.MemberRoleOwner)
	otherWS := uuid.New()

	itemID := uuid.New()
	item := &models.GearItem{ID: itemID, WorkspaceID: &otherWS, Category: enums.GearCategoryLens, Name: "Lens"}
	if err := gdb.Create(item).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := store.Updates(context.Background(), mine, "gear_items", &models.GearItem{}, itemID, map[string]any{"name": "Lens B"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("a known id in another workspace must read as not found, got %v", err)
	}

	var name string
	if err := gdb.Table("gear_items").Where("id = ?", itemID).Select("name").Scan(&name).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if name != "Lens" {
		t.Fatalf("foreign row must be untouched, got %q", name)
	}
}

func TestUpdatesReachesUnstampedRows(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE gear_items (
		id text PRIMARY KEY, workspace_id text, category text, name text, description text,
		asset_tag text, serial text, qr_code text, location text, image_url text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	tc := tenancy.Multi(uuid.New(), "Studio", enums.MemberRoleOwner)

	itemID := uuid.New()
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO gear_items (id, workspace_id, category, name) VALUES ('%s', NULL, 'Lens', 'Lens')`, itemID))

	err := store.Updates(context.Background(), tc, "gear_items", &models.GearItem{}, itemID, map[string]any{"name": "Lens B"})
	if err != nil {
		t.Fatalf("pre-migration row must stay writable: %v", err)
	}

	var name string
	if err := gdb.Table("gear_items").Where("id = ?", itemID).Select("name").Scan(&name).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if name != "Lens B" {
		t.Fatalf("expected rename to land, got %q", name)
	}
}

func TestScopeRequiresWorkspaceID(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE kits (
		id text PRIMARY KEY, workspace_id text, name text, item_ids text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	broken := tenancy.Context{Mode: enums.WorkspaceModeMulti}

	var count int64
	err := store.Query(context.Background(), broken, &models.Kit{}).Count(&count).Error
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("multi scope without an id must fail, got %v", err)
	}
}

func TestUpdatesStripsMissingAuditColumn(t *testing.T) {
	gdb := openTestDB(t)
	// older events table without closed_by_email
	mustExec(t, gdb, `CREATE TABLE events (
		id text PRIMARY KEY, workspace_id text, title text, start_at datetime, end_at datetime,
		location text, status text, notes text, production_docs text, assigned_people text,
		created_by text, created_by_email text, closed_by text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	wsID := uuid.New()
	tc := tenancy.Multi(wsID, "Studio", enums.MemberRoleOwner)

	eventID := uuid.New()
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO events (id, workspace_id, title, status) VALUES ('%s', '%s', 'Shoot', 'RESERVED')`,
		eventID, wsID))

	err := store.Updates(context.Background(), tc, "events", &models.Event{}, eventID, map[string]any{
		"status":          "CLOSED",
		"closed_by_email": "owner@example.com",
	})
	if err != nil {
		t.Fatalf("expected audit strip retry to succeed: %v", err)
	}

	var status string
	if err := gdb.Table("events").Where("id = ?", eventID).Select("status").Scan(&status).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if status != "CLOSED" {
		t.Fatalf("expected status update to land, got %q", status)
	}
}

func TestDeleteScopedThenUnscoped(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE kits (
		id text PRIMARY KEY, workspace_id text, name text, item_ids text,
		created_at datetime, updated_at datetime)`)

	store := NewStore(gdb, nil, nil)
	mine := tenancy.Multi(uuid.New(), "Mine", enums.MemberRoleOwner)
	otherWS := uuid.New()

	kitID := uuid.New()
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO kits (id, workspace_id, name, item_ids) VALUES ('%s', '%s', 'A-Kit', '[]')`,
		kitID, otherWS))

	if err := store.Delete(context.Background(), mine, "kits", &models.Kit{}, kitID); err != nil {
		t.Fatalf("expected unscoped delete fallback: %v", err)
	}

	err := store.Delete(context.Background(), mine, "kits", &models.Kit{}, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestScopeIncludesUnstampedRows(t *testing.T) {
	gdb := openTestDB(t)
	mustExec(t, gdb, `CREATE TABLE kits (
		id text PRIMARY KEY, workspace_id text, name text, item_ids text,
		created_at datetime, updated_at datetime)`)

	wsID := uuid.New()
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO kits (id, workspace_id, name, item_ids) VALUES ('%s', '%s', 'Stamped', '[]')`, uuid.New(), wsID))
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO kits (id, workspace_id, name, item_ids) VALUES ('%s', NULL, 'Unstamped', '[]')`, uuid.New()))
	mustExec(t, gdb, fmt.Sprintf(
		`INSERT INTO kits (id, workspace_id, name, item_ids) VALUES ('%s', '%s', 'Foreign', '[]')`, uuid.New(), uuid.New()))

	store := NewStore(gdb, nil, nil)
	tc := tenancy.Multi(wsID, "Studio", enums.MemberRoleMember)

	var count int64
	if err := store.Query(context.Background(), tc, &models.Kit{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected stamped + unstamped rows, got %d", count)
	}

	if err := store.Query(context.Background(), tenancy.Legacy(), &models.Kit{}).Count(&count).Error; err != nil {
		t.Fatalf("legacy count: %v", err)
	}
	if count != 3 {
		t.Fatalf("legacy mode sees everything, got %d", count)
	}
}
