package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javi-app/javi-backend/pkg/migrate"
)

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestWorkspacesMigrationAddsTenantColumns(t *testing.T) {
	content := readMigration(t, "*_workspaces.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS workspaces",
		"CREATE TABLE IF NOT EXISTS workspace_members",
		"UNIQUE (workspace_id, user_id)",
		"javi_bootstrap_workspace",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	// every tenant table gains the nullable column
	for _, table := range []string{"gear_items", "events", "kits", "reservations", "checkouts", "team_members"} {
		stmt := "ALTER TABLE " + table
		if !strings.Contains(content, stmt) {
			t.Errorf("missing workspace_id column for %s", table)
		}
	}
	if strings.Contains(content, "workspace_id uuid NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE") {
		t.Error("tenant columns must stay nullable for pre-migration rows")
	}
}

func TestOverlapMigrationContainsExclusionConstraint(t *testing.T) {
	content := readMigration(t, "*_reservation_no_overlap.sql")

	checks := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist",
		"reservations_active_no_overlap",
		"EXCLUDE USING gist",
		"tstzrange(start_at, end_at) WITH &&",
		"WHERE (status = 'ACTIVE')",
		"DROP CONSTRAINT IF EXISTS reservations_active_no_overlap",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
