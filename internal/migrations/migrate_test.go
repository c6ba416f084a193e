package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_plinko_rounds.up.sql",
		"000001_create_plinko_rounds.down.sql",
		"000012_add_index.up.sql",
		"README.md",
		"notes_000099.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000500_dir"), 0o700); err != nil {
		t.Fatal(err)
	}

	if got := findLatestMigrationVersion(dir); got != 12 {
		t.Errorf("expected 12, got %d", got)
	}
}

func TestFindLatestMigrationVersionMissingDir(t *testing.T) {
	if got := findLatestMigrationVersion(filepath.Join(t.TempDir(), "missing")); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestShippedMigrations(t *testing.T) {
	if got := findLatestMigrationVersion("../../migrations"); got < 1 {
		t.Errorf("expected at least one shipped migration, got %d", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", "migrations"); err == nil {
		t.Error("expected an error for an empty URL")
	}
}
