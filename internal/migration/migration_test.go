package migration

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"001_init.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);"),
		},
		"002_add_name.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE items ADD COLUMN name TEXT NOT NULL DEFAULT '';"),
		},
	}
}

func TestApplyFromScratch(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, testFS())

	var messages []string
	count, err := runner.Apply(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 applied migrations, got %d", count)
	}
	if len(messages) != 2 {
		t.Errorf("expected 2 report messages, got %d", len(messages))
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	// Both migrations must have landed on the schema.
	if _, err := db.Exec("INSERT INTO items (id, name) VALUES ('a', 'first')"); err != nil {
		t.Errorf("schema incomplete after migrations: %v", err)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, testFS())

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	count, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations on re-apply, got %d", count)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	fs := testFS()
	fs["003_broken.sql"] = &fstest.MapFile{Data: []byte("THIS IS NOT SQL;")}
	runner := NewRunner(db, fs)

	count, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("expected broken migration to fail")
	}
	if count != 2 {
		t.Errorf("expected the 2 valid migrations to apply first, got %d", count)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version to stay at 2 after failure, got %d", version)
	}
}

func TestValidateVersion(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, testFS())

	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected validation to fail on an unmigrated database")
	}

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("expected validation to pass after migrating: %v", err)
	}
}

func TestReadMigrationsRejectsBadFilenames(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"init.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	})

	if _, err := runner.ReadMigrations(); err == nil {
		t.Error("expected filename without version prefix to be rejected")
	}
}

func TestReadMigrationsRejectsDuplicateVersions(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_a.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
		"001_b.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	})

	if _, err := runner.ReadMigrations(); err == nil {
		t.Error("expected duplicate versions to be rejected")
	}
}
