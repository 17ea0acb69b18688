package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func countVersions(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatalf("count schema_version: %v", err)
	}
	return n
}

func TestOpenFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	if got := countVersions(t, database); got != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", got, len(migrations))
	}
	for _, table := range []string{"runs", "artifacts"} {
		var n int
		err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		if err != nil || n != 1 {
			t.Errorf("table %s missing (err=%v)", table, err)
		}
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer second.Close()

	if got := countVersions(t, second); got != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", got, len(migrations))
	}
}

func TestRunMigrationsUpgradesPartialJournal(t *testing.T) {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	database.SetMaxOpenConns(1)
	defer database.Close()

	// a journal that only saw the first migration
	if err := createVersionTable(database); err != nil {
		t.Fatal(err)
	}
	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err := migrationV1(tx); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}

	if err := InitSchema(database); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	if got := countVersions(t, database); got != 2 {
		t.Errorf("schema_version rows = %d, want 2", got)
	}
	if _, err := database.Exec("INSERT INTO runs (table_name, framework, base_path, status) VALUES ('posts', 'Laravel', '/srv', 'completed')"); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := database.Exec("INSERT INTO artifacts (run_id, step, path, operation) VALUES (1, 'core', '/srv/a.php', 'create')"); err != nil {
		t.Errorf("artifacts table not migrated: %v", err)
	}
}
