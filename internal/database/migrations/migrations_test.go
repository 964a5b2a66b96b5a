package migrations

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	for _, table := range []string{"backup_passes", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	st, err := Status(db)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Version != 0 || st.Latest != 1 || st.Current() {
		t.Errorf("Status() = %+v, want version 0 of latest 1", st)
	}
	if got := st.String(); got != "none (latest v1)" {
		t.Errorf("String() = %q", got)
	}
}

func TestSchemaStatus_String(t *testing.T) {
	tests := []struct {
		st   SchemaStatus
		want string
	}{
		{SchemaStatus{Version: 1, Latest: 1}, "v1 (latest)"},
		{SchemaStatus{Version: 1, Latest: 3}, "v1 (2 behind v3)"},
		{SchemaStatus{Version: 4, Latest: 3}, "v4 (newer than this binary, v3)"},
		{SchemaStatus{Version: 2, Latest: 3, Dirty: true}, "v2 (dirty, a migration failed)"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	st, err := Status(db)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Current() {
		t.Errorf("Status() after double migration = %+v, want current", st)
	}
}

func TestSchema_BackupPassIDUnique(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insert := `INSERT INTO backup_passes (id, base_path, trigger, started_at, finished_at, status)
		VALUES (?, '/base', 'manual', ?, ?, 'success')`
	now := time.Now()
	if _, err := db.Exec(insert, "pass-1", now, now); err != nil {
		t.Fatalf("Failed to insert pass: %v", err)
	}
	if _, err := db.Exec(insert, "pass-1", now, now); err == nil {
		t.Error("Expected primary key violation for duplicate id, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
