package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// expectedTables is the sorted list of tables InitDB creates.
var expectedTables = []string{
	"account",
	"notification",
	"opportunity",
	"opportunity_signup",
	"organization",
	"proof",
	"volunteer",
	"volunteer_badge",
}

// TestInitDB_CreatesSchema verifies all tables exist after init.
func TestInitDB_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) != len(expectedTables) {
		t.Fatalf("tables = %v, want %v", names, expectedTables)
	}
	for i, want := range expectedTables {
		if names[i] != want {
			t.Errorf("table[%d] = %s, want %s", i, names[i], want)
		}
	}
}

// TestInitDB_Idempotent verifies running InitDB twice produces no errors.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

// TestParseTime_AcceptsBothLayouts verifies the round trip and the RFC3339
// fallback.
func TestParseTime_AcceptsBothLayouts(t *testing.T) {
	for _, value := range []string{
		"2026-06-01T09:00:00.123456789Z",
		"2026-06-01T09:00:00Z",
	} {
		if _, err := ParseTime(value); err != nil {
			t.Errorf("ParseTime(%s): %v", value, err)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("ParseTime(yesterday) succeeded, want error")
	}
}
