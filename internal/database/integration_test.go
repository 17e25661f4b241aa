package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{"families", "kids", "snippets", "versions", "migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// a second run must be a no-op
	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	db := openTestDB(t)

	err := db.InTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID("INSERT INTO families (mother_name, comment) VALUES (?, ?)", "Anna", "")
		return err
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM families WHERE mother_name = ?", "Anna").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 family, got %d", count)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO families (mother_name, comment) VALUES (?, ?)", "Britta", ""); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM families WHERE mother_name = ?", "Britta").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 families after rollback, got %d", count)
	}
}

func TestUniqueSSN(t *testing.T) {
	db := openTestDB(t)

	insert := "INSERT INTO kids (ssn, full_name, comment) VALUES (?, ?, ?)"
	if _, err := db.ExecReturningID(insert, "20141231-1213", "Ett Barn", ""); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.ExecReturningID(insert, "20141231-1213", "Annat Barn", ""); err == nil {
		t.Error("Expected a duplicate ssn to be rejected")
	}
}

func TestUpsertSnippet(t *testing.T) {
	db := openTestDB(t)

	for _, content := range []string{"43700", "45000"} {
		if _, err := db.Exec(db.Dialect.UpsertSnippetQuery(), "maxtaxa", content); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	var content string
	if err := db.QueryRow("SELECT content FROM snippets WHERE identifier = ?", "maxtaxa").Scan(&content); err != nil {
		t.Fatal(err)
	}
	if content != "45000" {
		t.Errorf("content = %q, want 45000", content)
	}
}
