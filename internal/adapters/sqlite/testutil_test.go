// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB(),
// setupSeededDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupSeededDB creates a test database loaded with the demo fixtures.
//
// Fixture balances (all dated in the current month):
//
//	PART-001 415.80   PART-002 -120   PART-003 2300   PART-004 0   PART-005 184.50
//	ACC-001 295.80    ACC-002 2300    ACC-003 184.50
//	LOAN-001 lent by PART-003 to PART-005, 200 to pay, nothing paid
func setupSeededDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB := setupTestDB(t)
	if err := db.SeedFixtures(testDB); err != nil {
		t.Fatalf("failed to seed fixtures: %v", err)
	}
	return testDB
}

// fixtureMonthStart returns the first instant of the month the fixtures are dated in.
func fixtureMonthStart() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "USER-001"
	}
	if name == "" {
		name = "tester"
	}
	if _, err := db.Exec("INSERT INTO users (id, name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// seedAccount inserts a test account owned by the given users and returns its ID.
func seedAccount(t *testing.T, db *sql.DB, id, name string, owners ...string) string {
	t.Helper()
	if id == "" {
		id = "ACC-001"
	}
	if name == "" {
		name = "Test Account"
	}
	if _, err := db.Exec("INSERT INTO accounts (id, name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	for _, owner := range owners {
		if _, err := db.Exec("INSERT INTO account_owners (account_id, user_id) VALUES (?, ?)", id, owner); err != nil {
			t.Fatalf("failed to seed account owner: %v", err)
		}
	}
	return id
}

// seedPartition inserts a test partition and returns its ID.
func seedPartition(t *testing.T, db *sql.DB, id, accountID, name string, private bool) string {
	t.Helper()
	if id == "" {
		id = "PART-001"
	}
	if accountID == "" {
		accountID = "ACC-001"
	}
	if name == "" {
		name = "Test Partition"
	}
	if _, err := db.Exec(
		"INSERT INTO partitions (id, account_id, name, is_private) VALUES (?, ?, ?, ?)",
		id, accountID, name, private,
	); err != nil {
		t.Fatalf("failed to seed partition: %v", err)
	}
	return id
}

// seedCategory inserts a test category and returns its ID.
func seedCategory(t *testing.T, db *sql.DB, id, ownerID, name, kind string) string {
	t.Helper()
	if id == "" {
		id = "CAT-001"
	}
	if ownerID == "" {
		ownerID = "USER-001"
	}
	if kind == "" {
		kind = "Expense"
	}
	if _, err := db.Exec(
		"INSERT INTO categories (id, owner_id, name, kind) VALUES (?, ?, ?, ?)",
		id, ownerID, name, kind,
	); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return id
}

// dec parses a decimal literal.
func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// assertDecimal fails the test unless got equals want numerically.
func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(t, want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}
