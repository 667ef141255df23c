package sqlite_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func TestAccountRepository_CreateWithOwners(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAccountRepository(db)
	ctx := context.Background()

	seedUser(t, db, "USER-001", "ana")
	seedUser(t, db, "USER-002", "ben")

	account := &secondary.AccountRecord{ID: "ACC-001", Name: "Household", OwnerIDs: []string{"USER-002", "USER-001"}}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "ACC-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Household" {
		t.Errorf("expected name Household, got %s", got.Name)
	}
	if !reflect.DeepEqual(got.OwnerIDs, []string{"USER-001", "USER-002"}) {
		t.Errorf("unexpected owners: %v", got.OwnerIDs)
	}
}

func TestAccountRepository_CreateUnknownOwnerRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAccountRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.AccountRecord{ID: "ACC-001", Name: "Ghost", OwnerIDs: []string{"USER-404"}})
	if err == nil {
		t.Fatal("expected foreign key error for unknown owner")
	}
	if _, err := repo.GetByID(ctx, "ACC-001"); err == nil {
		t.Error("expected account insert to be rolled back")
	}
}

func TestAccountRepository_RenameAndSetOwners(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAccountRepository(db)
	ctx := context.Background()

	seedUser(t, db, "USER-001", "ana")
	seedUser(t, db, "USER-002", "ben")
	seedAccount(t, db, "ACC-001", "Old", "USER-001")

	if err := repo.Rename(ctx, "ACC-001", "New"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := repo.SetOwners(ctx, "ACC-001", []string{"USER-002"}); err != nil {
		t.Fatalf("SetOwners failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "ACC-001")
	if got.Name != "New" {
		t.Errorf("expected New, got %s", got.Name)
	}
	if !reflect.DeepEqual(got.OwnerIDs, []string{"USER-002"}) {
		t.Errorf("unexpected owners: %v", got.OwnerIDs)
	}

	if err := repo.Rename(ctx, "ACC-404", "x"); err == nil {
		t.Error("expected error renaming missing account")
	}
}

func TestAccountRepository_DeleteCascadesPartitions(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAccountRepository(db)
	partitions := sqlite.NewPartitionRepository(db)
	ctx := context.Background()

	seedAccount(t, db, "ACC-001", "Empty")
	seedPartition(t, db, "PART-001", "ACC-001", "Only", false)

	if err := repo.Delete(ctx, "ACC-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := partitions.GetByID(ctx, "PART-001"); err == nil {
		t.Error("expected partition to be deleted with its account")
	}
	if err := repo.Delete(ctx, "ACC-001"); err == nil {
		t.Error("expected error deleting missing account")
	}
}

func TestAccountRepository_ListAndBalance(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewAccountRepository(db)
	ctx := context.Background()

	accounts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	if accounts[0].Name != "Ana Savings" {
		t.Errorf("expected accounts ordered by name, got %s first", accounts[0].Name)
	}

	balances := map[string]string{"ACC-001": "295.80", "ACC-002": "2300", "ACC-003": "184.50"}
	for id, want := range balances {
		got, err := repo.Balance(ctx, id, secondary.BalanceWindow{Overall: true})
		if err != nil {
			t.Fatalf("Balance(%s) failed: %v", id, err)
		}
		assertDecimal(t, id, got, want)
	}

	n, err := repo.CountTransactions(ctx, "ACC-001")
	if err != nil {
		t.Fatalf("CountTransactions failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 transactions in ACC-001, got %d", n)
	}
}

func TestAccountRepository_BalanceWindow(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewAccountRepository(db)

	// Days 0 to 2 of the fixture month: payday only, the transfer is on day 3.
	start := fixtureMonthStart()
	end := start.AddDate(0, 0, 3).Add(-1)

	got, err := repo.Balance(context.Background(), "ACC-002", secondary.BalanceWindow{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	assertDecimal(t, "windowed ACC-002", got, "3000")
}
