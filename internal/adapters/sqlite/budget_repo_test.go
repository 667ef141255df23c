package sqlite_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func TestBudgetRepository_CreateAndGetProfile(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewBudgetRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextProfileID(ctx)
	if err != nil {
		t.Fatalf("GetNextProfileID failed: %v", err)
	}
	if id != "BP-002" {
		t.Fatalf("expected BP-002, got %s", id)
	}

	profile := &secondary.BudgetProfileRecord{ID: id, UserID: "USER-002", Name: "Travel", PartitionIDs: []string{"PART-005", "PART-001"}}
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	got, err := repo.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if !reflect.DeepEqual(got.PartitionIDs, []string{"PART-005", "PART-001"}) {
		t.Errorf("expected partitions in insertion order, got %v", got.PartitionIDs)
	}

	dup := &secondary.BudgetProfileRecord{ID: "BP-003", UserID: "USER-002", Name: "Travel"}
	if err := repo.CreateProfile(ctx, dup); err == nil {
		t.Error("expected error for duplicate profile name")
	}
}

func TestBudgetRepository_TogglePartition(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewBudgetRepository(db)
	ctx := context.Background()

	included, err := repo.TogglePartition(ctx, "BP-001", "PART-002")
	if err != nil {
		t.Fatalf("TogglePartition failed: %v", err)
	}
	if included {
		t.Error("expected PART-002 to be removed")
	}

	included, err = repo.TogglePartition(ctx, "BP-001", "PART-003")
	if err != nil {
		t.Fatalf("TogglePartition failed: %v", err)
	}
	if !included {
		t.Error("expected PART-003 to be added")
	}

	included, _ = repo.TogglePartition(ctx, "BP-001", "PART-002")
	if !included {
		t.Error("expected PART-002 to be added back")
	}

	got, _ := repo.GetProfile(ctx, "BP-001")
	if !reflect.DeepEqual(got.PartitionIDs, []string{"PART-001", "PART-003", "PART-002"}) {
		t.Errorf("expected toggled partitions appended, got %v", got.PartitionIDs)
	}
}

func TestBudgetRepository_Amounts(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewBudgetRepository(db)
	ctx := context.Background()

	food, err := repo.GetAmount(ctx, "BP-001", "CAT-002")
	if err != nil {
		t.Fatalf("GetAmount failed: %v", err)
	}
	assertDecimal(t, "food", food, "400")

	unset, err := repo.GetAmount(ctx, "BP-001", "CAT-001")
	if err != nil {
		t.Fatalf("GetAmount failed: %v", err)
	}
	assertDecimal(t, "unset", unset, "0")

	if err := repo.SetAmount(ctx, &secondary.BudgetRecord{ProfileID: "BP-001", CategoryID: "CAT-002", Amount: dec(t, "450.50")}); err != nil {
		t.Fatalf("SetAmount failed: %v", err)
	}
	food, _ = repo.GetAmount(ctx, "BP-001", "CAT-002")
	assertDecimal(t, "updated food", food, "450.50")

	categories, err := repo.ListBudgetedCategories(ctx, "BP-001")
	if err != nil {
		t.Fatalf("ListBudgetedCategories failed: %v", err)
	}
	if !reflect.DeepEqual(categories, []string{"CAT-002", "CAT-003"}) {
		t.Errorf("unexpected budgeted categories %v", categories)
	}
}

func TestBudgetRepository_ListAndDeleteProfile(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewBudgetRepository(db)
	ctx := context.Background()

	profiles, err := repo.ListProfiles(ctx, "USER-001")
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 1 || len(profiles[0].PartitionIDs) != 2 {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}

	if err := repo.DeleteProfile(ctx, "BP-001"); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	if _, err := repo.GetProfile(ctx, "BP-001"); err == nil {
		t.Error("expected profile to be gone")
	}
	amount, _ := repo.GetAmount(ctx, "BP-001", "CAT-002")
	assertDecimal(t, "budget after delete", amount, "0")

	if err := repo.DeleteProfile(ctx, "BP-001"); err == nil {
		t.Error("expected error deleting missing profile")
	}
}
