package sqlite_test

import (
	"context"
	"testing"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func TestCategoryRepository_CreateRejectsUnknownKind(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	seedUser(t, db, "USER-001", "ana")

	err := repo.Create(context.Background(), &secondary.CategoryRecord{ID: "CAT-001", OwnerID: "USER-001", Name: "Gifts", Kind: "Refund"})
	if err == nil {
		t.Error("expected check constraint error for unknown kind")
	}
}

func TestCategoryRepository_ListByOwnerOrdering(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewCategoryRepository(db)

	categories, err := repo.ListByOwner(context.Background(), "USER-001", false)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}

	want := []string{"Salary", "Food", "Utilities", "Move Money"}
	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(categories))
	}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, categories[i].Name)
		}
	}
}

func TestCategoryRepository_UpdateArchives(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	cat, err := repo.GetByID(ctx, "CAT-003")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	cat.Archived = true
	cat.Name = "Old Utilities"
	if err := repo.Update(ctx, cat); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	active, _ := repo.ListByOwner(ctx, "USER-001", false)
	if len(active) != 3 {
		t.Errorf("expected archived category to be hidden, got %d", len(active))
	}
	all, _ := repo.ListByOwner(ctx, "USER-001", true)
	if len(all) != 4 {
		t.Errorf("expected 4 categories including archived, got %d", len(all))
	}
}

func TestCategoryRepository_Balance(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()
	overall := secondary.BalanceWindow{Overall: true}

	tests := []struct {
		name       string
		categoryID string
		partitions []string
		want       string
	}{
		{"expense", "CAT-002", nil, "-84.20"},
		{"income", "CAT-001", nil, "3000"},
		{"transfer counts source side only", "CAT-004", nil, "-700"},
		{"transfer into a selected partition", "CAT-004", []string{"PART-001"}, "500"},
		{"transfer out of a selected partition", "CAT-004", []string{"PART-003"}, "-700"},
		{"partition without the category", "CAT-002", []string{"PART-003"}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Balance(ctx, tt.categoryID, secondary.BalanceFilter{PartitionIDs: tt.partitions, Window: overall})
			if err != nil {
				t.Fatalf("Balance failed: %v", err)
			}
			assertDecimal(t, tt.categoryID, got, tt.want)
		})
	}
}

func TestCategoryRepository_KindBalance(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()
	overall := secondary.BalanceFilter{Window: secondary.BalanceWindow{Overall: true}}

	expense, err := repo.KindBalance(ctx, "USER-001", "Expense", overall)
	if err != nil {
		t.Fatalf("KindBalance failed: %v", err)
	}
	assertDecimal(t, "expense", expense, "-204.20")

	income, _ := repo.KindBalance(ctx, "USER-001", "Income", overall)
	assertDecimal(t, "income", income, "3000")

	benExpense, _ := repo.KindBalance(ctx, "USER-002", "Expense", overall)
	assertDecimal(t, "ben expense", benExpense, "-15.50")
}

func TestCategoryRepository_CountAndDelete(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	n, err := repo.CountTransactions(ctx, "CAT-004")
	if err != nil {
		t.Fatalf("CountTransactions failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 transfer rows, got %d", n)
	}

	if err := repo.Delete(ctx, "CAT-005"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "CAT-005"); err == nil {
		t.Error("expected error deleting missing category")
	}

	next, _ := repo.GetNextID(ctx)
	if next != "CAT-007" {
		t.Errorf("expected CAT-007, got %s", next)
	}
}
