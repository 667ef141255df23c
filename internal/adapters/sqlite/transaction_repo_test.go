package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func transactionIDs(records []*secondary.TransactionRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestTransactionRepository_CreateSingle(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	at := time.Date(2024, time.March, 15, 10, 30, 0, 123456789, time.UTC)
	record := &secondary.TransactionRecord{
		ID:                "TX-009",
		SourcePartitionID: "PART-001",
		CategoryID:        "CAT-002",
		Value:             dec(t, "-12.34"),
		Description:       "coffee",
		CreatedAt:         at,
	}
	if err := repo.Create(ctx, record, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "TX-009")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	assertDecimal(t, "value", got.Value, "-12.34")
	if !got.CreatedAt.Equal(at) {
		t.Errorf("expected created_at %v, got %v", at, got.CreatedAt)
	}
	if got.CounterpartID != "" || got.IsCounterpart {
		t.Errorf("expected no counterpart, got %+v", got)
	}
}

func TestTransactionRepository_CreateTransferLinksPair(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	ids, err := repo.GetNextIDs(ctx, 2)
	if err != nil {
		t.Fatalf("GetNextIDs failed: %v", err)
	}
	if ids[0] != "TX-009" || ids[1] != "TX-010" {
		t.Fatalf("unexpected ids %v", ids)
	}

	now := time.Now().UTC()
	source := &secondary.TransactionRecord{ID: ids[0], SourcePartitionID: "PART-003", CategoryID: "CAT-004", Value: dec(t, "-50"), CreatedAt: now}
	counterpart := &secondary.TransactionRecord{ID: ids[1], SourcePartitionID: "PART-002", CategoryID: "CAT-004", Value: dec(t, "50"), CreatedAt: now}
	if err := repo.Create(ctx, source, counterpart); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, ids[0])
	if got.CounterpartID != ids[1] || got.IsCounterpart {
		t.Errorf("unexpected source row: %+v", got)
	}
	other, _ := repo.GetByID(ctx, ids[1])
	if other.CounterpartID != ids[0] || !other.IsCounterpart {
		t.Errorf("unexpected counterpart row: %+v", other)
	}
}

func TestTransactionRepository_CreateRollsBackPair(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	source := &secondary.TransactionRecord{ID: "TX-009", SourcePartitionID: "PART-003", CategoryID: "CAT-004", Value: dec(t, "-50"), CreatedAt: now}
	bad := &secondary.TransactionRecord{ID: "TX-010", SourcePartitionID: "PART-404", CategoryID: "CAT-004", Value: dec(t, "50"), CreatedAt: now}
	if err := repo.Create(ctx, source, bad); err == nil {
		t.Fatal("expected error for unknown counterpart partition")
	}
	if _, err := repo.GetByID(ctx, "TX-009"); err == nil {
		t.Error("expected source row to be rolled back")
	}
}

func TestTransactionRepository_UpdateSyncsCounterpart(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	record, err := repo.GetByID(ctx, "TX-004")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	record.Value = dec(t, "-600")
	record.Description = "more groceries"
	if err := repo.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	counterpart, _ := repo.GetByID(ctx, "TX-005")
	assertDecimal(t, "counterpart", counterpart.Value, "600")
	if counterpart.Description != "more groceries" {
		t.Errorf("expected description to follow, got %q", counterpart.Description)
	}
	if counterpart.SourcePartitionID != "PART-001" {
		t.Errorf("expected counterpart partition unchanged, got %s", counterpart.SourcePartitionID)
	}

	missing := &secondary.TransactionRecord{ID: "TX-404", SourcePartitionID: "PART-001", CategoryID: "CAT-002", Value: dec(t, "1")}
	if err := repo.Update(ctx, missing); err == nil {
		t.Error("expected error updating missing transaction")
	}
}

func TestTransactionRepository_DeleteTransferRemovesBothSides(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	loanID, err := repo.Delete(ctx, "TX-005")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if loanID != "" {
		t.Errorf("expected no loan deleted, got %s", loanID)
	}
	for _, id := range []string{"TX-004", "TX-005"} {
		if _, err := repo.GetByID(ctx, id); err == nil {
			t.Errorf("expected %s to be deleted", id)
		}
	}
}

func TestTransactionRepository_DeleteLoanOrigin(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	loans := sqlite.NewLoanRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	payment := &secondary.TransactionRecord{ID: "TX-009", SourcePartitionID: "PART-005", CategoryID: "CAT-004", Value: dec(t, "-20"), CreatedAt: now, LoanID: "LOAN-001"}
	received := &secondary.TransactionRecord{ID: "TX-010", SourcePartitionID: "PART-003", CategoryID: "CAT-004", Value: dec(t, "20"), CreatedAt: now, LoanID: "LOAN-001"}
	if err := repo.Create(ctx, payment, received); err != nil {
		t.Fatalf("Create payment failed: %v", err)
	}

	loanID, err := repo.Delete(ctx, "TX-007")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if loanID != "LOAN-001" {
		t.Errorf("expected LOAN-001 to be deleted, got %q", loanID)
	}
	for _, id := range []string{"TX-006", "TX-007", "TX-009", "TX-010"} {
		if _, err := repo.GetByID(ctx, id); err == nil {
			t.Errorf("expected %s to be deleted with the loan", id)
		}
	}
	if _, err := loans.GetByID(ctx, "LOAN-001"); err == nil {
		t.Error("expected loan to be deleted")
	}
}

func TestTransactionRepository_DeletePaymentKeepsLoan(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	loans := sqlite.NewLoanRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	payment := &secondary.TransactionRecord{ID: "TX-009", SourcePartitionID: "PART-005", CategoryID: "CAT-004", Value: dec(t, "-20"), CreatedAt: now, LoanID: "LOAN-001"}
	received := &secondary.TransactionRecord{ID: "TX-010", SourcePartitionID: "PART-003", CategoryID: "CAT-004", Value: dec(t, "20"), CreatedAt: now, LoanID: "LOAN-001"}
	if err := repo.Create(ctx, payment, received); err != nil {
		t.Fatalf("Create payment failed: %v", err)
	}

	loanID, err := repo.Delete(ctx, "TX-009")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if loanID != "" {
		t.Errorf("expected loan to survive, got %q", loanID)
	}
	loan, err := loans.GetByID(ctx, "LOAN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	assertDecimal(t, "paid", loan.Paid, "0")
}

func TestTransactionRepository_FindPaging(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	page, total, err := repo.Find(ctx, secondary.TransactionFilter{
		ViewerID: "USER-001",
		Window:   secondary.BalanceWindow{Overall: true},
		Limit:    3,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if total != 8 {
		t.Errorf("expected total 8, got %d", total)
	}
	want := []string{"TX-008", "TX-007", "TX-006"}
	got := transactionIDs(page)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	last, _, _ := repo.Find(ctx, secondary.TransactionFilter{
		ViewerID: "USER-001",
		Window:   secondary.BalanceWindow{Overall: true},
		Limit:    3,
		Offset:   6,
	})
	if ids := transactionIDs(last); len(ids) != 2 || ids[1] != "TX-001" {
		t.Errorf("expected last page to end at TX-001, got %v", ids)
	}
}

func TestTransactionRepository_FindFilters(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()
	overall := secondary.BalanceWindow{Overall: true}

	start := fixtureMonthStart()
	end := start.AddDate(0, 0, 2).Add(-1)

	tests := []struct {
		name   string
		filter secondary.TransactionFilter
		total  int
	}{
		{"by partition", secondary.TransactionFilter{PartitionIDs: []string{"PART-003"}, Window: overall}, 3},
		{"by category", secondary.TransactionFilter{CategoryIDs: []string{"CAT-004"}, Window: overall}, 4},
		{"by loan", secondary.TransactionFilter{LoanIDs: []string{"LOAN-001"}, Window: overall}, 2},
		{"by window", secondary.TransactionFilter{Window: secondary.BalanceWindow{Start: &start, End: &end}}, 2},
		{"overall ignores bounds", secondary.TransactionFilter{Window: secondary.BalanceWindow{Overall: true, Start: &start, End: &end}}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := repo.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if total != tt.total {
				t.Errorf("expected %d, got %d", tt.total, total)
			}
		})
	}
}

func TestTransactionRepository_FindHidesPrivateEntities(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	if _, err := db.Exec("UPDATE categories SET is_private = 1 WHERE id = 'CAT-006'"); err != nil {
		t.Fatalf("failed to mark category private: %v", err)
	}
	if _, err := db.Exec("UPDATE partitions SET is_private = 1 WHERE id = 'PART-003'"); err != nil {
		t.Fatalf("failed to mark partition private: %v", err)
	}

	_, forAna, _ := repo.Find(ctx, secondary.TransactionFilter{ViewerID: "USER-001", Window: secondary.BalanceWindow{Overall: true}})
	_, forBen, _ := repo.Find(ctx, secondary.TransactionFilter{ViewerID: "USER-002", Window: secondary.BalanceWindow{Overall: true}})
	if forAna != 7 {
		t.Errorf("expected ben's private category hidden from ana, got %d rows", forAna)
	}
	if forBen != 5 {
		t.Errorf("expected ana's private partition hidden from ben, got %d rows", forBen)
	}
}

func TestTransactionRepository_Grouped(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewTransactionRepository(db)

	groups, err := repo.Grouped(context.Background(), secondary.TransactionFilter{
		PartitionIDs: []string{"PART-003"},
		Window:       secondary.BalanceWindow{Overall: true},
	})
	if err != nil {
		t.Fatalf("Grouped failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].CategoryID != "CAT-001" || groups[0].Kind != "Income" || groups[0].Count != 1 {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
	assertDecimal(t, "income", groups[0].Total, "3000")
	if groups[1].CategoryID != "CAT-004" || groups[1].Count != 2 {
		t.Errorf("unexpected second group: %+v", groups[1])
	}
	assertDecimal(t, "transfer", groups[1].Total, "-700")
}
