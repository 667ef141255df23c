package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func recordPayment(t *testing.T, repo *sqlite.TransactionRepository, ids []string, amount string) {
	t.Helper()
	now := time.Now().UTC()
	out := &secondary.TransactionRecord{ID: ids[0], SourcePartitionID: "PART-005", CategoryID: "CAT-004", Value: dec(t, amount).Neg(), CreatedAt: now, LoanID: "LOAN-001"}
	in := &secondary.TransactionRecord{ID: ids[1], SourcePartitionID: "PART-003", CategoryID: "CAT-004", Value: dec(t, amount), CreatedAt: now, LoanID: "LOAN-001"}
	if err := repo.Create(context.Background(), out, in); err != nil {
		t.Fatalf("failed to record payment: %v", err)
	}
}

func TestLoanRepository_GetByIDComputesPaid(t *testing.T) {
	db := setupSeededDB(t)
	loans := sqlite.NewLoanRepository(db)
	txs := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	loan, err := loans.GetByID(ctx, "LOAN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	assertDecimal(t, "paid", loan.Paid, "0")
	assertDecimal(t, "remaining", loan.Remaining(), "200")
	if loan.TransactionID != "TX-006" || loan.LenderPartitionID != "PART-003" || loan.BorrowerPartitionID != "PART-005" {
		t.Errorf("unexpected loan: %+v", loan)
	}

	recordPayment(t, txs, []string{"TX-009", "TX-010"}, "75.25")

	loan, _ = loans.GetByID(ctx, "LOAN-001")
	assertDecimal(t, "paid", loan.Paid, "75.25")
	assertDecimal(t, "remaining", loan.Remaining(), "124.75")

	if _, err := loans.GetByID(ctx, "LOAN-404"); err == nil {
		t.Error("expected error for missing loan")
	}
}

func TestLoanRepository_FullyPaidDropsFromUnpaid(t *testing.T) {
	db := setupSeededDB(t)
	loans := sqlite.NewLoanRepository(db)
	txs := sqlite.NewTransactionRepository(db)
	ctx := context.Background()

	unpaid, err := loans.ListUnpaidByLender(ctx, "PART-003")
	if err != nil {
		t.Fatalf("ListUnpaidByLender failed: %v", err)
	}
	if len(unpaid) != 1 {
		t.Fatalf("expected 1 unpaid loan, got %d", len(unpaid))
	}

	lenders, err := loans.ListLendersWithUnpaid(ctx, "USER-002")
	if err != nil {
		t.Fatalf("ListLendersWithUnpaid failed: %v", err)
	}
	if len(lenders) != 1 || lenders[0].ID != "PART-003" {
		t.Errorf("expected PART-003 as lender, got %v", partitionIDs(lenders))
	}

	recordPayment(t, txs, []string{"TX-009", "TX-010"}, "200")

	unpaid, _ = loans.ListUnpaidByLender(ctx, "PART-003")
	if len(unpaid) != 0 {
		t.Errorf("expected paid loan to be dropped, got %d", len(unpaid))
	}
	lenders, _ = loans.ListLendersWithUnpaid(ctx, "USER-002")
	if len(lenders) != 0 {
		t.Errorf("expected no lenders once paid, got %v", partitionIDs(lenders))
	}
}

func TestLoanRepository_LendersHidePrivatePartitions(t *testing.T) {
	db := setupSeededDB(t)
	loans := sqlite.NewLoanRepository(db)
	ctx := context.Background()

	if _, err := db.Exec("UPDATE partitions SET is_private = 1 WHERE id = 'PART-003'"); err != nil {
		t.Fatalf("failed to mark partition private: %v", err)
	}

	ben, _ := loans.ListLendersWithUnpaid(ctx, "USER-002")
	if len(ben) != 0 {
		t.Errorf("expected private lender hidden from ben, got %v", partitionIDs(ben))
	}
	ana, _ := loans.ListLendersWithUnpaid(ctx, "USER-001")
	if len(ana) != 1 {
		t.Errorf("expected owner to see the lender, got %v", partitionIDs(ana))
	}
}

func TestTransactionRepository_CreateLoan(t *testing.T) {
	db := setupSeededDB(t)
	txs := sqlite.NewTransactionRepository(db)
	loans := sqlite.NewLoanRepository(db)
	ctx := context.Background()

	loanID, err := loans.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if loanID != "LOAN-002" {
		t.Fatalf("expected LOAN-002, got %s", loanID)
	}

	now := time.Now().UTC()
	loan := &secondary.LoanRecord{
		ID:                  loanID,
		LenderPartitionID:   "PART-001",
		BorrowerPartitionID: "PART-002",
		CategoryID:          "CAT-004",
		Amount:              dec(t, "100"),
		ToPay:               dec(t, "110"),
		Description:         "bill float",
	}
	out := &secondary.TransactionRecord{ID: "TX-009", SourcePartitionID: "PART-001", CategoryID: "CAT-004", Value: dec(t, "-100"), CreatedAt: now}
	in := &secondary.TransactionRecord{ID: "TX-010", SourcePartitionID: "PART-002", CategoryID: "CAT-004", Value: dec(t, "100"), CreatedAt: now}
	if err := txs.CreateLoan(ctx, loan, out, in); err != nil {
		t.Fatalf("CreateLoan failed: %v", err)
	}

	got, err := loans.GetByID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TransactionID != "TX-009" {
		t.Errorf("expected origin TX-009, got %s", got.TransactionID)
	}
	assertDecimal(t, "to pay", got.ToPay, "110")

	for _, id := range []string{"TX-009", "TX-010"} {
		record, _ := txs.GetByID(ctx, id)
		if record.LoanID != loanID {
			t.Errorf("expected %s to carry %s, got %q", id, loanID, record.LoanID)
		}
	}
}
