package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// LoanRepository implements secondary.LoanRepository with SQLite.
type LoanRepository struct {
	db         *sql.DB
	partitions *PartitionRepository
}

// NewLoanRepository creates a new SQLite loan repository.
func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db, partitions: NewPartitionRepository(db)}
}

const loanColumns = "id, transaction_id, lender_partition_id, borrower_partition_id, category_id, amount, to_pay, description, created_at"

func scanLoan(row interface{ Scan(...any) error }) (*secondary.LoanRecord, error) {
	var (
		amount, toPay string
		desc          sql.NullString
		createdAt     time.Time
	)
	record := &secondary.LoanRecord{}
	if err := row.Scan(&record.ID, &record.TransactionID, &record.LenderPartitionID, &record.BorrowerPartitionID,
		&record.CategoryID, &amount, &toPay, &desc, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if record.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if record.ToPay, err = decimal.NewFromString(toPay); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", toPay, err)
	}
	record.Description = desc.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// paid sums the payments received by the lender. A payment is the
// counterpart row of a borrower-to-lender transfer carrying the loan ID.
func (r *LoanRepository) paid(ctx context.Context, loan *secondary.LoanRecord) (decimal.Decimal, error) {
	return sumValues(ctx, r.db,
		"SELECT value FROM transactions WHERE loan_id = ? AND is_counterpart = 1 AND source_partition_id = ?",
		loan.ID, loan.LenderPartitionID,
	)
}

// GetByID retrieves a loan by its ID with the paid amount filled in.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*secondary.LoanRecord, error) {
	record, err := scanLoan(r.db.QueryRowContext(ctx, "SELECT "+loanColumns+" FROM loans WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if record.Paid, err = r.paid(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListUnpaidByLender retrieves loans of a lender partition that are not fully paid.
func (r *LoanRepository) ListUnpaidByLender(ctx context.Context, lenderPartitionID string) ([]*secondary.LoanRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+loanColumns+" FROM loans WHERE lender_partition_id = ? ORDER BY created_at ASC, id ASC",
		lenderPartitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	var loans []*secondary.LoanRecord
	for rows.Next() {
		record, err := scanLoan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, record)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unpaid []*secondary.LoanRecord
	for _, loan := range loans {
		if loan.Paid, err = r.paid(ctx, loan); err != nil {
			return nil, err
		}
		if loan.Remaining().IsPositive() {
			unpaid = append(unpaid, loan)
		}
	}
	return unpaid, nil
}

// ListLendersWithUnpaid retrieves partitions visible to the user that lent
// money not yet fully paid back.
func (r *LoanRepository) ListLendersWithUnpaid(ctx context.Context, userID string) ([]*secondary.PartitionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT l.lender_partition_id FROM loans l
		 JOIN partitions p ON p.id = l.lender_partition_id
		 WHERE `+visibleToViewer+` ORDER BY l.lender_partition_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lenders: %w", err)
	}

	var lenderIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan lender: %w", err)
		}
		lenderIDs = append(lenderIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var lenders []*secondary.PartitionRecord
	for _, id := range lenderIDs {
		unpaid, err := r.ListUnpaidByLender(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(unpaid) == 0 {
			continue
		}
		partition, err := r.partitions.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		lenders = append(lenders, partition)
	}
	return lenders, nil
}

// GetNextID returns the next available loan ID.
func (r *LoanRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "loans", ledger.PrefixLoan)
}

// Ensure LoanRepository implements the interface.
var _ secondary.LoanRepository = (*LoanRepository)(nil)
