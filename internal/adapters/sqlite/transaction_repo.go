package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/db"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// TransactionRepository implements secondary.TransactionRepository with SQLite.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new SQLite transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func insertTransaction(ctx context.Context, q querier, t *secondary.TransactionRecord) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions (id, source_partition_id, category_id, value, description, created_at, counterpart_id, is_counterpart, loan_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourcePartitionID, t.CategoryID, t.Value.String(), nullString(t.Description),
		db.FormatTime(t.CreatedAt), nullString(t.CounterpartID), t.IsCounterpart, nullString(t.LoanID),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func insertPair(ctx context.Context, q querier, t, counterpart *secondary.TransactionRecord) error {
	if counterpart != nil {
		t.CounterpartID = counterpart.ID
		counterpart.CounterpartID = t.ID
		counterpart.IsCounterpart = true
	}
	if err := insertTransaction(ctx, q, t); err != nil {
		return err
	}
	if counterpart != nil {
		if err := insertTransaction(ctx, q, counterpart); err != nil {
			return err
		}
	}
	return nil
}

// Create persists a transaction and, for transfers, its counterpart.
func (r *TransactionRepository) Create(ctx context.Context, t *secondary.TransactionRecord, counterpart *secondary.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPair(ctx, tx, t, counterpart); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateLoan persists the loan together with its originating transaction pair.
func (r *TransactionRepository) CreateLoan(ctx context.Context, loan *secondary.LoanRecord, t *secondary.TransactionRecord, counterpart *secondary.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loans (id, transaction_id, lender_partition_id, borrower_partition_id, category_id, amount, to_pay, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID, t.ID, loan.LenderPartitionID, loan.BorrowerPartitionID, loan.CategoryID,
		loan.Amount.String(), loan.ToPay.String(), nullString(loan.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	loan.TransactionID = t.ID

	t.LoanID = loan.ID
	if counterpart != nil {
		counterpart.LoanID = loan.ID
	}
	if err := insertPair(ctx, tx, t, counterpart); err != nil {
		return err
	}
	return tx.Commit()
}

const transactionColumns = "t.id, t.source_partition_id, t.category_id, t.value, t.description, t.created_at, t.counterpart_id, t.is_counterpart, t.loan_id"

func scanTransaction(row interface{ Scan(...any) error }) (*secondary.TransactionRecord, error) {
	var (
		value       string
		desc        sql.NullString
		createdAt   time.Time
		counterpart sql.NullString
		loanID      sql.NullString
	)
	record := &secondary.TransactionRecord{}
	if err := row.Scan(&record.ID, &record.SourcePartitionID, &record.CategoryID, &value, &desc,
		&createdAt, &counterpart, &record.IsCounterpart, &loanID); err != nil {
		return nil, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid stored value %q: %w", value, err)
	}
	record.Value = v
	record.Description = desc.String
	record.CreatedAt = createdAt.UTC()
	record.CounterpartID = counterpart.String
	record.LoanID = loanID.String
	return record, nil
}

func getTransaction(ctx context.Context, q querier, id string) (*secondary.TransactionRecord, error) {
	record, err := scanTransaction(q.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE t.id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return record, nil
}

// GetByID retrieves a transaction by its ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*secondary.TransactionRecord, error) {
	return getTransaction(ctx, r.db, id)
}

// Update updates a transaction and keeps its counterpart in sync: same
// category, description and date, opposite value.
func (r *TransactionRepository) Update(ctx context.Context, t *secondary.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE transactions SET source_partition_id = ?, category_id = ?, value = ?, description = ?, created_at = ? WHERE id = ?",
		t.SourcePartitionID, t.CategoryID, t.Value.String(), nullString(t.Description), db.FormatTime(t.CreatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s not found", t.ID)
	}

	if t.CounterpartID != "" {
		_, err = tx.ExecContext(ctx,
			"UPDATE transactions SET category_id = ?, value = ?, description = ?, created_at = ? WHERE id = ?",
			t.CategoryID, t.Value.Neg().String(), nullString(t.Description), db.FormatTime(t.CreatedAt), t.CounterpartID,
		)
		if err != nil {
			return fmt.Errorf("failed to update counterpart: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes a transaction and its counterpart. Deleting the transaction
// that originated a loan removes the loan and all its payments.
func (r *TransactionRepository) Delete(ctx context.Context, id string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := getTransaction(ctx, tx, id)
	if err != nil {
		return "", err
	}

	var deletedLoanID string
	if record.LoanID != "" {
		var originID string
		err := tx.QueryRowContext(ctx, "SELECT transaction_id FROM loans WHERE id = ?", record.LoanID).Scan(&originID)
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to get loan: %w", err)
		}
		if originID == record.ID || (originID != "" && originID == record.CounterpartID) {
			deletedLoanID = record.LoanID
		}
	}

	if deletedLoanID != "" {
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE loan_id = ?", deletedLoanID); err != nil {
			return "", fmt.Errorf("failed to delete loan transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM loans WHERE id = ?", deletedLoanID); err != nil {
			return "", fmt.Errorf("failed to delete loan: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM transactions WHERE id = ? OR id = ?", record.ID, nullString(record.CounterpartID),
		); err != nil {
			return "", fmt.Errorf("failed to delete transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit delete: %w", err)
	}
	return deletedLoanID, nil
}

// filterWhere translates a transaction filter. Private partitions of accounts
// the viewer does not own and private categories of other users are hidden.
func filterWhere(filter secondary.TransactionFilter) *where {
	w := &where{}
	if filter.ViewerID != "" {
		w.add(visibleToViewer, filter.ViewerID)
		w.add("(c.is_private = 0 OR c.owner_id = ?)", filter.ViewerID)
	}
	w.in("t.source_partition_id", filter.PartitionIDs)
	w.in("t.category_id", filter.CategoryIDs)
	w.in("t.loan_id", filter.LoanIDs)
	w.window("t.created_at", filter.Window)
	return w
}

const filterJoins = " FROM transactions t" +
	" JOIN partitions p ON p.id = t.source_partition_id" +
	" JOIN categories c ON c.id = t.category_id"

// Find retrieves one page of transactions matching the filter and the total count.
func (r *TransactionRepository) Find(ctx context.Context, filter secondary.TransactionFilter) ([]*secondary.TransactionRecord, int, error) {
	w := filterWhere(filter)

	total, err := countRows(ctx, r.db, "SELECT COUNT(*)"+filterJoins+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := "SELECT " + transactionColumns + filterJoins + w.String() + " ORDER BY t.created_at DESC, t.id DESC"
	args := w.args
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TransactionRecord
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// Grouped totals the transactions matching the filter per category, ordered
// by kind then category name.
func (r *TransactionRepository) Grouped(ctx context.Context, filter secondary.TransactionFilter) ([]*secondary.CategoryTotal, error) {
	w := filterWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		"SELECT t.category_id, c.name, c.kind, t.value"+filterJoins+w.String(),
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string]*secondary.CategoryTotal)
	for rows.Next() {
		var (
			total secondary.CategoryTotal
			raw   string
		)
		if err := rows.Scan(&total.CategoryID, &total.CategoryName, &total.Kind, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan grouped row: %w", err)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored value %q: %w", raw, err)
		}
		entry, ok := byCategory[total.CategoryID]
		if !ok {
			total.Total = decimal.Zero
			entry = &total
			byCategory[total.CategoryID] = entry
		}
		entry.Total = entry.Total.Add(v)
		entry.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*secondary.CategoryTotal, 0, len(byCategory))
	for _, total := range byCategory {
		out = append(out, total)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := kindOrder(out[i].Kind), kindOrder(out[j].Kind)
		if ki != kj {
			return ki < kj
		}
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

func kindOrder(kind string) int {
	for i, k := range ledger.Kinds() {
		if string(k) == kind {
			return i
		}
	}
	return len(ledger.Kinds())
}

// GetNextIDs returns n consecutive available transaction IDs.
func (r *TransactionRepository) GetNextIDs(ctx context.Context, n int) ([]string, error) {
	first, err := nextID(ctx, r.db, "transactions", ledger.PrefixTransaction)
	if err != nil {
		return nil, err
	}
	start := ledger.ParseNumber(ledger.PrefixTransaction, first) - 1
	ids := make([]string, n)
	for i := range ids {
		ids[i] = ledger.GenerateID(ledger.PrefixTransaction, start+i)
	}
	return ids, nil
}

// Ensure TransactionRepository implements the interface.
var _ secondary.TransactionRepository = (*TransactionRepository)(nil)
