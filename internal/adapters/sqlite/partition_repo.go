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

// visibleToViewer hides private partitions of accounts the viewer does not own.
const visibleToViewer = `(p.is_private = 0 OR EXISTS (
	SELECT 1 FROM account_owners o WHERE o.account_id = p.account_id AND o.user_id = ?))`

// PartitionRepository implements secondary.PartitionRepository with SQLite.
type PartitionRepository struct {
	db *sql.DB
}

// NewPartitionRepository creates a new SQLite partition repository.
func NewPartitionRepository(db *sql.DB) *PartitionRepository {
	return &PartitionRepository{db: db}
}

// Create persists a new partition.
func (r *PartitionRepository) Create(ctx context.Context, partition *secondary.PartitionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO partitions (id, account_id, name, is_private, archived) VALUES (?, ?, ?, ?, ?)",
		partition.ID, partition.AccountID, partition.Name, partition.IsPrivate, partition.Archived,
	)
	if err != nil {
		return fmt.Errorf("failed to create partition: %w", err)
	}
	return nil
}

const partitionColumns = "p.id, p.account_id, p.name, p.is_private, p.archived, p.created_at"

func scanPartition(row interface{ Scan(...any) error }) (*secondary.PartitionRecord, error) {
	var createdAt time.Time
	record := &secondary.PartitionRecord{}
	if err := row.Scan(&record.ID, &record.AccountID, &record.Name, &record.IsPrivate, &record.Archived, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// GetByID retrieves a partition by its ID.
func (r *PartitionRepository) GetByID(ctx context.Context, id string) (*secondary.PartitionRecord, error) {
	record, err := scanPartition(r.db.QueryRowContext(ctx,
		"SELECT "+partitionColumns+" FROM partitions p WHERE p.id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("partition %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partition: %w", err)
	}
	return record, nil
}

// List retrieves partitions matching the given filters.
func (r *PartitionRepository) List(ctx context.Context, filters secondary.PartitionFilters) ([]*secondary.PartitionRecord, error) {
	w := &where{}
	if filters.AccountID != "" {
		w.add("p.account_id = ?", filters.AccountID)
	}
	if filters.ViewerID != "" {
		w.add(visibleToViewer, filters.ViewerID)
	}
	if !filters.IncludeArchived {
		w.add("p.archived = 0")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+partitionColumns+" FROM partitions p"+w.String()+" ORDER BY p.name ASC, p.id ASC",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var partitions []*secondary.PartitionRecord
	for rows.Next() {
		record, err := scanPartition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		partitions = append(partitions, record)
	}
	return partitions, rows.Err()
}

// Update updates name, privacy and archive flags of a partition.
func (r *PartitionRepository) Update(ctx context.Context, partition *secondary.PartitionRecord) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE partitions SET name = ?, is_private = ?, archived = ? WHERE id = ?",
		partition.Name, partition.IsPrivate, partition.Archived, partition.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update partition: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("partition %s not found", partition.ID)
	}
	return nil
}

// Delete removes a partition from persistence.
func (r *PartitionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM partitions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete partition: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("partition %s not found", id)
	}
	return nil
}

// GetNextID returns the next available partition ID.
func (r *PartitionRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "partitions", ledger.PrefixPartition)
}

// Balance sums the transactions posted to the partition.
func (r *PartitionRepository) Balance(ctx context.Context, id string, window secondary.BalanceWindow) (decimal.Decimal, error) {
	w := &where{}
	w.add("t.source_partition_id = ?", id)
	w.window("t.created_at", window)
	return sumValues(ctx, r.db, "SELECT t.value FROM transactions t"+w.String(), w.args...)
}

// CountTransactions returns the number of transactions posted to the partition.
func (r *PartitionRepository) CountTransactions(ctx context.Context, id string) (int, error) {
	n, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM transactions WHERE source_partition_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to count partition transactions: %w", err)
	}
	return n, nil
}

// Ensure PartitionRepository implements the interface.
var _ secondary.PartitionRepository = (*PartitionRepository)(nil)
