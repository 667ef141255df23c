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

// CategoryRepository implements secondary.CategoryRepository with SQLite.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create persists a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *secondary.CategoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, owner_id, name, kind, is_private, archived) VALUES (?, ?, ?, ?, ?, ?)",
		category.ID, category.OwnerID, category.Name, category.Kind, category.IsPrivate, category.Archived,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

const categoryColumns = "id, owner_id, name, kind, is_private, archived, created_at"

func scanCategory(row interface{ Scan(...any) error }) (*secondary.CategoryRecord, error) {
	var createdAt time.Time
	record := &secondary.CategoryRecord{}
	if err := row.Scan(&record.ID, &record.OwnerID, &record.Name, &record.Kind, &record.IsPrivate, &record.Archived, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*secondary.CategoryRecord, error) {
	record, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return record, nil
}

// ListByOwner retrieves the categories of a user ordered by kind and name.
func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*secondary.CategoryRecord, error) {
	w := &where{}
	w.add("owner_id = ?", ownerID)
	if !includeArchived {
		w.add("archived = 0")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories"+w.String()+
			" ORDER BY CASE kind WHEN 'Income' THEN 0 WHEN 'Expense' THEN 1 ELSE 2 END, name ASC",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*secondary.CategoryRecord
	for rows.Next() {
		record, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, record)
	}
	return categories, rows.Err()
}

// Update updates name, privacy and archive flags of a category.
func (r *CategoryRepository) Update(ctx context.Context, category *secondary.CategoryRecord) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, is_private = ?, archived = ? WHERE id = ?",
		category.Name, category.IsPrivate, category.Archived, category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s not found", category.ID)
	}
	return nil
}

// Delete removes a category from persistence.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s not found", id)
	}
	return nil
}

// GetNextID returns the next available category ID.
func (r *CategoryRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "categories", ledger.PrefixCategory)
}

// Balance sums the transactions of the category. Without a partition filter
// only the source side of a transfer is summed, since both sides net to zero.
func (r *CategoryRepository) Balance(ctx context.Context, id string, filter secondary.BalanceFilter) (decimal.Decimal, error) {
	w := &where{}
	w.add("t.category_id = ?", id)
	if len(filter.PartitionIDs) == 0 {
		w.add("NOT (c.kind = 'Transfer' AND t.is_counterpart = 1)")
	}
	w.in("t.source_partition_id", filter.PartitionIDs)
	w.window("t.created_at", filter.Window)
	return sumValues(ctx, r.db,
		"SELECT t.value FROM transactions t JOIN categories c ON c.id = t.category_id"+w.String(),
		w.args...,
	)
}

// KindBalance sums the transactions of every category of one kind owned by a
// user, counting transfers the same way as Balance.
func (r *CategoryRepository) KindBalance(ctx context.Context, ownerID, kind string, filter secondary.BalanceFilter) (decimal.Decimal, error) {
	w := &where{}
	w.add("c.owner_id = ?", ownerID)
	w.add("c.kind = ?", kind)
	if kind == string(ledger.KindTransfer) && len(filter.PartitionIDs) == 0 {
		w.add("t.is_counterpart = 0")
	}
	w.in("t.source_partition_id", filter.PartitionIDs)
	w.window("t.created_at", filter.Window)
	return sumValues(ctx, r.db,
		"SELECT t.value FROM transactions t JOIN categories c ON c.id = t.category_id"+w.String(),
		w.args...,
	)
}

// CountTransactions returns the number of transactions using the category.
func (r *CategoryRepository) CountTransactions(ctx context.Context, id string) (int, error) {
	n, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM transactions WHERE category_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to count category transactions: %w", err)
	}
	return n, nil
}

// Ensure CategoryRepository implements the interface.
var _ secondary.CategoryRepository = (*CategoryRepository)(nil)
