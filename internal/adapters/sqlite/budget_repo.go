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

// BudgetRepository implements secondary.BudgetRepository with SQLite.
type BudgetRepository struct {
	db *sql.DB
}

// NewBudgetRepository creates a new SQLite budget repository.
func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// CreateProfile persists a new budget profile with its partitions in order.
func (r *BudgetRepository) CreateProfile(ctx context.Context, profile *secondary.BudgetProfileRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO budget_profiles (id, user_id, name) VALUES (?, ?, ?)",
		profile.ID, profile.UserID, profile.Name,
	); err != nil {
		return fmt.Errorf("failed to create budget profile: %w", err)
	}
	for i, partitionID := range profile.PartitionIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO budget_profile_partitions (profile_id, partition_id, position) VALUES (?, ?, ?)",
			profile.ID, partitionID, i,
		); err != nil {
			return fmt.Errorf("failed to add partition %s to profile: %w", partitionID, err)
		}
	}
	return tx.Commit()
}

func profilePartitions(ctx context.Context, q querier, profileID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT partition_id FROM budget_profile_partitions WHERE profile_id = ? ORDER BY position ASC",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile partitions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan profile partition: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetProfile retrieves a budget profile with its partitions.
func (r *BudgetRepository) GetProfile(ctx context.Context, id string) (*secondary.BudgetProfileRecord, error) {
	var createdAt time.Time
	record := &secondary.BudgetProfileRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at FROM budget_profiles WHERE id = ?", id,
	).Scan(&record.ID, &record.UserID, &record.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget profile %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget profile: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)

	if record.PartitionIDs, err = profilePartitions(ctx, r.db, id); err != nil {
		return nil, err
	}
	return record, nil
}

// ListProfiles retrieves the budget profiles of a user ordered by name.
func (r *BudgetRepository) ListProfiles(ctx context.Context, userID string) ([]*secondary.BudgetProfileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, created_at FROM budget_profiles WHERE user_id = ? ORDER BY name ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget profiles: %w", err)
	}

	var profiles []*secondary.BudgetProfileRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.BudgetProfileRecord{}
		if err := rows.Scan(&record.ID, &record.UserID, &record.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan budget profile: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		profiles = append(profiles, record)
	}
	rows.Close()

	for _, p := range profiles {
		if p.PartitionIDs, err = profilePartitions(ctx, r.db, p.ID); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// TogglePartition adds the partition to the profile, or removes it if present.
func (r *BudgetRepository) TogglePartition(ctx context.Context, profileID, partitionID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM budget_profile_partitions WHERE profile_id = ? AND partition_id = ?",
		profileID, partitionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle profile partition: %w", err)
	}
	removed, _ := result.RowsAffected()
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO budget_profile_partitions (profile_id, partition_id, position)
			 SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM budget_profile_partitions WHERE profile_id = ?`,
			profileID, partitionID, profileID,
		)
		if err != nil {
			return false, fmt.Errorf("failed to toggle profile partition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return removed == 0, nil
}

// DeleteProfile removes a profile and its budgets.
func (r *BudgetRepository) DeleteProfile(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM budgets WHERE profile_id = ?",
		"DELETE FROM budget_profile_partitions WHERE profile_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete budget profile: %w", err)
		}
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM budget_profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete budget profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("budget profile %s not found", id)
	}
	return tx.Commit()
}

// SetAmount sets the budget of a category under a profile.
func (r *BudgetRepository) SetAmount(ctx context.Context, budget *secondary.BudgetRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (profile_id, category_id, amount) VALUES (?, ?, ?)
		 ON CONFLICT(profile_id, category_id) DO UPDATE SET amount = excluded.amount`,
		budget.ProfileID, budget.CategoryID, budget.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	return nil
}

// GetAmount retrieves the budget of a category under a profile; zero when unset.
func (r *BudgetRepository) GetAmount(ctx context.Context, profileID, categoryID string) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT amount FROM budgets WHERE profile_id = ? AND category_id = ?",
		profileID, categoryID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get budget: %w", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored budget %q: %w", raw, err)
	}
	return amount, nil
}

// ListBudgetedCategories returns the categories that have a budget under the profile.
func (r *BudgetRepository) ListBudgetedCategories(ctx context.Context, profileID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category_id FROM budgets WHERE profile_id = ? ORDER BY category_id", profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetNextProfileID returns the next available budget profile ID.
func (r *BudgetRepository) GetNextProfileID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "budget_profiles", ledger.PrefixProfile)
}

// Ensure BudgetRepository implements the interface.
var _ secondary.BudgetRepository = (*BudgetRepository)(nil)
