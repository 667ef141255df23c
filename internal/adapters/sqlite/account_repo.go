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

// AccountRepository implements secondary.AccountRepository with SQLite.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create persists a new account together with its owners.
func (r *AccountRepository) Create(ctx context.Context, account *secondary.AccountRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (id, name) VALUES (?, ?)",
		account.ID, account.Name,
	); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if err := insertOwners(ctx, tx, account.ID, account.OwnerIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func insertOwners(ctx context.Context, q querier, accountID string, ownerIDs []string) error {
	for _, ownerID := range ownerIDs {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO account_owners (account_id, user_id) VALUES (?, ?)",
			accountID, ownerID,
		); err != nil {
			return fmt.Errorf("failed to add owner %s: %w", ownerID, err)
		}
	}
	return nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*secondary.AccountRecord, error) {
	var createdAt time.Time
	record := &secondary.AccountRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM accounts WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)

	owners, err := r.owners(ctx, id)
	if err != nil {
		return nil, err
	}
	record.OwnerIDs = owners
	return record, nil
}

func (r *AccountRepository) owners(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM account_owners WHERE account_id = ? ORDER BY user_id",
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get account owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// List retrieves all accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context) ([]*secondary.AccountRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM accounts ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var accounts []*secondary.AccountRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.AccountRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		accounts = append(accounts, record)
	}
	rows.Close()

	// Owners are loaded after the cursor is closed; the pool holds one connection.
	for _, a := range accounts {
		owners, err := r.owners(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		a.OwnerIDs = owners
	}
	return accounts, nil
}

// Rename changes the name of an account.
func (r *AccountRepository) Rename(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE accounts SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to rename account: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// SetOwners replaces the owners of an account.
func (r *AccountRepository) SetOwners(ctx context.Context, id string, ownerIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM account_owners WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear owners: %w", err)
	}
	if err := insertOwners(ctx, tx, id, ownerIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an account and its partitions.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// GetNextID returns the next available account ID.
func (r *AccountRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "accounts", ledger.PrefixAccount)
}

// Balance sums the transactions of every partition of the account.
func (r *AccountRepository) Balance(ctx context.Context, id string, window secondary.BalanceWindow) (decimal.Decimal, error) {
	w := &where{}
	w.add("p.account_id = ?", id)
	w.window("t.created_at", window)
	return sumValues(ctx, r.db,
		"SELECT t.value FROM transactions t JOIN partitions p ON p.id = t.source_partition_id"+w.String(),
		w.args...,
	)
}

// CountTransactions returns the number of transactions posted to the account.
func (r *AccountRepository) CountTransactions(ctx context.Context, id string) (int, error) {
	n, err := countRows(ctx, r.db,
		"SELECT COUNT(*) FROM transactions t JOIN partitions p ON p.id = t.source_partition_id WHERE p.account_id = ?",
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return n, nil
}

// Ensure AccountRepository implements the interface.
var _ secondary.AccountRepository = (*AccountRepository)(nil)
