package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *secondary.UserRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email) VALUES (?, ?, ?)",
		user.ID, user.Name, nullString(user.Email),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a user by its unique name.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*secondary.UserRecord, error) {
	return r.getOne(ctx, "name", name)
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*secondary.UserRecord, error) {
	var (
		email     sql.NullString
		createdAt time.Time
	)

	record := &secondary.UserRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&record.ID, &record.Name, &email, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s not found", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	record.Email = email.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// List retrieves all users ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*secondary.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, email, created_at FROM users ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*secondary.UserRecord
	for rows.Next() {
		var (
			email     sql.NullString
			createdAt time.Time
		)
		record := &secondary.UserRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &email, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		record.Email = email.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		users = append(users, record)
	}

	return users, rows.Err()
}

// GetNextID returns the next available user ID.
func (r *UserRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "users", ledger.PrefixUser)
}

// Ensure UserRepository implements the interface.
var _ secondary.UserRepository = (*UserRepository)(nil)
