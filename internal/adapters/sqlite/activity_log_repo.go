package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// ActivityLogRepository implements secondary.ActivityLogRepository with SQLite.
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new SQLite activity log repository.
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create persists a new activity log entry.
func (r *ActivityLogRepository) Create(ctx context.Context, entry *secondary.ActivityLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, entity_type, entity_id, action, field_name, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullString(entry.UserID),
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		nullString(entry.FieldName),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// List retrieves log entries matching the filters, newest first.
func (r *ActivityLogRepository) List(ctx context.Context, filters secondary.ActivityLogFilters) ([]*secondary.ActivityLogRecord, error) {
	var w where
	if filters.UserID != "" {
		w.add("user_id = ?", filters.UserID)
	}
	if filters.EntityType != "" {
		w.add("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != "" {
		w.add("entity_id = ?", filters.EntityID)
	}

	query := `SELECT id, user_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at
		FROM activity_logs` + w.String() + " ORDER BY created_at DESC, rowid DESC"
	args := w.args
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*secondary.ActivityLogRecord
	for rows.Next() {
		var (
			userID, fieldName, oldValue, newValue sql.NullString
			createdAt                             time.Time
		)
		record := &secondary.ActivityLogRecord{}
		if err := rows.Scan(&record.ID, &userID, &record.EntityType, &record.EntityID, &record.Action,
			&fieldName, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		record.UserID = userID.String
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		logs = append(logs, record)
	}
	return logs, rows.Err()
}

// GetNextID returns the next available log entry ID.
func (r *ActivityLogRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "activity_logs", ledger.PrefixLog)
}

// Ensure ActivityLogRepository implements the interface.
var _ secondary.ActivityLogRepository = (*ActivityLogRepository)(nil)
