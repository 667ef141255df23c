package secondary

import "context"

// LogWriter defines the interface for writing activity log entries.
// Implementations extract the acting user from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// ActivityLogRepository defines the secondary port for activity log persistence.
type ActivityLogRepository interface {
	// Create persists a new log entry.
	Create(ctx context.Context, entry *ActivityLogRecord) error

	// List retrieves log entries matching the filters, newest first.
	List(ctx context.Context, filters ActivityLogFilters) ([]*ActivityLogRecord, error)

	// GetNextID returns the next available log entry ID.
	GetNextID(ctx context.Context) (string, error)
}

// ActivityLogRecord represents one logged mutation.
type ActivityLogRecord struct {
	ID         string
	UserID     string
	EntityType string
	EntityID   string
	Action     string // create, update, delete
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// ActivityLogFilters contains filter options for querying the activity log.
type ActivityLogFilters struct {
	UserID     string
	EntityType string
	EntityID   string
	Limit      int
}
