package primary

import "context"

// LogService defines the primary port for the activity log.
type LogService interface {
	// ListLogs retrieves log entries matching the given filters, newest first.
	// An entity id without an entity type is matched against the type its
	// prefix names.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// EntityHistory returns the changes to one entity, oldest first.
	EntityHistory(ctx context.Context, entityID string) ([]*LogEntry, error)
}

// LogEntry is one mutation of the ledger. FieldName and the values are set for
// updates only.
type LogEntry struct {
	ID         string
	UserID     string
	EntityType string // transaction, loan, account, partition, category, budget_profile, user
	EntityID   string
	Action     string // create, update, delete
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string // RFC3339
}

// LogFilters narrows ListLogs. Zero values match everything; Limit <= 0
// means the default of 50.
type LogFilters struct {
	UserID     string
	EntityType string
	EntityID   string
	Limit      int
}
