package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// LogServiceImpl reads the activity log written by LedgerServiceImpl.
type LogServiceImpl struct {
	logRepo secondary.ActivityLogRepository
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(logRepo secondary.ActivityLogRepository) *LogServiceImpl {
	return &LogServiceImpl{logRepo: logRepo}
}

// ListLogs retrieves log entries matching the filters, newest first. The
// limit defaults to 50 and is capped at 500.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxLogLimit)

	entityType := filters.EntityType
	if entityType == "" && filters.EntityID != "" {
		entityType = ledger.EntityType(filters.EntityID)
	}

	records, err := s.logRepo.List(ctx, secondary.ActivityLogFilters{
		UserID:     filters.UserID,
		EntityType: entityType,
		EntityID:   filters.EntityID,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = toLogEntry(r)
	}
	return entries, nil
}

// EntityHistory returns every change to one entity, oldest first.
func (s *LogServiceImpl) EntityHistory(ctx context.Context, entityID string) ([]*primary.LogEntry, error) {
	if ledger.EntityType(entityID) == "" {
		return nil, fmt.Errorf("unknown entity id %q", entityID)
	}
	entries, err := s.ListLogs(ctx, primary.LogFilters{EntityID: entityID, Limit: maxLogLimit})
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

func toLogEntry(r *secondary.ActivityLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		CreatedAt:  r.CreatedAt,
	}
}

var _ primary.LogService = (*LogServiceImpl)(nil)
