// Package selection contains the pure selection/filter state machine that drives
// every balance and transaction query.
// This is part of the Functional Core - no I/O, only pure functions.
package selection

import (
	"slices"
	"time"
)

// DefaultItemsPerPage is the page size of a fresh session.
const DefaultItemsPerPage = 25

// Field names a multi-id selection field.
type Field string

const (
	FieldPartitions Field = "partitions"
	FieldCategories Field = "categories"
	FieldLoans      Field = "loans"
)

// IsValid returns true if the field is one of the known selection fields.
func (f Field) IsValid() bool {
	switch f {
	case FieldPartitions, FieldCategories, FieldLoans:
		return true
	default:
		return false
	}
}

// State is an immutable snapshot of the user's selection context.
// Id slices are ordered and free of duplicates.
type State struct {
	PartitionIDs          []string   `json:"partition_ids"`
	CategoryIDs           []string   `json:"category_ids"`
	LoanIDs               []string   `json:"loan_ids"`
	DateRangeStart        *time.Time `json:"date_range_start,omitempty"`
	DateRangeEnd          *time.Time `json:"date_range_end,omitempty"`
	ItemsPerPage          int        `json:"items_per_page"`
	CurrentPage           int        `json:"current_page"`
	ShowOverallBalance    bool       `json:"show_overall_balance"`
	ActiveBudgetProfileID string     `json:"active_budget_profile_id,omitempty"`
	SelectedSourceID      string     `json:"selected_source_id,omitempty"`
	SelectedCategoryID    string     `json:"selected_category_id,omitempty"`
}

// InitialState returns the state of a fresh session: nothing selected, overall
// balance shown, first page, and the calendar month containing now.
func InitialState(now time.Time) State {
	start, end := MonthBounds(now)
	return State{
		PartitionIDs:       []string{},
		CategoryIDs:        []string{},
		LoanIDs:            []string{},
		DateRangeStart:     &start,
		DateRangeEnd:       &end,
		ItemsPerPage:       DefaultItemsPerPage,
		CurrentPage:        1,
		ShowOverallBalance: true,
	}
}

// Clone returns a deep copy so callers can never alias the store's slices.
func (s State) Clone() State {
	out := s
	out.PartitionIDs = cloneIDs(s.PartitionIDs)
	out.CategoryIDs = cloneIDs(s.CategoryIDs)
	out.LoanIDs = cloneIDs(s.LoanIDs)
	out.DateRangeStart = cloneTime(s.DateRangeStart)
	out.DateRangeEnd = cloneTime(s.DateRangeEnd)
	return out
}

// IDs returns the ids selected for the given field.
func (s State) IDs(field Field) []string {
	switch field {
	case FieldPartitions:
		return cloneIDs(s.PartitionIDs)
	case FieldCategories:
		return cloneIDs(s.CategoryIDs)
	case FieldLoans:
		return cloneIDs(s.LoanIDs)
	default:
		return nil
	}
}

// IsSelected reports whether id is part of the given field's selection.
func (s State) IsSelected(field Field, id string) bool {
	return slices.Contains(s.IDs(field), id)
}

// HasBudgetProfile reports whether a budget profile drives the partition selection.
func (s State) HasBudgetProfile() bool {
	return s.ActiveBudgetProfileID != ""
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return append(make([]string, 0, len(ids)), ids...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
