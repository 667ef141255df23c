package selection

import (
	"slices"
	"time"
)

// Reduce applies one action to a state and returns the next state.
// This is a pure function: s is never modified, and on error the returned
// state is s itself.
//
// Rules:
//   - every change to partitions, categories, loans or the date range resets the page
//   - SetCurrentPage and SetItemsPerPage never reset anything on their own
//   - partitions cannot be selected while the overall balance is shown
func Reduce(s State, a Action) (State, error) {
	next := s.Clone()

	switch typed := a.(type) {
	case ToggleIDs:
		switch typed.Field {
		case FieldPartitions:
			return togglePartitions(s, next, a, typed.IDs)
		case FieldCategories:
			return toggleCategories(next, typed.IDs), nil
		case FieldLoans:
			next.LoanIDs = ToggleGroup(next.LoanIDs, typed.IDs)
			next.CurrentPage = 1
			return next, nil
		default:
			return s, invalid(a, "unknown field %q", typed.Field)
		}

	case ToggleAccount:
		return togglePartitions(s, next, a, typed.PartitionIDs)

	case ToggleCategoryKind:
		return toggleCategories(next, typed.CategoryIDs), nil

	case SetDateRange:
		if typed.Start != nil && typed.End != nil && typed.Start.After(*typed.End) {
			return s, invalid(a, "start %s is after end %s", typed.Start.Format(time.RFC3339), typed.End.Format(time.RFC3339))
		}
		next.DateRangeStart = cloneTime(typed.Start)
		next.DateRangeEnd = cloneTime(typed.End)
		next.CurrentPage = 1
		return next, nil

	case SetPrevMonth:
		return shiftWindow(s, next, a, monthAnchor(s, typed.Now), -1)

	case SetNextMonth:
		return shiftWindow(s, next, a, monthAnchor(s, typed.Now), 1)

	case SetThisMonth:
		return shiftWindow(s, next, a, typed.Now, 0)

	case SetItemsPerPage:
		if typed.N <= 0 {
			return s, invalid(a, "items per page must be a positive integer, got %d", typed.N)
		}
		next.ItemsPerPage = typed.N
		if typed.ResetPage {
			next.CurrentPage = 1
		}
		return next, nil

	case SetCurrentPage:
		if typed.N < 1 {
			return s, invalid(a, "page must be at least 1, got %d", typed.N)
		}
		next.CurrentPage = typed.N
		return next, nil

	case ToggleOverallBalance:
		next.ShowOverallBalance = !s.ShowOverallBalance
		if next.ShowOverallBalance {
			next.PartitionIDs = []string{}
			next.ActiveBudgetProfileID = ""
		}
		next.CurrentPage = 1
		return next, nil

	case ToggleBudgetProfile:
		if typed.ProfileID == "" {
			return s, invalid(a, "profile id is required")
		}
		if s.ShowOverallBalance {
			return s, rejectOverall(a)
		}
		if s.ActiveBudgetProfileID == typed.ProfileID {
			next.ActiveBudgetProfileID = ""
			next.PartitionIDs = []string{}
		} else {
			next.ActiveBudgetProfileID = typed.ProfileID
			next.PartitionIDs = Unique(typed.PartitionIDs)
		}
		next.CurrentPage = 1
		return next, nil

	case ClearPartitionSelection:
		next.PartitionIDs = []string{}
		next.ActiveBudgetProfileID = ""
		next.CurrentPage = 1
		return next, nil

	case ClearCategorySelection:
		next.CategoryIDs = []string{}
		next.CurrentPage = 1
		return next, nil

	case ClearLoanSelection:
		next.LoanIDs = []string{}
		next.CurrentPage = 1
		return next, nil

	case RemoveLoanIDs:
		next.LoanIDs = Remove(next.LoanIDs, typed.IDs)
		next.CurrentPage = 1
		return next, nil

	case RemoveIDs:
		if !typed.Field.IsValid() {
			return s, invalid(a, "unknown field %q", typed.Field)
		}
		return removeIDs(s, next, typed.Field, typed.IDs), nil

	case SyncBudgetProfile:
		if typed.ProfileID == "" || s.ActiveBudgetProfileID != typed.ProfileID {
			return next, nil
		}
		if typed.Deleted {
			next.ActiveBudgetProfileID = ""
			next.PartitionIDs = []string{}
		} else {
			next.PartitionIDs = Unique(typed.PartitionIDs)
		}
		next.CurrentPage = 1
		return next, nil

	case SelectSource:
		next.SelectedSourceID = typed.PartitionID
		return next, nil

	case SelectCategory:
		next.SelectedCategoryID = typed.CategoryID
		return next, nil

	case nil:
		return s, &ValidationError{Action: "nil", Reason: "action is required"}

	default:
		return s, invalid(a, "unsupported action %T", a)
	}
}

func togglePartitions(s, next State, a Action, ids []string) (State, error) {
	if s.ShowOverallBalance {
		return s, rejectOverall(a)
	}
	next.PartitionIDs = ToggleGroup(next.PartitionIDs, ids)
	next.ActiveBudgetProfileID = ""
	next.SelectedSourceID = ""
	next.CurrentPage = 1
	return next, nil
}

func toggleCategories(next State, ids []string) State {
	next.CategoryIDs = ToggleGroup(next.CategoryIDs, ids)
	next.SelectedCategoryID = ""
	next.CurrentPage = 1
	return next
}

func shiftWindow(s, next State, a Action, anchor time.Time, delta int) (State, error) {
	if anchor.IsZero() {
		return s, invalid(a, "a current time is required without a start bound")
	}
	start, end := ShiftMonth(anchor, delta)
	next.DateRangeStart = &start
	next.DateRangeEnd = &end
	next.CurrentPage = 1
	return next, nil
}

func removeIDs(s, next State, field Field, ids []string) State {
	switch field {
	case FieldPartitions:
		if slices.Contains(ids, next.SelectedSourceID) {
			next.SelectedSourceID = ""
		}
	case FieldCategories:
		if slices.Contains(ids, next.SelectedCategoryID) {
			next.SelectedCategoryID = ""
		}
	}

	before := s.IDs(field)
	after := Remove(before, ids)
	if len(after) == len(before) {
		return next
	}
	switch field {
	case FieldPartitions:
		next.PartitionIDs = after
	case FieldCategories:
		next.CategoryIDs = after
	case FieldLoans:
		next.LoanIDs = after
	}
	next.CurrentPage = 1
	return next
}

// ToggleGroup implements the batch rule: if every id of group is already in
// current, all of them are removed; otherwise the missing ones are appended
// in group order. An empty group leaves current unchanged.
func ToggleGroup(current, group []string) []string {
	group = Unique(group)
	if len(group) == 0 {
		return cloneIDs(current)
	}

	allSelected := true
	for _, id := range group {
		if !slices.Contains(current, id) {
			allSelected = false
			break
		}
	}

	if allSelected {
		return Remove(current, group)
	}

	out := cloneIDs(current)
	for _, id := range group {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Remove returns current without any id in drop, preserving order.
func Remove(current, drop []string) []string {
	out := make([]string, 0, len(current))
	for _, id := range current {
		if !slices.Contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}

// Unique drops empty and repeated ids, keeping first occurrences in order.
func Unique(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
