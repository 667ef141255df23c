package selection

import (
	"fmt"
	"slices"
)

// Invariant names reported by Normalize.
const (
	InvariantOverallClearsPartitions = "overall_clears_partitions"
	InvariantOverallClearsProfile    = "overall_clears_profile"
	InvariantUniqueIDs               = "unique_ids"
	InvariantPositivePageSize        = "positive_page_size"
	InvariantPositivePage            = "positive_page"
	InvariantOrderedRange            = "ordered_date_range"
)

// Normalize repairs s to the nearest valid state and reports every invariant it
// had to repair. A state produced by Reduce never needs repairing.
func Normalize(s State) (State, []InvariantViolation) {
	out := s.Clone()
	var violations []InvariantViolation

	if out.ShowOverallBalance && len(out.PartitionIDs) > 0 {
		violations = append(violations, InvariantViolation{
			Invariant: InvariantOverallClearsPartitions,
			Detail:    fmt.Sprintf("%d partitions selected in overall mode", len(out.PartitionIDs)),
		})
		out.PartitionIDs = []string{}
	}
	if out.ShowOverallBalance && out.ActiveBudgetProfileID != "" {
		violations = append(violations, InvariantViolation{
			Invariant: InvariantOverallClearsProfile,
			Detail:    fmt.Sprintf("profile %s active in overall mode", out.ActiveBudgetProfileID),
		})
		out.ActiveBudgetProfileID = ""
	}

	for _, field := range []Field{FieldPartitions, FieldCategories, FieldLoans} {
		ids := out.IDs(field)
		unique := Unique(ids)
		if slices.Equal(ids, unique) {
			continue
		}
		violations = append(violations, InvariantViolation{
			Invariant: InvariantUniqueIDs,
			Detail:    fmt.Sprintf("%s contains empty or repeated ids", field),
		})
		switch field {
		case FieldPartitions:
			out.PartitionIDs = unique
		case FieldCategories:
			out.CategoryIDs = unique
		case FieldLoans:
			out.LoanIDs = unique
		}
	}

	if out.ItemsPerPage < 1 {
		violations = append(violations, InvariantViolation{
			Invariant: InvariantPositivePageSize,
			Detail:    fmt.Sprintf("items per page is %d", out.ItemsPerPage),
		})
		out.ItemsPerPage = DefaultItemsPerPage
	}
	if out.CurrentPage < 1 {
		violations = append(violations, InvariantViolation{
			Invariant: InvariantPositivePage,
			Detail:    fmt.Sprintf("current page is %d", out.CurrentPage),
		})
		out.CurrentPage = 1
	}

	if out.DateRangeStart != nil && out.DateRangeEnd != nil && out.DateRangeStart.After(*out.DateRangeEnd) {
		violations = append(violations, InvariantViolation{
			Invariant: InvariantOrderedRange,
			Detail:    "date range start is after end",
		})
		out.DateRangeStart, out.DateRangeEnd = out.DateRangeEnd, out.DateRangeStart
	}

	return out, violations
}
