package selection

import "time"

// Action is the closed set of transitions the store accepts.
type Action interface {
	// Name returns a stable identifier for logging and error messages.
	Name() string
	isAction()
}

// ToggleIDs applies the all-or-nothing batch toggle to one field.
type ToggleIDs struct {
	Field Field
	IDs   []string
}

// ToggleAccount toggles every partition of an account. The caller resolves
// which partitions belong to the account.
type ToggleAccount struct {
	PartitionIDs []string
}

// ToggleCategoryKind toggles every category of a kind. The caller resolves the ids.
type ToggleCategoryKind struct {
	CategoryIDs []string
}

// SetDateRange sets absolute bounds. Either bound may be nil.
type SetDateRange struct {
	Start *time.Time
	End   *time.Time
}

// SetPrevMonth moves the window one calendar month back.
// Now is used as the anchor only when no start bound is set. Store.Dispatch
// fills a zero Now from its clock; Reduce rejects a zero anchor.
type SetPrevMonth struct {
	Now time.Time
}

// SetNextMonth moves the window one calendar month forward.
type SetNextMonth struct {
	Now time.Time
}

// SetThisMonth sets the window to the calendar month containing Now, which
// must be set when calling Reduce directly.
type SetThisMonth struct {
	Now time.Time
}

// SetItemsPerPage changes the page size. The current page is kept unless
// ResetPage is set.
type SetItemsPerPage struct {
	N         int
	ResetPage bool
}

// SetCurrentPage jumps to a page. Used by the pager; never resets anything.
type SetCurrentPage struct {
	N int
}

// ToggleOverallBalance flips between overall and windowed balances.
type ToggleOverallBalance struct{}

// ToggleBudgetProfile activates or deactivates a budget profile.
type ToggleBudgetProfile struct {
	ProfileID    string
	PartitionIDs []string
}

// ClearPartitionSelection empties partitions and drops any active profile.
type ClearPartitionSelection struct{}

// ClearCategorySelection empties categories.
type ClearCategorySelection struct{}

// ClearLoanSelection empties loans.
type ClearLoanSelection struct{}

// RemoveLoanIDs drops specific loans without toggle semantics, e.g. after the
// loan transaction was deleted.
type RemoveLoanIDs struct {
	IDs []string
}

// RemoveIDs drops ids from one field without toggle semantics, e.g. after the
// partition or category was deleted. A removed id is also cleared as the form
// default. The page resets only when something was removed.
type RemoveIDs struct {
	Field Field
	IDs   []string
}

// SyncBudgetProfile follows an edit of a stored profile: when ProfileID is the
// active profile its partitions are replaced by PartitionIDs, or the profile is
// dropped with its partitions when Deleted. Any other state is left as is.
type SyncBudgetProfile struct {
	ProfileID    string
	PartitionIDs []string
	Deleted      bool
}

// SelectSource picks the partition used as a transaction source in forms.
type SelectSource struct {
	PartitionID string
}

// SelectCategory picks the category used in forms.
type SelectCategory struct {
	CategoryID string
}

func (ToggleIDs) Name() string               { return "toggle_ids" }
func (ToggleAccount) Name() string           { return "toggle_account" }
func (ToggleCategoryKind) Name() string      { return "toggle_category_kind" }
func (SetDateRange) Name() string            { return "set_date_range" }
func (SetPrevMonth) Name() string            { return "set_prev_month" }
func (SetNextMonth) Name() string            { return "set_next_month" }
func (SetThisMonth) Name() string            { return "set_this_month" }
func (SetItemsPerPage) Name() string         { return "set_items_per_page" }
func (SetCurrentPage) Name() string          { return "set_current_page" }
func (ToggleOverallBalance) Name() string    { return "toggle_overall_balance" }
func (ToggleBudgetProfile) Name() string     { return "toggle_budget_profile" }
func (ClearPartitionSelection) Name() string { return "clear_partition_selection" }
func (ClearCategorySelection) Name() string  { return "clear_category_selection" }
func (ClearLoanSelection) Name() string      { return "clear_loan_selection" }
func (RemoveLoanIDs) Name() string           { return "remove_loan_ids" }
func (RemoveIDs) Name() string               { return "remove_ids" }
func (SyncBudgetProfile) Name() string       { return "sync_budget_profile" }
func (SelectSource) Name() string            { return "select_source" }
func (SelectCategory) Name() string          { return "select_category" }

func (ToggleIDs) isAction()               {}
func (ToggleAccount) isAction()           {}
func (ToggleCategoryKind) isAction()      {}
func (SetDateRange) isAction()            {}
func (SetPrevMonth) isAction()            {}
func (SetNextMonth) isAction()            {}
func (SetThisMonth) isAction()            {}
func (SetItemsPerPage) isAction()         {}
func (SetCurrentPage) isAction()          {}
func (ToggleOverallBalance) isAction()    {}
func (ToggleBudgetProfile) isAction()     {}
func (ClearPartitionSelection) isAction() {}
func (ClearCategorySelection) isAction()  {}
func (ClearLoanSelection) isAction()      {}
func (RemoveLoanIDs) isAction()           {}
func (RemoveIDs) isAction()               {}
func (SyncBudgetProfile) isAction()       {}
func (SelectSource) isAction()            {}
func (SelectCategory) isAction()          {}

// stampClock fills a zero Now on month actions. Other actions pass through.
func stampClock(a Action, now time.Time) Action {
	switch typed := a.(type) {
	case SetPrevMonth:
		if typed.Now.IsZero() {
			typed.Now = now
		}
		return typed
	case SetNextMonth:
		if typed.Now.IsZero() {
			typed.Now = now
		}
		return typed
	case SetThisMonth:
		if typed.Now.IsZero() {
			typed.Now = now
		}
		return typed
	default:
		return a
	}
}
