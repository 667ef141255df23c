package querykey

import (
	"time"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/core/selection"
)

// Query is one read query together with its typed parameters. The set of
// implementations is closed.
type Query interface {
	Key() Key
	isQuery()
}

// Window is the balance time window. In overall mode the date bounds are not
// part of the window.
type Window struct {
	Overall bool
	Start   *time.Time
	End     *time.Time
}

// WindowOf extracts the balance window from the selection state.
func WindowOf(s selection.State) Window {
	if s.ShowOverallBalance {
		return Window{Overall: true}
	}
	return Window{Start: s.DateRangeStart, End: s.DateRangeEnd}
}

// ============================================================================
// Listings
// ============================================================================

// Accounts lists the accounts visible to a user.
type Accounts struct {
	UserID string
}

func (q Accounts) Key() Key { return Key{Name: NameAccounts, Scope: q.UserID} }

// Partitions lists the partitions of an account visible to a user.
type Partitions struct {
	UserID    string
	AccountID string
}

func (q Partitions) Key() Key {
	return Key{Name: NamePartitions, Scope: q.AccountID, Params: (&params{}).str("user", q.UserID).String()}
}

// Categories lists the categories visible to a user.
type Categories struct {
	UserID string
}

func (q Categories) Key() Key { return Key{Name: NameCategories, Scope: q.UserID} }

// BudgetProfiles lists the budget profiles of a user.
type BudgetProfiles struct {
	UserID string
}

func (q BudgetProfiles) Key() Key { return Key{Name: NameBudgetProfiles, Scope: q.UserID} }

// BudgetAmount is the budgeted amount of one category under one profile.
type BudgetAmount struct {
	CategoryID string
	ProfileID  string
}

func (q BudgetAmount) Key() Key {
	return Key{Name: NameBudgetAmount, Scope: BudgetScope(q.CategoryID, q.ProfileID)}
}

// BudgetScope is the scope shared by budget amount keys and patterns.
func BudgetScope(categoryID, profileID string) string {
	return categoryID + "@" + profileID
}

// PartitionsWithLoans lists the partitions of a user that lent money still unpaid.
type PartitionsWithLoans struct {
	UserID string
}

func (q PartitionsWithLoans) Key() Key { return Key{Name: NamePartitionsWithLoans, Scope: q.UserID} }

// UnpaidLoans lists the unpaid loans made by a lender partition.
type UnpaidLoans struct {
	LenderPartitionID string
}

func (q UnpaidLoans) Key() Key { return Key{Name: NameUnpaidLoans, Scope: q.LenderPartitionID} }

// ============================================================================
// Balances and deletability
// ============================================================================

// PartitionBalance is the balance of one partition over a window.
type PartitionBalance struct {
	PartitionID string
	Window      Window
}

func (q PartitionBalance) Key() Key {
	return Key{Name: NamePartitionBalance, Scope: q.PartitionID, Params: (&params{}).window(q.Window).String()}
}

// PartitionCanBeDeleted reports whether a partition has no transactions.
type PartitionCanBeDeleted struct {
	PartitionID string
}

func (q PartitionCanBeDeleted) Key() Key {
	return Key{Name: NamePartitionCanBeDeleted, Scope: q.PartitionID}
}

// AccountBalance is the balance of all partitions of an account over a window.
type AccountBalance struct {
	AccountID string
	Window    Window
}

func (q AccountBalance) Key() Key {
	return Key{Name: NameAccountBalance, Scope: q.AccountID, Params: (&params{}).window(q.Window).String()}
}

// AccountCanBeDeleted reports whether an account has no transactions.
type AccountCanBeDeleted struct {
	AccountID string
}

func (q AccountCanBeDeleted) Key() Key {
	return Key{Name: NameAccountCanBeDeleted, Scope: q.AccountID}
}

// CategoryBalance is the total of one category over a window, restricted to
// the selected partitions when any are selected.
type CategoryBalance struct {
	CategoryID   string
	PartitionIDs []string
	Window       Window
}

func (q CategoryBalance) Key() Key {
	p := (&params{}).ids("partitions", q.PartitionIDs).window(q.Window)
	return Key{Name: NameCategoryBalance, Scope: q.CategoryID, Params: p.String()}
}

// CategoryCanBeDeleted reports whether a category is unused.
type CategoryCanBeDeleted struct {
	CategoryID string
}

func (q CategoryCanBeDeleted) Key() Key {
	return Key{Name: NameCategoryCanBeDeleted, Scope: q.CategoryID}
}

// CategoryKindBalance is the total of every category of one kind visible to a user.
type CategoryKindBalance struct {
	UserID       string
	Kind         ledger.CategoryKind
	PartitionIDs []string
	Window       Window
}

func (q CategoryKindBalance) Key() Key {
	p := (&params{}).str("user", q.UserID).ids("partitions", q.PartitionIDs).window(q.Window)
	return Key{Name: NameCategoryKindBalance, Scope: string(q.Kind), Params: p.String()}
}

// ============================================================================
// Transaction lists
// ============================================================================

// Filter is the transaction filter shared by the paginated and grouped lists.
type Filter struct {
	UserID       string
	PartitionIDs []string
	CategoryIDs  []string
	LoanIDs      []string
	Start        *time.Time
	End          *time.Time
	Overall      bool
}

func (f Filter) encode(p *params) *params {
	return p.str("user", f.UserID).
		ids("partitions", f.PartitionIDs).
		ids("categories", f.CategoryIDs).
		ids("loans", f.LoanIDs).
		instant("start", f.Start).
		instant("end", f.End).
		flag("overall", f.Overall)
}

// Transactions is one page of transactions matching the filter.
type Transactions struct {
	Filter
	Page    int
	PerPage int
}

func (q Transactions) Key() Key {
	p := (&params{}).num("page", q.Page).num("perPage", q.PerPage)
	return Key{Name: NameTransactions, Params: q.encode(p).String()}
}

// Offset is the number of rows before the requested page.
func (q Transactions) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// GroupedTransactions is the per-category total of transactions matching the filter.
type GroupedTransactions struct {
	Filter
}

func (q GroupedTransactions) Key() Key {
	return Key{Name: NameGroupedTransactions, Params: q.encode(&params{}).String()}
}

func (Accounts) isQuery()              {}
func (Partitions) isQuery()            {}
func (Categories) isQuery()            {}
func (BudgetProfiles) isQuery()        {}
func (BudgetAmount) isQuery()          {}
func (PartitionsWithLoans) isQuery()   {}
func (UnpaidLoans) isQuery()           {}
func (PartitionBalance) isQuery()      {}
func (PartitionCanBeDeleted) isQuery() {}
func (AccountBalance) isQuery()        {}
func (AccountCanBeDeleted) isQuery()   {}
func (CategoryBalance) isQuery()       {}
func (CategoryCanBeDeleted) isQuery()  {}
func (CategoryKindBalance) isQuery()   {}
func (Transactions) isQuery()          {}
func (GroupedTransactions) isQuery()   {}
