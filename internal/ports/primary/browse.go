package primary

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/core/selection"
)

// BrowseService defines the primary port for read queries. Results are cached
// under keys derived from the selection state, so the same state always reads
// the same entries.
type BrowseService interface {
	// Accounts lists every account grouped relative to the user.
	Accounts(ctx context.Context, userID string) ([]*Account, error)

	// Partitions lists the partitions of an account visible to the user.
	Partitions(ctx context.Context, userID, accountID string) ([]*Partition, error)

	// Categories lists the categories of a user.
	Categories(ctx context.Context, userID string) ([]*Category, error)

	// PartitionBalance is the balance of a partition over the state's window.
	PartitionBalance(ctx context.Context, state selection.State, partitionID string) (decimal.Decimal, error)

	// AccountBalance is the balance of an account over the state's window.
	AccountBalance(ctx context.Context, state selection.State, accountID string) (decimal.Decimal, error)

	// CategoryBalance is the total of a category over the state's window and
	// partition selection.
	CategoryBalance(ctx context.Context, state selection.State, categoryID string) (decimal.Decimal, error)

	// CategoryKindBalance is the total of every category of one kind.
	CategoryKindBalance(ctx context.Context, state selection.State, userID, kind string) (decimal.Decimal, error)

	// PartitionCanBeDeleted reports whether a partition has no transactions.
	PartitionCanBeDeleted(ctx context.Context, partitionID string) (bool, error)

	// AccountCanBeDeleted reports whether an account has no transactions.
	AccountCanBeDeleted(ctx context.Context, accountID string) (bool, error)

	// CategoryCanBeDeleted reports whether no transaction uses a category.
	CategoryCanBeDeleted(ctx context.Context, categoryID string) (bool, error)

	// BudgetProfiles lists the budget profiles of a user.
	BudgetProfiles(ctx context.Context, userID string) ([]*BudgetProfile, error)

	// BudgetAmounts returns the budgets of the active profile for the given
	// categories. It is empty when no profile is active.
	BudgetAmounts(ctx context.Context, state selection.State, categoryIDs []string) (map[string]decimal.Decimal, error)

	// PartitionsWithLoans lists the partitions that lent money still unpaid.
	PartitionsWithLoans(ctx context.Context, userID string) ([]*Partition, error)

	// UnpaidLoans lists the unpaid loans of a lender partition.
	UnpaidLoans(ctx context.Context, lenderPartitionID string) ([]*Loan, error)

	// Transactions returns the page of transactions the state selects.
	Transactions(ctx context.Context, state selection.State, userID string) (*TransactionPage, error)

	// GroupedTransactions totals the selected transactions per category.
	GroupedTransactions(ctx context.Context, state selection.State, userID string) ([]*CategoryTotal, error)

	// Dashboard gathers every account with its partitions and balances.
	Dashboard(ctx context.Context, state selection.State, userID string) (*Dashboard, error)
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Transactions []*Transaction
	Total        int
	Page         int
	PerPage      int
}

// Pages returns the number of pages, at least one.
func (p *TransactionPage) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// CategoryTotal is the total of the selected transactions of one category.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Kind         string
	Total        decimal.Decimal
	Count        int
}

// Dashboard is the balance overview of a user.
type Dashboard struct {
	Accounts []*AccountSummary
	Total    decimal.Decimal
}

// AccountSummary is an account with its balance and partitions.
type AccountSummary struct {
	Account    *Account
	Balance    decimal.Decimal
	Partitions []*PartitionSummary
}

// PartitionSummary is a partition with its balance.
type PartitionSummary struct {
	Partition *Partition
	Balance   decimal.Decimal
	Selected  bool
}
