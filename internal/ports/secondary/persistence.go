// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserRepository defines the secondary port for user persistence.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *UserRecord) error

	// GetByID retrieves a user by its ID.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// GetByName retrieves a user by its unique name.
	GetByName(ctx context.Context, name string) (*UserRecord, error)

	// List retrieves all users ordered by name.
	List(ctx context.Context) ([]*UserRecord, error)

	// GetNextID returns the next available user ID.
	GetNextID(ctx context.Context) (string, error)
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID        string
	Name      string
	Email     string
	CreatedAt string
}

// AccountRepository defines the secondary port for account persistence.
type AccountRepository interface {
	// Create persists a new account together with its owners.
	Create(ctx context.Context, account *AccountRecord) error

	// GetByID retrieves an account by its ID.
	GetByID(ctx context.Context, id string) (*AccountRecord, error)

	// List retrieves all accounts ordered by name.
	List(ctx context.Context) ([]*AccountRecord, error)

	// Rename changes the name of an account.
	Rename(ctx context.Context, id, name string) error

	// SetOwners replaces the owners of an account.
	SetOwners(ctx context.Context, id string, ownerIDs []string) error

	// Delete removes an account and its partitions.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available account ID.
	GetNextID(ctx context.Context) (string, error)

	// Balance sums the transactions of every partition of the account.
	Balance(ctx context.Context, id string, window BalanceWindow) (decimal.Decimal, error)

	// CountTransactions returns the number of transactions posted to the account.
	CountTransactions(ctx context.Context, id string) (int, error)
}

// AccountRecord represents an account as stored in persistence.
type AccountRecord struct {
	ID        string
	Name      string
	OwnerIDs  []string
	CreatedAt string
}

// PartitionRepository defines the secondary port for partition persistence.
type PartitionRepository interface {
	// Create persists a new partition.
	Create(ctx context.Context, partition *PartitionRecord) error

	// GetByID retrieves a partition by its ID.
	GetByID(ctx context.Context, id string) (*PartitionRecord, error)

	// List retrieves partitions matching the given filters.
	List(ctx context.Context, filters PartitionFilters) ([]*PartitionRecord, error)

	// Update updates name, privacy and archive flags of a partition.
	Update(ctx context.Context, partition *PartitionRecord) error

	// Delete removes a partition from persistence.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available partition ID.
	GetNextID(ctx context.Context) (string, error)

	// Balance sums the transactions posted to the partition.
	Balance(ctx context.Context, id string, window BalanceWindow) (decimal.Decimal, error)

	// CountTransactions returns the number of transactions posted to the partition.
	CountTransactions(ctx context.Context, id string) (int, error)
}

// PartitionRecord represents a partition as stored in persistence.
type PartitionRecord struct {
	ID        string
	AccountID string
	Name      string
	IsPrivate bool
	Archived  bool
	CreatedAt string
}

// PartitionFilters contains filter options for querying partitions.
type PartitionFilters struct {
	AccountID       string
	ViewerID        string // hides private partitions of accounts the viewer does not own
	IncludeArchived bool
}

// CategoryRepository defines the secondary port for category persistence.
type CategoryRepository interface {
	// Create persists a new category.
	Create(ctx context.Context, category *CategoryRecord) error

	// GetByID retrieves a category by its ID.
	GetByID(ctx context.Context, id string) (*CategoryRecord, error)

	// ListByOwner retrieves the categories of a user ordered by kind and name.
	ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*CategoryRecord, error)

	// Update updates name, privacy and archive flags of a category.
	Update(ctx context.Context, category *CategoryRecord) error

	// Delete removes a category from persistence.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available category ID.
	GetNextID(ctx context.Context) (string, error)

	// Balance sums the transactions of the category.
	Balance(ctx context.Context, id string, filter BalanceFilter) (decimal.Decimal, error)

	// KindBalance sums the transactions of every category of one kind owned by a user.
	KindBalance(ctx context.Context, ownerID, kind string, filter BalanceFilter) (decimal.Decimal, error)

	// CountTransactions returns the number of transactions using the category.
	CountTransactions(ctx context.Context, id string) (int, error)
}

// CategoryRecord represents a category as stored in persistence.
type CategoryRecord struct {
	ID        string
	OwnerID   string
	Name      string
	Kind      string // Income, Expense, Transfer
	IsPrivate bool
	Archived  bool
	CreatedAt string
}

// TransactionRepository defines the secondary port for transaction persistence.
type TransactionRepository interface {
	// Create persists a transaction and, for transfers, its counterpart in one
	// database transaction. The two rows reference each other.
	Create(ctx context.Context, tx *TransactionRecord, counterpart *TransactionRecord) error

	// CreateLoan persists the loan together with its originating transaction pair.
	CreateLoan(ctx context.Context, loan *LoanRecord, tx *TransactionRecord, counterpart *TransactionRecord) error

	// GetByID retrieves a transaction by its ID.
	GetByID(ctx context.Context, id string) (*TransactionRecord, error)

	// Update updates a transaction and keeps its counterpart in sync.
	Update(ctx context.Context, tx *TransactionRecord) error

	// Delete removes a transaction and its counterpart. When the transaction
	// originated a loan, the loan and its payments are removed too and the
	// loan ID is returned.
	Delete(ctx context.Context, id string) (deletedLoanID string, err error)

	// Find retrieves one page of transactions matching the filter and the total count.
	Find(ctx context.Context, filter TransactionFilter) ([]*TransactionRecord, int, error)

	// Grouped totals the transactions matching the filter per category.
	Grouped(ctx context.Context, filter TransactionFilter) ([]*CategoryTotal, error)

	// GetNextIDs returns n consecutive available transaction IDs.
	GetNextIDs(ctx context.Context, n int) ([]string, error)
}

// TransactionRecord represents one posting as stored in persistence. A transfer
// is stored as two records, the counterpart carrying the positive side.
type TransactionRecord struct {
	ID                string
	SourcePartitionID string
	CategoryID        string
	Value             decimal.Decimal
	Description       string
	CreatedAt         time.Time
	CounterpartID     string
	IsCounterpart     bool
	LoanID            string
}

// TransactionFilter contains filter options for querying transactions.
type TransactionFilter struct {
	ViewerID     string
	PartitionIDs []string
	CategoryIDs  []string
	LoanIDs      []string
	Window       BalanceWindow
	Limit        int
	Offset       int
}

// CategoryTotal is the sum of the matching transactions of one category.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Kind         string
	Total        decimal.Decimal
	Count        int
}

// LoanRepository defines the secondary port for loan persistence.
type LoanRepository interface {
	// GetByID retrieves a loan by its ID with the paid amount filled in.
	GetByID(ctx context.Context, id string) (*LoanRecord, error)

	// ListUnpaidByLender retrieves loans of a lender partition that are not fully paid.
	ListUnpaidByLender(ctx context.Context, lenderPartitionID string) ([]*LoanRecord, error)

	// ListLendersWithUnpaid retrieves partitions visible to the user that lent
	// money not yet fully paid back.
	ListLendersWithUnpaid(ctx context.Context, userID string) ([]*PartitionRecord, error)

	// GetNextID returns the next available loan ID.
	GetNextID(ctx context.Context) (string, error)
}

// LoanRecord represents a loan as stored in persistence.
type LoanRecord struct {
	ID                  string
	TransactionID       string
	LenderPartitionID   string
	BorrowerPartitionID string
	CategoryID          string
	Amount              decimal.Decimal
	ToPay               decimal.Decimal
	Paid                decimal.Decimal // computed from payments
	Description         string
	CreatedAt           string
}

// Remaining returns what is still to be paid back.
func (l *LoanRecord) Remaining() decimal.Decimal {
	return l.ToPay.Sub(l.Paid)
}

// BudgetRepository defines the secondary port for budget profile persistence.
type BudgetRepository interface {
	// CreateProfile persists a new budget profile.
	CreateProfile(ctx context.Context, profile *BudgetProfileRecord) error

	// GetProfile retrieves a budget profile with its partitions.
	GetProfile(ctx context.Context, id string) (*BudgetProfileRecord, error)

	// ListProfiles retrieves the budget profiles of a user.
	ListProfiles(ctx context.Context, userID string) ([]*BudgetProfileRecord, error)

	// TogglePartition adds the partition to the profile, or removes it if present.
	// Returns true if the partition is now part of the profile.
	TogglePartition(ctx context.Context, profileID, partitionID string) (bool, error)

	// DeleteProfile removes a profile and its budgets.
	DeleteProfile(ctx context.Context, id string) error

	// SetAmount sets the budget of a category under a profile.
	SetAmount(ctx context.Context, budget *BudgetRecord) error

	// GetAmount retrieves the budget of a category under a profile; zero when unset.
	GetAmount(ctx context.Context, profileID, categoryID string) (decimal.Decimal, error)

	// ListBudgetedCategories returns the categories that have a budget under the profile.
	ListBudgetedCategories(ctx context.Context, profileID string) ([]string, error)

	// GetNextProfileID returns the next available budget profile ID.
	GetNextProfileID(ctx context.Context) (string, error)
}

// BudgetProfileRecord represents a budget profile as stored in persistence.
type BudgetProfileRecord struct {
	ID           string
	UserID       string
	Name         string
	PartitionIDs []string
	CreatedAt    string
}

// BudgetRecord is the budget of one category under one profile.
type BudgetRecord struct {
	ProfileID  string
	CategoryID string
	Amount     decimal.Decimal
}

// BalanceWindow bounds a balance or listing in time. Overall ignores the bounds.
type BalanceWindow struct {
	Overall bool
	Start   *time.Time
	End     *time.Time
}

// BalanceFilter contains filter options for category balances.
type BalanceFilter struct {
	PartitionIDs []string // empty means every partition
	Window       BalanceWindow
}
