package primary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerService defines the primary port for every mutation of the ledger.
// Each successful mutation invalidates the cached reads it affects; a failed
// mutation invalidates nothing. The acting user is taken from the context.
type LedgerService interface {
	// CreateUser registers a new user.
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetUserByName retrieves a user by its unique name.
	GetUserByName(ctx context.Context, name string) (*User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]*User, error)

	// CreateAccount creates an account with its owners and a first partition.
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)

	// RenameAccount changes the name of an account.
	RenameAccount(ctx context.Context, accountID, name string) error

	// SetAccountOwners replaces the owners of an account.
	SetAccountOwners(ctx context.Context, accountID string, ownerIDs []string) error

	// DeleteAccount deletes an account that has no transactions.
	DeleteAccount(ctx context.Context, accountID string) error

	// CreatePartition adds a partition to an account.
	CreatePartition(ctx context.Context, req CreatePartitionRequest) (*Partition, error)

	// UpdatePartition renames, hides or archives a partition.
	UpdatePartition(ctx context.Context, req UpdatePartitionRequest) (*Partition, error)

	// DeletePartition deletes a partition that has no transactions.
	DeletePartition(ctx context.Context, partitionID string) error

	// CreateCategory creates a category owned by a user.
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)

	// UpdateCategory renames, hides or archives a category.
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error)

	// DeleteCategory deletes a category no transaction uses.
	DeleteCategory(ctx context.Context, categoryID string) error

	// CreateTransaction records an income, an expense or a transfer.
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*Transaction, error)

	// UpdateTransaction edits a transaction and its counterpart.
	UpdateTransaction(ctx context.Context, req UpdateTransactionRequest) (*Transaction, error)

	// DeleteTransaction deletes a transaction and its counterpart. Deleting the
	// transaction that made a loan deletes the loan and its payments.
	DeleteTransaction(ctx context.Context, transactionID string) (*DeleteTransactionResponse, error)

	// MakeLoan lends money from one partition to another.
	MakeLoan(ctx context.Context, req MakeLoanRequest) (*Loan, error)

	// MakePayment pays back part of a loan from the borrower to the lender.
	MakePayment(ctx context.Context, req MakePaymentRequest) (*Transaction, error)

	// GetLoan retrieves a loan with its paid amount.
	GetLoan(ctx context.Context, loanID string) (*Loan, error)

	// CreateBudgetProfile saves a named partition selection.
	CreateBudgetProfile(ctx context.Context, req CreateBudgetProfileRequest) (*BudgetProfile, error)

	// GetBudgetProfile retrieves a budget profile with its partitions.
	GetBudgetProfile(ctx context.Context, profileID string) (*BudgetProfile, error)

	// ToggleProfilePartition adds a partition to a profile, or removes it.
	// Returns true if the partition is now part of the profile.
	ToggleProfilePartition(ctx context.Context, profileID, partitionID string) (bool, error)

	// SetBudget sets the budget of a category under a profile.
	SetBudget(ctx context.Context, req SetBudgetRequest) error

	// DeleteBudgetProfile deletes a profile and its budgets.
	DeleteBudgetProfile(ctx context.Context, profileID string) error
}

// CreateUserRequest contains parameters for registering a user.
type CreateUserRequest struct {
	Name  string
	Email string
}

// CreateAccountRequest contains parameters for creating an account.
// An empty PartitionName creates no partition.
type CreateAccountRequest struct {
	Name          string
	OwnerIDs      []string
	PartitionName string
}

// CreatePartitionRequest contains parameters for creating a partition.
type CreatePartitionRequest struct {
	AccountID string
	Name      string
	IsPrivate bool
}

// UpdatePartitionRequest changes the fields that are set.
type UpdatePartitionRequest struct {
	PartitionID string
	Name        *string
	IsPrivate   *bool
	Archived    *bool
}

// CreateCategoryRequest contains parameters for creating a category.
type CreateCategoryRequest struct {
	OwnerID   string
	Name      string
	Kind      string
	IsPrivate bool
}

// UpdateCategoryRequest changes the fields that are set.
type UpdateCategoryRequest struct {
	CategoryID string
	Name       *string
	IsPrivate  *bool
	Archived   *bool
}

// CreateTransactionRequest contains parameters for recording a transaction.
// Value is the positive amount entered by the user; the sign follows the
// category kind. DestinationPartitionID is required for transfers only.
type CreateTransactionRequest struct {
	SourcePartitionID      string
	DestinationPartitionID string
	CategoryID             string
	Value                  decimal.Decimal
	Description            string
	CreatedAt              *time.Time // now when nil
}

// UpdateTransactionRequest changes the fields that are set.
type UpdateTransactionRequest struct {
	TransactionID string
	CategoryID    *string
	Value         *decimal.Decimal // positive amount
	Description   *string
	CreatedAt     *time.Time
}

// DeleteTransactionResponse reports what a deletion removed.
type DeleteTransactionResponse struct {
	TransactionID string
	DeletedLoanID string
}

// MakeLoanRequest contains parameters for making a loan.
type MakeLoanRequest struct {
	LenderPartitionID   string
	BorrowerPartitionID string
	CategoryID          string
	Amount              decimal.Decimal
	ToPay               decimal.Decimal // defaults to Amount when zero
	Description         string
	CreatedAt           *time.Time
}

// MakePaymentRequest contains parameters for paying back a loan.
type MakePaymentRequest struct {
	LoanID      string
	Amount      decimal.Decimal
	Description string
	CreatedAt   *time.Time
}

// CreateBudgetProfileRequest contains parameters for creating a budget profile.
type CreateBudgetProfileRequest struct {
	UserID       string
	Name         string
	PartitionIDs []string
}

// SetBudgetRequest contains parameters for budgeting a category.
type SetBudgetRequest struct {
	ProfileID  string
	CategoryID string
	Amount     decimal.Decimal
}

// User represents a user at the port boundary.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt string
}

// Account represents an account at the port boundary.
type Account struct {
	ID        string
	Name      string
	OwnerIDs  []string
	Group     string // owned, common or others, relative to the viewer
	CreatedAt string
}

// Partition represents a partition at the port boundary.
type Partition struct {
	ID        string
	AccountID string
	Name      string
	IsPrivate bool
	Archived  bool
	CreatedAt string
}

// Category represents a category at the port boundary.
type Category struct {
	ID        string
	OwnerID   string
	Name      string
	Kind      string
	IsPrivate bool
	Archived  bool
	CreatedAt string
}

// Transaction represents one posting at the port boundary.
type Transaction struct {
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

// Loan represents a loan at the port boundary.
type Loan struct {
	ID                  string
	TransactionID       string
	LenderPartitionID   string
	BorrowerPartitionID string
	CategoryID          string
	Amount              decimal.Decimal
	ToPay               decimal.Decimal
	Paid                decimal.Decimal
	Remaining           decimal.Decimal
	Description         string
	CreatedAt           string
}

// BudgetProfile represents a budget profile at the port boundary.
type BudgetProfile struct {
	ID           string
	UserID       string
	Name         string
	PartitionIDs []string
	CreatedAt    string
}
