// Package invalidation maps the result of a successful mutation to the set of
// cached queries that must be refreshed.
// This is part of the Functional Core - no I/O, only pure functions.
package invalidation

import "github.com/caburj/kwartrack/internal/core/ledger"

// MutationResult describes what one successful mutation changed. The set of
// implementations is closed.
type MutationResult interface {
	Variant() string
	isMutation()
}

// PartitionRef names a partition together with its owning account.
type PartitionRef struct {
	PartitionID string
	AccountID   string
}

// TransactionShape carries the identifiers a transaction touches. Empty fields
// are unknown and their invalidations are skipped.
type TransactionShape struct {
	UserID       string
	CategoryID   string
	CategoryKind ledger.CategoryKind
	Source       PartitionRef
	Counterpart  *PartitionRef // destination side of a transfer or loan

	LoanID            string // set when the transaction is a loan or a loan payment
	LenderPartitionID string
}

// IsLoanRelated returns true if the transaction belongs to a loan.
func (t TransactionShape) IsLoanRelated() bool {
	return t.LoanID != ""
}

// TransactionCreated is the result of recording a transaction.
type TransactionCreated struct {
	Transaction TransactionShape
}

// TransactionUpdated is the result of editing a transaction. Before holds the
// shape prior to the edit so a moved transaction refreshes both sides.
type TransactionUpdated struct {
	Before TransactionShape
	After  TransactionShape
}

// TransactionDeleted is the result of deleting a transaction. DeletedLoanID is
// set when the deleted transaction originated a loan, which is deleted with it.
type TransactionDeleted struct {
	Transaction   TransactionShape
	DeletedLoanID string
}

// LoanCreated is the result of making a loan.
type LoanCreated struct {
	Transaction TransactionShape
}

// LoanPaymentMade is the result of paying back part of a loan.
type LoanPaymentMade struct {
	Transaction TransactionShape
}

// PartitionChanged covers partition creation, rename, privacy, archive and deletion.
// Deleted is set when the partition no longer exists.
type PartitionChanged struct {
	UserID      string
	PartitionID string
	AccountID   string
	Deleted     bool
}

// CategoryChanged covers category creation, rename, privacy, archive and deletion.
// Deleted is set when the category no longer exists.
type CategoryChanged struct {
	UserID     string
	CategoryID string
	Deleted    bool
}

// AccountChanged covers account creation, rename, ownership and deletion.
type AccountChanged struct {
	UserID    string
	AccountID string
}

// BudgetProfileToggled covers budget profile edits: creation, partition
// membership and budget amounts. CategoryIDs lists the categories whose
// budget under the profile changed. PartitionIDs is the profile's membership
// after the edit, nil when membership did not change. Deleted is set when the
// profile was removed.
type BudgetProfileToggled struct {
	UserID       string
	ProfileID    string
	CategoryIDs  []string
	PartitionIDs []string
	Deleted      bool
}

func (TransactionCreated) Variant() string   { return "transaction_created" }
func (TransactionUpdated) Variant() string   { return "transaction_updated" }
func (TransactionDeleted) Variant() string   { return "transaction_deleted" }
func (LoanCreated) Variant() string          { return "loan_created" }
func (LoanPaymentMade) Variant() string      { return "loan_payment_made" }
func (PartitionChanged) Variant() string     { return "partition_changed" }
func (CategoryChanged) Variant() string      { return "category_changed" }
func (AccountChanged) Variant() string       { return "account_changed" }
func (BudgetProfileToggled) Variant() string { return "budget_profile_toggled" }

func (TransactionCreated) isMutation()   {}
func (TransactionUpdated) isMutation()   {}
func (TransactionDeleted) isMutation()   {}
func (LoanCreated) isMutation()          {}
func (LoanPaymentMade) isMutation()      {}
func (PartitionChanged) isMutation()     {}
func (CategoryChanged) isMutation()      {}
func (AccountChanged) isMutation()       {}
func (BudgetProfileToggled) isMutation() {}
