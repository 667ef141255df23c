package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

var allowed = GuardResult{Allowed: true}

// CreateTransactionContext provides context for transaction creation guards.
type CreateTransactionContext struct {
	SourcePartitionID      string
	DestinationPartitionID string // empty unless the category is a transfer
	CategoryKind           CategoryKind
	CategoryArchived       bool
	SourceArchived         bool
	Value                  decimal.Decimal
}

// CanCreateTransaction evaluates whether a transaction can be recorded.
// Rules:
// - Source partition and category must be usable (not archived)
// - Value must be positive
// - Transfers need a destination different from the source
// - Income and expense transactions must not name a destination
func CanCreateTransaction(ctx CreateTransactionContext) GuardResult {
	if ctx.SourcePartitionID == "" {
		return deny("source partition is required")
	}
	if !ctx.CategoryKind.IsValid() {
		return deny("unknown category kind %q", ctx.CategoryKind)
	}
	if ctx.SourceArchived {
		return deny("partition %s is archived", ctx.SourcePartitionID)
	}
	if ctx.CategoryArchived {
		return deny("category is archived")
	}
	if !ctx.Value.IsPositive() {
		return deny("value must be positive (got %s)", ctx.Value.String())
	}

	if ctx.CategoryKind == KindTransfer {
		if ctx.DestinationPartitionID == "" {
			return deny("transfer requires a destination partition")
		}
		if ctx.DestinationPartitionID == ctx.SourcePartitionID {
			return deny("cannot transfer from partition %s to itself", ctx.SourcePartitionID)
		}
		return allowed
	}

	if ctx.DestinationPartitionID != "" {
		return deny("only transfers can have a destination partition (category kind: %s)", ctx.CategoryKind)
	}
	return allowed
}

// UpdateTransactionContext provides context for transaction update guards.
type UpdateTransactionContext struct {
	TransactionID string
	IsLoanRelated bool
	NewValue      *decimal.Decimal
	NewKind       *CategoryKind
	CurrentKind   CategoryKind
}

// CanUpdateTransaction evaluates whether a transaction can be edited.
// Rules:
// - A new value must be positive
// - Loan transactions keep a transfer category
// - Changing between transfer and non-transfer is not allowed (counterparts would dangle)
func CanUpdateTransaction(ctx UpdateTransactionContext) GuardResult {
	if ctx.NewValue != nil && !ctx.NewValue.IsPositive() {
		return deny("value must be positive (got %s)", ctx.NewValue.String())
	}
	if ctx.NewKind == nil {
		return allowed
	}
	if ctx.IsLoanRelated && *ctx.NewKind != KindTransfer {
		return deny("transaction %s belongs to a loan and must stay a transfer", ctx.TransactionID)
	}
	if (*ctx.NewKind == KindTransfer) != (ctx.CurrentKind == KindTransfer) {
		return deny("cannot change transaction %s between transfer and %s", ctx.TransactionID, strings.ToLower(string(*ctx.NewKind)))
	}
	return allowed
}

// MakeLoanContext provides context for loan creation guards.
type MakeLoanContext struct {
	SourcePartitionID      string
	DestinationPartitionID string
	CategoryKind           CategoryKind
	Amount                 decimal.Decimal
	ToPay                  decimal.Decimal
}

// CanMakeALoan evaluates whether a loan can be made.
// Rules:
// - Category must be a transfer
// - Lender and borrower partitions must differ
// - Amount must be positive
// - The amount to pay back cannot be less than the amount lent
func CanMakeALoan(ctx MakeLoanContext) GuardResult {
	if ctx.CategoryKind != KindTransfer {
		return deny("loans require a transfer category (got %s)", ctx.CategoryKind)
	}
	if ctx.SourcePartitionID == "" || ctx.DestinationPartitionID == "" {
		return deny("loans require both a lender and a borrower partition")
	}
	if ctx.SourcePartitionID == ctx.DestinationPartitionID {
		return deny("cannot lend from partition %s to itself", ctx.SourcePartitionID)
	}
	if !ctx.Amount.IsPositive() {
		return deny("loan amount must be positive (got %s)", ctx.Amount.String())
	}
	if ctx.ToPay.LessThan(ctx.Amount) {
		return deny("amount to pay (%s) cannot be less than the amount lent (%s)", ctx.ToPay.String(), ctx.Amount.String())
	}
	return allowed
}

// MakePaymentContext provides context for loan payment guards.
type MakePaymentContext struct {
	LoanID    string
	Amount    decimal.Decimal
	Remaining decimal.Decimal
}

// CanMakeAPayment evaluates whether a payment against a loan is allowed.
// Rules:
// - Loan must still have an outstanding amount
// - Amount must be positive and not exceed what remains
func CanMakeAPayment(ctx MakePaymentContext) GuardResult {
	if !ctx.Remaining.IsPositive() {
		return deny("loan %s is already paid", ctx.LoanID)
	}
	if !ctx.Amount.IsPositive() {
		return deny("payment must be positive (got %s)", ctx.Amount.String())
	}
	if ctx.Amount.GreaterThan(ctx.Remaining) {
		return deny("payment %s exceeds remaining %s on loan %s", ctx.Amount.String(), ctx.Remaining.String(), ctx.LoanID)
	}
	return allowed
}

// DeleteEntityContext provides context for partition, account and category
// deletion guards.
type DeleteEntityContext struct {
	ID               string
	TransactionCount int
	PartitionCount   int // accounts only
}

// CanDeletePartition evaluates whether a partition can be deleted.
// Rules:
// - No transaction may post against the partition
func CanDeletePartition(ctx DeleteEntityContext) GuardResult {
	if ctx.TransactionCount > 0 {
		return deny("cannot delete partition %s with %d transaction(s)", ctx.ID, ctx.TransactionCount)
	}
	return allowed
}

// CanDeleteAccount evaluates whether an account can be deleted.
// Rules:
// - No transaction may post against any of its partitions
func CanDeleteAccount(ctx DeleteEntityContext) GuardResult {
	if ctx.TransactionCount > 0 {
		return deny("cannot delete account %s: its %d partition(s) have %d transaction(s)", ctx.ID, ctx.PartitionCount, ctx.TransactionCount)
	}
	return allowed
}

// CanDeleteCategory evaluates whether a category can be deleted.
// Rules:
// - No transaction may use the category
func CanDeleteCategory(ctx DeleteEntityContext) GuardResult {
	if ctx.TransactionCount > 0 {
		return deny("cannot delete category %s used by %d transaction(s)", ctx.ID, ctx.TransactionCount)
	}
	return allowed
}

// RequireName rejects an empty or whitespace-only name for the given entity.
func RequireName(entity, name string) GuardResult {
	if strings.TrimSpace(name) == "" {
		return deny("%s name cannot be empty", entity)
	}
	return allowed
}
