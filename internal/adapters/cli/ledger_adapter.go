package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/caburj/kwartrack/internal/ports/primary"
)

// LedgerAdapter translates CLI operations to LedgerService calls.
type LedgerAdapter struct {
	service primary.LedgerService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter with the given service.
func NewLedgerAdapter(service primary.LedgerService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{
		service: service,
		out:     out,
	}
}

// CreateUser registers a user.
func (a *LedgerAdapter) CreateUser(ctx context.Context, name, email string) error {
	user, err := a.service.CreateUser(ctx, primary.CreateUserRequest{Name: name, Email: email})
	if err != nil {
		return err
	}
	check(a.out, "Created user %s: %s", user.ID, user.Name)
	return nil
}

// ListUsers prints every user.
func (a *LedgerAdapter) ListUsers(ctx context.Context) error {
	users, err := a.service.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users found")
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, orDash(u.Email))
	}
	return w.Flush()
}

// CreateAccount creates an account, optionally with a first partition.
func (a *LedgerAdapter) CreateAccount(ctx context.Context, name string, ownerIDs []string, partitionName string) error {
	account, err := a.service.CreateAccount(ctx, primary.CreateAccountRequest{
		Name:          name,
		OwnerIDs:      ownerIDs,
		PartitionName: partitionName,
	})
	if err != nil {
		return err
	}
	check(a.out, "Created account %s: %s (owners: %s)", account.ID, account.Name, strings.Join(account.OwnerIDs, ", "))
	return nil
}

// RenameAccount renames an account.
func (a *LedgerAdapter) RenameAccount(ctx context.Context, accountID, name string) error {
	if err := a.service.RenameAccount(ctx, accountID, name); err != nil {
		return err
	}
	check(a.out, "Account %s renamed to %s", accountID, name)
	return nil
}

// SetAccountOwners replaces the owners of an account.
func (a *LedgerAdapter) SetAccountOwners(ctx context.Context, accountID string, ownerIDs []string) error {
	if err := a.service.SetAccountOwners(ctx, accountID, ownerIDs); err != nil {
		return err
	}
	check(a.out, "Account %s owners: %s", accountID, strings.Join(ownerIDs, ", "))
	return nil
}

// DeleteAccount deletes an account.
func (a *LedgerAdapter) DeleteAccount(ctx context.Context, accountID string) error {
	if err := a.service.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	check(a.out, "Deleted account %s", accountID)
	return nil
}

// CreatePartition adds a partition to an account.
func (a *LedgerAdapter) CreatePartition(ctx context.Context, accountID, name string, private bool) error {
	partition, err := a.service.CreatePartition(ctx, primary.CreatePartitionRequest{
		AccountID: accountID,
		Name:      name,
		IsPrivate: private,
	})
	if err != nil {
		return err
	}
	check(a.out, "Created partition %s: %s in %s", partition.ID, partition.Name, partition.AccountID)
	return nil
}

// UpdatePartition applies the changed fields of a partition.
func (a *LedgerAdapter) UpdatePartition(ctx context.Context, req primary.UpdatePartitionRequest) error {
	if req.Name == nil && req.IsPrivate == nil && req.Archived == nil {
		return fmt.Errorf("must specify at least --name, --private or --archived")
	}
	partition, err := a.service.UpdatePartition(ctx, req)
	if err != nil {
		return err
	}
	check(a.out, "Partition %s updated", partition.ID)
	return nil
}

// DeletePartition deletes a partition.
func (a *LedgerAdapter) DeletePartition(ctx context.Context, partitionID string) error {
	if err := a.service.DeletePartition(ctx, partitionID); err != nil {
		return err
	}
	check(a.out, "Deleted partition %s", partitionID)
	return nil
}

// CreateCategory creates a category for the acting user.
func (a *LedgerAdapter) CreateCategory(ctx context.Context, name, kind string, private bool) error {
	category, err := a.service.CreateCategory(ctx, primary.CreateCategoryRequest{
		Name:      name,
		Kind:      kind,
		IsPrivate: private,
	})
	if err != nil {
		return err
	}
	check(a.out, "Created %s category %s: %s", strings.ToLower(category.Kind), category.ID, category.Name)
	return nil
}

// UpdateCategory applies the changed fields of a category.
func (a *LedgerAdapter) UpdateCategory(ctx context.Context, req primary.UpdateCategoryRequest) error {
	if req.Name == nil && req.IsPrivate == nil && req.Archived == nil {
		return fmt.Errorf("must specify at least --name, --private or --archived")
	}
	category, err := a.service.UpdateCategory(ctx, req)
	if err != nil {
		return err
	}
	check(a.out, "Category %s updated", category.ID)
	return nil
}

// DeleteCategory deletes a category.
func (a *LedgerAdapter) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := a.service.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	check(a.out, "Deleted category %s", categoryID)
	return nil
}

// AddTransaction records a transaction.
func (a *LedgerAdapter) AddTransaction(ctx context.Context, req primary.CreateTransactionRequest) error {
	tx, err := a.service.CreateTransaction(ctx, req)
	if err != nil {
		return err
	}
	if tx.CounterpartID != "" {
		check(a.out, "Recorded transfer %s/%s: %s", tx.ID, tx.CounterpartID, money(tx.Value.Neg()))
		return nil
	}
	check(a.out, "Recorded %s: %s", tx.ID, money(tx.Value))
	return nil
}

// EditTransaction applies the changed fields of a transaction.
func (a *LedgerAdapter) EditTransaction(ctx context.Context, req primary.UpdateTransactionRequest) error {
	if req.CategoryID == nil && req.Value == nil && req.Description == nil && req.CreatedAt == nil {
		return fmt.Errorf("must specify at least --category, --value, --desc or --date")
	}
	tx, err := a.service.UpdateTransaction(ctx, req)
	if err != nil {
		return err
	}
	check(a.out, "Transaction %s updated: %s", tx.ID, money(tx.Value))
	return nil
}

// DeleteTransaction deletes a transaction and reports a deleted loan.
func (a *LedgerAdapter) DeleteTransaction(ctx context.Context, transactionID string) error {
	resp, err := a.service.DeleteTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	check(a.out, "Deleted transaction %s", resp.TransactionID)
	if resp.DeletedLoanID != "" {
		check(a.out, "Deleted loan %s and its payments", resp.DeletedLoanID)
	}
	return nil
}

// MakeLoan lends money between partitions.
func (a *LedgerAdapter) MakeLoan(ctx context.Context, req primary.MakeLoanRequest) error {
	loan, err := a.service.MakeLoan(ctx, req)
	if err != nil {
		return err
	}
	check(a.out, "Created loan %s: %s lent %s to %s, %s to pay",
		loan.ID, loan.LenderPartitionID, loan.Amount.StringFixed(2), loan.BorrowerPartitionID, loan.ToPay.StringFixed(2))
	return nil
}

// MakePayment pays back part of a loan.
func (a *LedgerAdapter) MakePayment(ctx context.Context, req primary.MakePaymentRequest) error {
	tx, err := a.service.MakePayment(ctx, req)
	if err != nil {
		return err
	}
	loan, err := a.service.GetLoan(ctx, req.LoanID)
	if err != nil {
		return fmt.Errorf("failed to reload loan: %w", err)
	}
	check(a.out, "Recorded payment %s on %s, remaining %s", tx.ID, loan.ID, loan.Remaining.StringFixed(2))
	return nil
}

// ShowLoan prints one loan.
func (a *LedgerAdapter) ShowLoan(ctx context.Context, loanID string) error {
	loan, err := a.service.GetLoan(ctx, loanID)
	if err != nil {
		return fmt.Errorf("failed to get loan: %w", err)
	}

	fmt.Fprintf(a.out, "\nLoan:      %s\n", loan.ID)
	fmt.Fprintf(a.out, "Lender:    %s\n", loan.LenderPartitionID)
	fmt.Fprintf(a.out, "Borrower:  %s\n", loan.BorrowerPartitionID)
	fmt.Fprintf(a.out, "Amount:    %s\n", loan.Amount.StringFixed(2))
	fmt.Fprintf(a.out, "To pay:    %s\n", loan.ToPay.StringFixed(2))
	fmt.Fprintf(a.out, "Paid:      %s\n", loan.Paid.StringFixed(2))
	fmt.Fprintf(a.out, "Remaining: %s\n", loan.Remaining.StringFixed(2))
	if loan.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", loan.Description)
	}
	fmt.Fprintln(a.out)
	return nil
}

// CreateBudgetProfile saves a named partition selection.
func (a *LedgerAdapter) CreateBudgetProfile(ctx context.Context, name string, partitionIDs []string) error {
	profile, err := a.service.CreateBudgetProfile(ctx, primary.CreateBudgetProfileRequest{
		Name:         name,
		PartitionIDs: partitionIDs,
	})
	if err != nil {
		return err
	}
	check(a.out, "Created budget profile %s: %s (%d partitions)", profile.ID, profile.Name, len(profile.PartitionIDs))
	return nil
}

// ToggleProfilePartition adds or removes a partition of a profile.
func (a *LedgerAdapter) ToggleProfilePartition(ctx context.Context, profileID, partitionID string) error {
	added, err := a.service.ToggleProfilePartition(ctx, profileID, partitionID)
	if err != nil {
		return err
	}
	if added {
		check(a.out, "Added %s to %s", partitionID, profileID)
	} else {
		check(a.out, "Removed %s from %s", partitionID, profileID)
	}
	return nil
}

// SetBudget sets the budget of a category.
func (a *LedgerAdapter) SetBudget(ctx context.Context, req primary.SetBudgetRequest) error {
	if err := a.service.SetBudget(ctx, req); err != nil {
		return err
	}
	check(a.out, "Budget of %s under %s set to %s", req.CategoryID, req.ProfileID, req.Amount.StringFixed(2))
	return nil
}

// DeleteBudgetProfile deletes a profile.
func (a *LedgerAdapter) DeleteBudgetProfile(ctx context.Context, profileID string) error {
	if err := a.service.DeleteBudgetProfile(ctx, profileID); err != nil {
		return err
	}
	check(a.out, "Deleted budget profile %s", profileID)
	return nil
}
