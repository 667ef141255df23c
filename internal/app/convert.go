package app

import (
	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func recordToUser(r *secondary.UserRecord) *primary.User {
	return &primary.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// recordToAccount groups the account relative to viewerID.
func recordToAccount(r *secondary.AccountRecord, viewerID string) *primary.Account {
	owners := make([]string, len(r.OwnerIDs))
	copy(owners, r.OwnerIDs)
	return &primary.Account{
		ID:        r.ID,
		Name:      r.Name,
		OwnerIDs:  owners,
		Group:     string(ledger.ClassifyAccount(viewerID, r.OwnerIDs)),
		CreatedAt: r.CreatedAt,
	}
}

func recordToPartition(r *secondary.PartitionRecord) *primary.Partition {
	return &primary.Partition{
		ID:        r.ID,
		AccountID: r.AccountID,
		Name:      r.Name,
		IsPrivate: r.IsPrivate,
		Archived:  r.Archived,
		CreatedAt: r.CreatedAt,
	}
}

func recordToCategory(r *secondary.CategoryRecord) *primary.Category {
	return &primary.Category{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Kind:      r.Kind,
		IsPrivate: r.IsPrivate,
		Archived:  r.Archived,
		CreatedAt: r.CreatedAt,
	}
}

func recordToTransaction(r *secondary.TransactionRecord) *primary.Transaction {
	return &primary.Transaction{
		ID:                r.ID,
		SourcePartitionID: r.SourcePartitionID,
		CategoryID:        r.CategoryID,
		Value:             r.Value,
		Description:       r.Description,
		CreatedAt:         r.CreatedAt,
		CounterpartID:     r.CounterpartID,
		IsCounterpart:     r.IsCounterpart,
		LoanID:            r.LoanID,
	}
}

func recordToLoan(r *secondary.LoanRecord) *primary.Loan {
	return &primary.Loan{
		ID:                  r.ID,
		TransactionID:       r.TransactionID,
		LenderPartitionID:   r.LenderPartitionID,
		BorrowerPartitionID: r.BorrowerPartitionID,
		CategoryID:          r.CategoryID,
		Amount:              r.Amount,
		ToPay:               r.ToPay,
		Paid:                r.Paid,
		Remaining:           r.Remaining(),
		Description:         r.Description,
		CreatedAt:           r.CreatedAt,
	}
}

func recordToProfile(r *secondary.BudgetProfileRecord) *primary.BudgetProfile {
	ids := make([]string, len(r.PartitionIDs))
	copy(ids, r.PartitionIDs)
	return &primary.BudgetProfile{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		PartitionIDs: ids,
		CreatedAt:    r.CreatedAt,
	}
}

func recordToCategoryTotal(r *secondary.CategoryTotal) *primary.CategoryTotal {
	return &primary.CategoryTotal{
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Kind:         r.Kind,
		Total:        r.Total,
		Count:        r.Count,
	}
}
