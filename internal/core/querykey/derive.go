package querykey

import (
	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/core/selection"
)

// Derivations read only the state fields each query depends on. Anything else
// in the state must not reach a key.

// PartitionBalanceFor derives the balance query of a partition.
func PartitionBalanceFor(s selection.State, partitionID string) PartitionBalance {
	return PartitionBalance{PartitionID: partitionID, Window: WindowOf(s)}
}

// AccountBalanceFor derives the balance query of an account.
func AccountBalanceFor(s selection.State, accountID string) AccountBalance {
	return AccountBalance{AccountID: accountID, Window: WindowOf(s)}
}

// CategoryBalanceFor derives the balance query of a category.
func CategoryBalanceFor(s selection.State, categoryID string) CategoryBalance {
	return CategoryBalance{
		CategoryID:   categoryID,
		PartitionIDs: s.IDs(selection.FieldPartitions),
		Window:       WindowOf(s),
	}
}

// CategoryKindBalanceFor derives the balance query of a category kind.
func CategoryKindBalanceFor(s selection.State, userID string, kind ledger.CategoryKind) CategoryKindBalance {
	return CategoryKindBalance{
		UserID:       userID,
		Kind:         kind,
		PartitionIDs: s.IDs(selection.FieldPartitions),
		Window:       WindowOf(s),
	}
}

// FilterFor derives the transaction filter of a user.
func FilterFor(s selection.State, userID string) Filter {
	return Filter{
		UserID:       userID,
		PartitionIDs: s.IDs(selection.FieldPartitions),
		CategoryIDs:  s.IDs(selection.FieldCategories),
		LoanIDs:      s.IDs(selection.FieldLoans),
		Start:        s.DateRangeStart,
		End:          s.DateRangeEnd,
		Overall:      s.ShowOverallBalance,
	}
}

// TransactionsFor derives the paginated transaction query.
func TransactionsFor(s selection.State, userID string) Transactions {
	return Transactions{Filter: FilterFor(s, userID), Page: s.CurrentPage, PerPage: s.ItemsPerPage}
}

// GroupedTransactionsFor derives the grouped transaction query. Pagination is
// not part of it.
func GroupedTransactionsFor(s selection.State, userID string) GroupedTransactions {
	return GroupedTransactions{Filter: FilterFor(s, userID)}
}

// BudgetAmountsFor derives the budget amount queries of the active profile.
// It returns nil when no profile is active.
func BudgetAmountsFor(s selection.State, categoryIDs []string) []BudgetAmount {
	if !s.HasBudgetProfile() {
		return nil
	}
	out := make([]BudgetAmount, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		out = append(out, BudgetAmount{CategoryID: id, ProfileID: s.ActiveBudgetProfileID})
	}
	return out
}
