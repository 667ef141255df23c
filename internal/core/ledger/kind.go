// Package ledger contains the pure business rules for accounts, partitions,
// categories, transactions and loans.
// This is part of the Functional Core - no I/O, only pure functions.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryKind classifies a category and decides the sign of its transactions.
type CategoryKind string

const (
	KindIncome   CategoryKind = "Income"
	KindExpense  CategoryKind = "Expense"
	KindTransfer CategoryKind = "Transfer"
)

// Kinds lists every category kind in display order.
func Kinds() []CategoryKind {
	return []CategoryKind{KindIncome, KindExpense, KindTransfer}
}

// IsValid returns true if the kind is known.
func (k CategoryKind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	default:
		return false
	}
}

// ParseKind accepts a kind name in any letter case.
func ParseKind(s string) (CategoryKind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown category kind %q (want Income, Expense or Transfer)", s)
}

// AccountGroup tells how an account relates to the viewing user.
type AccountGroup string

const (
	GroupOwned  AccountGroup = "owned"  // the user is the only owner
	GroupCommon AccountGroup = "common" // the user shares ownership
	GroupOthers AccountGroup = "others" // the user is not an owner
)

// ClassifyAccount returns the group of an account for userID given its owners.
func ClassifyAccount(userID string, ownerIDs []string) AccountGroup {
	owns := false
	for _, id := range ownerIDs {
		if id == userID {
			owns = true
			break
		}
	}
	switch {
	case owns && len(ownerIDs) == 1:
		return GroupOwned
	case owns:
		return GroupCommon
	default:
		return GroupOthers
	}
}

// SignedValue returns the value posted against a partition for a user-entered
// positive amount: income is positive, expense negative, and a transfer is
// negative on the source and positive on the counterpart.
func SignedValue(kind CategoryKind, amount decimal.Decimal, counterpart bool) decimal.Decimal {
	amount = amount.Abs()
	switch kind {
	case KindIncome:
		return amount
	case KindTransfer:
		if counterpart {
			return amount
		}
		return amount.Neg()
	default:
		return amount.Neg()
	}
}
