package invalidation

import (
	"slices"

	"github.com/caburj/kwartrack/internal/core/effects"
	qk "github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/core/selection"
)

// Plan is the invalidation of one mutation: the deduplicated patterns to
// refresh, in first-seen order, and the selection actions that keep the
// issuing session consistent.
type Plan struct {
	Mutation string
	Patterns []qk.Pattern
	Dispatch []selection.Action
}

// Effects returns all effects as a flat slice for execution.
func (p Plan) Effects() []effects.Effect {
	result := make([]effects.Effect, 0, 2+len(p.Dispatch))
	if len(p.Patterns) > 0 {
		patterns := make([]qk.Pattern, len(p.Patterns))
		copy(patterns, p.Patterns)
		result = append(result, effects.InvalidateEffect{Mutation: p.Mutation, Patterns: patterns})
	}
	for _, a := range p.Dispatch {
		result = append(result, effects.DispatchEffect{Action: a})
	}
	result = append(result, effects.LogEffect{
		Level:   "debug",
		Message: "invalidation planned",
		Fields:  map[string]any{"mutation": p.Mutation, "patterns": len(p.Patterns)},
	})
	return result
}

// Covers reports whether some pattern of the plan matches k.
func (p Plan) Covers(k qk.Key) bool {
	for _, pat := range p.Patterns {
		if pat.Matches(k) {
			return true
		}
	}
	return false
}

// planBuilder collects patterns and drops duplicates.
type planBuilder struct {
	plan Plan
	seen map[qk.Pattern]struct{}
}

func newBuilder(variant string) *planBuilder {
	return &planBuilder{plan: Plan{Mutation: variant}, seen: make(map[qk.Pattern]struct{})}
}

func (b *planBuilder) add(p qk.Pattern) {
	if _, ok := b.seen[p]; ok {
		return
	}
	b.seen[p] = struct{}{}
	b.plan.Patterns = append(b.plan.Patterns, p)
}

func (b *planBuilder) exact(q qk.Query) { b.add(qk.Exact(q.Key())) }

func (b *planBuilder) dispatch(a selection.Action) { b.plan.Dispatch = append(b.plan.Dispatch, a) }

func (b *planBuilder) scope(name qk.Name, id string) {
	if id == "" {
		return
	}
	b.add(qk.ByScope(name, id))
}

func (b *planBuilder) lists() {
	b.add(qk.ByName(qk.NameTransactions))
	b.add(qk.ByName(qk.NameGroupedTransactions))
}

func (b *planBuilder) partition(ref *PartitionRef) {
	if ref == nil {
		return
	}
	if ref.PartitionID != "" {
		b.scope(qk.NamePartitionBalance, ref.PartitionID)
		b.exact(qk.PartitionCanBeDeleted{PartitionID: ref.PartitionID})
	}
	if ref.AccountID != "" {
		b.scope(qk.NameAccountBalance, ref.AccountID)
		b.exact(qk.AccountCanBeDeleted{AccountID: ref.AccountID})
	}
}

func (b *planBuilder) loanLists(t TransactionShape) {
	if t.LenderPartitionID != "" {
		b.exact(qk.UnpaidLoans{LenderPartitionID: t.LenderPartitionID})
	}
	if t.UserID != "" {
		b.exact(qk.PartitionsWithLoans{UserID: t.UserID})
	}
}

func (b *planBuilder) transaction(t TransactionShape) {
	b.lists()
	if t.CategoryID != "" {
		b.scope(qk.NameCategoryBalance, t.CategoryID)
		b.exact(qk.CategoryCanBeDeleted{CategoryID: t.CategoryID})
	}
	if t.CategoryKind != "" {
		b.scope(qk.NameCategoryKindBalance, string(t.CategoryKind))
	}
	source := t.Source
	b.partition(&source)
	b.partition(t.Counterpart)
	if t.IsLoanRelated() {
		b.loanLists(t)
	}
}

// PlanInvalidations computes the invalidation of a mutation result. It never
// fails: missing references only omit their branch, and a nil result yields
// an empty plan.
func PlanInvalidations(result MutationResult) Plan {
	if result == nil {
		return Plan{}
	}
	b := newBuilder(result.Variant())

	switch r := result.(type) {
	case TransactionCreated:
		b.transaction(r.Transaction)
	case TransactionUpdated:
		b.transaction(r.Before)
		b.transaction(r.After)
	case TransactionDeleted:
		b.transaction(r.Transaction)
		if r.DeletedLoanID != "" {
			b.loanLists(r.Transaction)
			b.dispatch(selection.RemoveLoanIDs{IDs: []string{r.DeletedLoanID}})
		}
	case LoanCreated, LoanPaymentMade:
		t := loanShape(r)
		b.transaction(t)
		b.loanLists(t)
	case PartitionChanged:
		if r.AccountID != "" {
			b.scope(qk.NamePartitions, r.AccountID)
		} else {
			b.add(qk.ByName(qk.NamePartitions))
		}
		b.lists()
		if r.Deleted && r.PartitionID != "" {
			// Profile membership cascades with the partition.
			b.add(qk.ByName(qk.NameBudgetProfiles))
			b.dispatch(selection.RemoveIDs{Field: selection.FieldPartitions, IDs: []string{r.PartitionID}})
		}
	case CategoryChanged:
		if r.UserID != "" {
			b.exact(qk.Categories{UserID: r.UserID})
		} else {
			b.add(qk.ByName(qk.NameCategories))
		}
		b.lists()
		if r.Deleted && r.CategoryID != "" {
			// Budgets cascade with the category.
			b.add(qk.ByName(qk.NameBudgetAmount))
			b.dispatch(selection.RemoveIDs{Field: selection.FieldCategories, IDs: []string{r.CategoryID}})
		}
	case AccountChanged:
		// Every user lists every account, grouped as owned, common or others.
		b.add(qk.ByName(qk.NameAccounts))
		b.lists()
	case BudgetProfileToggled:
		for _, categoryID := range r.CategoryIDs {
			b.exact(qk.BudgetAmount{CategoryID: categoryID, ProfileID: r.ProfileID})
		}
		if r.UserID != "" {
			b.exact(qk.BudgetProfiles{UserID: r.UserID})
		}
		switch {
		case r.Deleted:
			b.dispatch(selection.SyncBudgetProfile{ProfileID: r.ProfileID, Deleted: true})
		case r.PartitionIDs != nil:
			b.dispatch(selection.SyncBudgetProfile{ProfileID: r.ProfileID, PartitionIDs: slices.Clone(r.PartitionIDs)})
		}
	}

	return b.plan
}

func loanShape(r MutationResult) TransactionShape {
	switch v := r.(type) {
	case LoanCreated:
		return v.Transaction
	case LoanPaymentMade:
		return v.Transaction
	default:
		return TransactionShape{}
	}
}
