package invalidation

import (
	"slices"
	"testing"
	"time"

	"github.com/caburj/kwartrack/internal/core/effects"
	"github.com/caburj/kwartrack/internal/core/ledger"
	qk "github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/core/selection"
)

func expense() TransactionShape {
	return TransactionShape{
		UserID:       "USER-001",
		CategoryID:   "CAT-001",
		CategoryKind: ledger.KindExpense,
		Source:       PartitionRef{PartitionID: "PART-001", AccountID: "ACC-001"},
	}
}

func transfer() TransactionShape {
	t := expense()
	t.CategoryID = "CAT-009"
	t.CategoryKind = ledger.KindTransfer
	t.Counterpart = &PartitionRef{PartitionID: "PART-002", AccountID: "ACC-002"}
	return t
}

func loan() TransactionShape {
	t := transfer()
	t.LoanID = "LOAN-001"
	t.LenderPartitionID = "PART-001"
	return t
}

func baseSet(categoryID string, kind ledger.CategoryKind, partitionID, accountID string) []qk.Pattern {
	return []qk.Pattern{
		qk.ByName(qk.NameTransactions),
		qk.ByName(qk.NameGroupedTransactions),
		qk.ByScope(qk.NameCategoryBalance, categoryID),
		qk.Exact(qk.CategoryCanBeDeleted{CategoryID: categoryID}.Key()),
		qk.ByScope(qk.NameCategoryKindBalance, string(kind)),
		qk.ByScope(qk.NamePartitionBalance, partitionID),
		qk.Exact(qk.PartitionCanBeDeleted{PartitionID: partitionID}.Key()),
		qk.ByScope(qk.NameAccountBalance, accountID),
		qk.Exact(qk.AccountCanBeDeleted{AccountID: accountID}.Key()),
	}
}

func counterpartSet(partitionID, accountID string) []qk.Pattern {
	return []qk.Pattern{
		qk.ByScope(qk.NamePartitionBalance, partitionID),
		qk.Exact(qk.PartitionCanBeDeleted{PartitionID: partitionID}.Key()),
		qk.ByScope(qk.NameAccountBalance, accountID),
		qk.Exact(qk.AccountCanBeDeleted{AccountID: accountID}.Key()),
	}
}

func loanSet() []qk.Pattern {
	return []qk.Pattern{
		qk.Exact(qk.UnpaidLoans{LenderPartitionID: "PART-001"}.Key()),
		qk.Exact(qk.PartitionsWithLoans{UserID: "USER-001"}.Key()),
	}
}

func assertSameSet(t *testing.T, got, want []qk.Pattern) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %d patterns, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for _, w := range want {
		if !slices.Contains(got, w) {
			t.Errorf("missing pattern %s", w)
		}
	}
	for _, g := range got {
		if !slices.Contains(want, g) {
			t.Errorf("unexpected pattern %s", g)
		}
	}
}

func TestPlan_TransactionCreated_NonTransfer(t *testing.T) {
	plan := PlanInvalidations(TransactionCreated{Transaction: expense()})

	assertSameSet(t, plan.Patterns, baseSet("CAT-001", ledger.KindExpense, "PART-001", "ACC-001"))
	for _, p := range plan.Patterns {
		if p.Scope == "PART-002" || p.Scope == "ACC-002" {
			t.Errorf("counterpart-scoped pattern present: %s", p)
		}
	}
}

func TestPlan_TransactionCreated_Transfer(t *testing.T) {
	plan := PlanInvalidations(TransactionCreated{Transaction: transfer()})

	want := append(baseSet("CAT-009", ledger.KindTransfer, "PART-001", "ACC-001"), counterpartSet("PART-002", "ACC-002")...)
	assertSameSet(t, plan.Patterns, want)
}

func TestPlan_TransferWithinOneAccountDeduplicates(t *testing.T) {
	shape := transfer()
	shape.Counterpart = &PartitionRef{PartitionID: "PART-002", AccountID: "ACC-001"}

	plan := PlanInvalidations(TransactionCreated{Transaction: shape})
	want := append(baseSet("CAT-009", ledger.KindTransfer, "PART-001", "ACC-001"),
		qk.ByScope(qk.NamePartitionBalance, "PART-002"),
		qk.Exact(qk.PartitionCanBeDeleted{PartitionID: "PART-002"}.Key()),
	)
	assertSameSet(t, plan.Patterns, want)
}

func TestPlan_TransactionUpdated_CoversBothShapes(t *testing.T) {
	before := expense()
	after := expense()
	after.CategoryID = "CAT-002"
	after.Source = PartitionRef{PartitionID: "PART-003", AccountID: "ACC-003"}

	plan := PlanInvalidations(TransactionUpdated{Before: before, After: after})

	want := baseSet("CAT-001", ledger.KindExpense, "PART-001", "ACC-001")
	for _, p := range baseSet("CAT-002", ledger.KindExpense, "PART-003", "ACC-003") {
		if !slices.Contains(want, p) {
			want = append(want, p)
		}
	}
	assertSameSet(t, plan.Patterns, want)
}

func TestPlan_LoanVariants(t *testing.T) {
	tests := []struct {
		name   string
		result MutationResult
	}{
		{"loan created", LoanCreated{Transaction: loan()}},
		{"loan payment", LoanPaymentMade{Transaction: loan()}},
		{"loan transaction created", TransactionCreated{Transaction: loan()}},
	}
	want := append(baseSet("CAT-009", ledger.KindTransfer, "PART-001", "ACC-001"), counterpartSet("PART-002", "ACC-002")...)
	want = append(want, loanSet()...)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSameSet(t, PlanInvalidations(tt.result).Patterns, want)
		})
	}
}

func TestPlan_LoanCreatedWithoutLenderOmitsBranch(t *testing.T) {
	shape := transfer()
	shape.LoanID = "LOAN-001"

	plan := PlanInvalidations(LoanCreated{Transaction: shape})
	if !plan.Covers(qk.PartitionsWithLoans{UserID: "USER-001"}.Key()) {
		t.Error("partitionsWithLoans not invalidated")
	}
	for _, p := range plan.Patterns {
		if p.Name == qk.NameUnpaidLoans {
			t.Errorf("unpaidLoans planned without a lender: %s", p)
		}
	}
}

func TestPlan_TransactionDeleted_LoanRemovesSelection(t *testing.T) {
	plan := PlanInvalidations(TransactionDeleted{Transaction: loan(), DeletedLoanID: "LOAN-001"})

	if len(plan.Dispatch) != 1 {
		t.Fatalf("Dispatch = %v, want one RemoveLoanIDs", plan.Dispatch)
	}
	remove, ok := plan.Dispatch[0].(selection.RemoveLoanIDs)
	if !ok || !slices.Equal(remove.IDs, []string{"LOAN-001"}) {
		t.Errorf("Dispatch[0] = %#v", plan.Dispatch[0])
	}

	plain := PlanInvalidations(TransactionDeleted{Transaction: expense()})
	if len(plain.Dispatch) != 0 {
		t.Errorf("non-loan delete dispatched %v", plain.Dispatch)
	}
}

func TestPlan_EntityChanges(t *testing.T) {
	tests := []struct {
		name   string
		result MutationResult
		want   []qk.Pattern
	}{
		{
			name:   "partition",
			result: PartitionChanged{UserID: "USER-001", PartitionID: "PART-001", AccountID: "ACC-001"},
			want: []qk.Pattern{
				qk.ByScope(qk.NamePartitions, "ACC-001"),
				qk.ByName(qk.NameTransactions),
				qk.ByName(qk.NameGroupedTransactions),
			},
		},
		{
			name:   "category",
			result: CategoryChanged{UserID: "USER-001", CategoryID: "CAT-001"},
			want: []qk.Pattern{
				qk.Exact(qk.Categories{UserID: "USER-001"}.Key()),
				qk.ByName(qk.NameTransactions),
				qk.ByName(qk.NameGroupedTransactions),
			},
		},
		{
			name:   "account",
			result: AccountChanged{UserID: "USER-001", AccountID: "ACC-001"},
			want: []qk.Pattern{
				qk.ByName(qk.NameAccounts),
				qk.ByName(qk.NameTransactions),
				qk.ByName(qk.NameGroupedTransactions),
			},
		},
		{
			name:   "budget profile",
			result: BudgetProfileToggled{UserID: "USER-001", ProfileID: "BP-001", CategoryIDs: []string{"CAT-001", "CAT-002"}},
			want: []qk.Pattern{
				qk.Exact(qk.BudgetAmount{CategoryID: "CAT-001", ProfileID: "BP-001"}.Key()),
				qk.Exact(qk.BudgetAmount{CategoryID: "CAT-002", ProfileID: "BP-001"}.Key()),
				qk.Exact(qk.BudgetProfiles{UserID: "USER-001"}.Key()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSameSet(t, PlanInvalidations(tt.result).Patterns, tt.want)
		})
	}
}

func TestPlan_DeletedEntityRemovesSelection(t *testing.T) {
	tests := []struct {
		name   string
		result MutationResult
		want   selection.RemoveIDs
	}{
		{
			name:   "partition",
			result: PartitionChanged{UserID: "USER-001", PartitionID: "PART-004", AccountID: "ACC-001", Deleted: true},
			want:   selection.RemoveIDs{Field: selection.FieldPartitions, IDs: []string{"PART-004"}},
		},
		{
			name:   "category",
			result: CategoryChanged{UserID: "USER-001", CategoryID: "CAT-007", Deleted: true},
			want:   selection.RemoveIDs{Field: selection.FieldCategories, IDs: []string{"CAT-007"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanInvalidations(tt.result)
			if len(plan.Dispatch) != 1 {
				t.Fatalf("Dispatch = %v, want one RemoveIDs", plan.Dispatch)
			}
			got, ok := plan.Dispatch[0].(selection.RemoveIDs)
			if !ok || got.Field != tt.want.Field || !slices.Equal(got.IDs, tt.want.IDs) {
				t.Errorf("Dispatch[0] = %#v, want %#v", plan.Dispatch[0], tt.want)
			}
		})
	}

	deleted := PlanInvalidations(PartitionChanged{UserID: "USER-001", PartitionID: "PART-004", AccountID: "ACC-001", Deleted: true})
	if !slices.Contains(deleted.Patterns, qk.ByName(qk.NameBudgetProfiles)) {
		t.Errorf("partition delete does not refresh budget profiles: %v", deleted.Patterns)
	}

	renamed := PlanInvalidations(CategoryChanged{UserID: "USER-001", CategoryID: "CAT-007"})
	if len(renamed.Dispatch) != 0 {
		t.Errorf("category edit dispatched %v", renamed.Dispatch)
	}
}

func TestPlan_BudgetProfileSync(t *testing.T) {
	edited := PlanInvalidations(BudgetProfileToggled{
		UserID:       "USER-001",
		ProfileID:    "BP-001",
		PartitionIDs: []string{"PART-001", "PART-003"},
	})
	if len(edited.Dispatch) != 1 {
		t.Fatalf("Dispatch = %v, want one SyncBudgetProfile", edited.Dispatch)
	}
	sync, ok := edited.Dispatch[0].(selection.SyncBudgetProfile)
	if !ok || sync.ProfileID != "BP-001" || sync.Deleted || !slices.Equal(sync.PartitionIDs, []string{"PART-001", "PART-003"}) {
		t.Errorf("Dispatch[0] = %#v", edited.Dispatch[0])
	}

	emptied := PlanInvalidations(BudgetProfileToggled{UserID: "USER-001", ProfileID: "BP-001", PartitionIDs: []string{}})
	if len(emptied.Dispatch) != 1 {
		t.Errorf("emptied profile dispatched %v, want one SyncBudgetProfile", emptied.Dispatch)
	}

	deleted := PlanInvalidations(BudgetProfileToggled{UserID: "USER-001", ProfileID: "BP-001", Deleted: true})
	if len(deleted.Dispatch) != 1 {
		t.Fatalf("Dispatch = %v, want one SyncBudgetProfile", deleted.Dispatch)
	}
	if sync, ok := deleted.Dispatch[0].(selection.SyncBudgetProfile); !ok || !sync.Deleted || sync.ProfileID != "BP-001" {
		t.Errorf("Dispatch[0] = %#v", deleted.Dispatch[0])
	}

	amounts := PlanInvalidations(BudgetProfileToggled{UserID: "USER-001", ProfileID: "BP-001", CategoryIDs: []string{"CAT-001"}})
	if len(amounts.Dispatch) != 0 {
		t.Errorf("budget amount edit dispatched %v", amounts.Dispatch)
	}
}

func TestPlan_CoversDerivedKeys(t *testing.T) {
	s := selection.InitialState(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	s.ShowOverallBalance = false
	plan := PlanInvalidations(TransactionCreated{Transaction: transfer()})

	covered := []qk.Key{
		qk.PartitionBalanceFor(s, "PART-002").Key(),
		qk.AccountBalanceFor(s, "ACC-001").Key(),
		qk.CategoryBalanceFor(s, "CAT-009").Key(),
		qk.CategoryKindBalanceFor(s, "USER-001", ledger.KindTransfer).Key(),
		qk.TransactionsFor(s, "USER-001").Key(),
		qk.GroupedTransactionsFor(s, "USER-001").Key(),
	}
	for _, k := range covered {
		if !plan.Covers(k) {
			t.Errorf("plan does not cover %s", k)
		}
	}
	if plan.Covers(qk.PartitionBalanceFor(s, "PART-777").Key()) {
		t.Error("plan covers an unrelated partition")
	}
	if plan.Covers(qk.Accounts{UserID: "USER-001"}.Key()) {
		t.Error("transaction plan covers the accounts listing")
	}
}

func TestPlan_NilAndMissingRefs(t *testing.T) {
	if plan := PlanInvalidations(nil); len(plan.Patterns) != 0 {
		t.Errorf("nil result planned %v", plan.Patterns)
	}

	plan := PlanInvalidations(TransactionCreated{})
	assertSameSet(t, plan.Patterns, []qk.Pattern{
		qk.ByName(qk.NameTransactions),
		qk.ByName(qk.NameGroupedTransactions),
	})
}

func TestPlanEffects(t *testing.T) {
	plan := PlanInvalidations(TransactionDeleted{Transaction: loan(), DeletedLoanID: "LOAN-001"})
	effs := plan.Effects()

	var invalidate *effects.InvalidateEffect
	dispatches := 0
	for _, e := range effs {
		switch v := e.(type) {
		case effects.InvalidateEffect:
			invalidate = &v
		case effects.DispatchEffect:
			dispatches++
		}
	}
	if invalidate == nil {
		t.Fatal("no InvalidateEffect")
	}
	if invalidate.Mutation != "transaction_deleted" || len(invalidate.Patterns) != len(plan.Patterns) {
		t.Errorf("InvalidateEffect = %+v", invalidate)
	}
	if dispatches != 1 {
		t.Errorf("dispatch effects = %d, want 1", dispatches)
	}

	invalidate.Patterns[0] = qk.ByName(qk.NameAccounts)
	if plan.Patterns[0] == invalidate.Patterns[0] {
		t.Error("effect aliases the plan's patterns")
	}
}
