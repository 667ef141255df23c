package querykey

import (
	"testing"
	"time"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/core/selection"
)

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func windowed() selection.State {
	s := selection.InitialState(testNow)
	s.ShowOverallBalance = false
	return s
}

func TestPartitionBalance_OverallIgnoresDates(t *testing.T) {
	a := selection.InitialState(testNow)
	b := a.Clone()
	other := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	b.DateRangeStart = &other

	ka := PartitionBalanceFor(a, "PART-001").Key()
	kb := PartitionBalanceFor(b, "PART-001").Key()
	if ka != kb {
		t.Errorf("overall keys differ: %s vs %s", ka, kb)
	}
	if ka.Params != "window=overall" {
		t.Errorf("Params = %q, want window=overall", ka.Params)
	}
}

func TestPartitionBalance_WindowedDependsOnDates(t *testing.T) {
	a := windowed()
	b := a.Clone()
	end := b.DateRangeEnd.AddDate(0, 0, -1)
	b.DateRangeEnd = &end

	if PartitionBalanceFor(a, "PART-001").Key() == PartitionBalanceFor(b, "PART-001").Key() {
		t.Error("keys for different windows are equal")
	}
}

func TestKeys_ExcludeIrrelevantState(t *testing.T) {
	base := windowed()
	changed := base.Clone()
	changed.ItemsPerPage = 50
	changed.CurrentPage = 4
	changed.LoanIDs = []string{"LOAN-001"}
	changed.SelectedSourceID = "PART-009"
	changed.SelectedCategoryID = "CAT-009"

	derive := map[string]func(selection.State) Key{
		"partitionBalance": func(s selection.State) Key { return PartitionBalanceFor(s, "PART-001").Key() },
		"accountBalance":   func(s selection.State) Key { return AccountBalanceFor(s, "ACC-001").Key() },
		"categoryBalance":  func(s selection.State) Key { return CategoryBalanceFor(s, "CAT-001").Key() },
		"categoryKindBalance": func(s selection.State) Key {
			return CategoryKindBalanceFor(s, "USER-001", ledger.KindExpense).Key()
		},
	}
	for name, fn := range derive {
		t.Run(name, func(t *testing.T) {
			if fn(base) != fn(changed) {
				t.Errorf("key changed with irrelevant state: %s vs %s", fn(base), fn(changed))
			}
		})
	}

	grouped := GroupedTransactionsFor(base, "USER-001").Key()
	pagedOnly := base.Clone()
	pagedOnly.ItemsPerPage = 50
	pagedOnly.CurrentPage = 4
	if grouped != GroupedTransactionsFor(pagedOnly, "USER-001").Key() {
		t.Error("groupedTransactions key depends on pagination")
	}
}

func TestTransactions_DependsOnEveryFilterField(t *testing.T) {
	base := windowed()
	baseKey := TransactionsFor(base, "USER-001").Key()

	mutations := map[string]func(*selection.State){
		"page":       func(s *selection.State) { s.CurrentPage = 2 },
		"perPage":    func(s *selection.State) { s.ItemsPerPage = 10 },
		"partitions": func(s *selection.State) { s.PartitionIDs = []string{"PART-001"} },
		"categories": func(s *selection.State) { s.CategoryIDs = []string{"CAT-001"} },
		"loans":      func(s *selection.State) { s.LoanIDs = []string{"LOAN-001"} },
		"start":      func(s *selection.State) { s.DateRangeStart = nil },
		"end":        func(s *selection.State) { s.DateRangeEnd = nil },
		"overall":    func(s *selection.State) { s.ShowOverallBalance = true },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := base.Clone()
			mutate(&s)
			if TransactionsFor(s, "USER-001").Key() == baseKey {
				t.Errorf("changing %s did not change the key", name)
			}
		})
	}
}

func TestKeys_IDOrderIsCanonical(t *testing.T) {
	a := windowed()
	a.PartitionIDs = []string{"PART-002", "PART-001"}
	b := windowed()
	b.PartitionIDs = []string{"PART-001", "PART-002"}

	if CategoryBalanceFor(a, "CAT-001").Key() != CategoryBalanceFor(b, "CAT-001").Key() {
		t.Error("categoryBalance key depends on selection order")
	}
	if TransactionsFor(a, "USER-001").Key() != TransactionsFor(b, "USER-001").Key() {
		t.Error("transactions key depends on selection order")
	}
	if a.PartitionIDs[0] != "PART-002" {
		t.Error("key derivation reordered the state")
	}
}

func TestPatternMatches(t *testing.T) {
	overall := PartitionBalanceFor(selection.InitialState(testNow), "PART-001").Key()
	march := PartitionBalanceFor(windowed(), "PART-001").Key()
	otherPartition := PartitionBalanceFor(windowed(), "PART-002").Key()
	account := AccountBalanceFor(windowed(), "PART-001").Key()

	tests := []struct {
		name    string
		pattern Pattern
		key     Key
		want    bool
	}{
		{"exact same key", Exact(march), march, true},
		{"exact other window", Exact(march), overall, false},
		{"scope any window", ByScope(NamePartitionBalance, "PART-001"), overall, true},
		{"scope other entity", ByScope(NamePartitionBalance, "PART-001"), otherPartition, false},
		{"scope other name same id", ByScope(NamePartitionBalance, "PART-001"), account, false},
		{"name any entity", ByName(NamePartitionBalance), otherPartition, true},
		{"name other name", ByName(NameTransactions), march, false},
		{"unknown policy", Pattern{Name: NamePartitionBalance, Policy: "fuzzy"}, march, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pattern.Matches(tt.key); got != tt.want {
				t.Errorf("%s.Matches(%s) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestPatternValidate(t *testing.T) {
	if err := ByName(NameTransactions).Validate(); err != nil {
		t.Errorf("valid pattern: %v", err)
	}
	if err := (Pattern{Name: "balances", Policy: MatchName}).Validate(); err == nil {
		t.Error("unknown name accepted")
	}
	if err := (Pattern{Name: NameUnpaidLoans, Policy: MatchScope}).Validate(); err == nil {
		t.Error("scope pattern without scope accepted")
	}
}

func TestBudgetAmountsFor(t *testing.T) {
	s := windowed()
	if got := BudgetAmountsFor(s, []string{"CAT-001"}); got != nil {
		t.Errorf("no profile: got %v", got)
	}
	s.ActiveBudgetProfileID = "BP-001"
	got := BudgetAmountsFor(s, []string{"CAT-001", "CAT-002"})
	if len(got) != 2 || got[1].Key().Scope != "CAT-002@BP-001" {
		t.Errorf("got %v", got)
	}
}

func TestTransactionsOffset(t *testing.T) {
	q := Transactions{Page: 3, PerPage: 25}
	if q.Offset() != 50 {
		t.Errorf("Offset = %d, want 50", q.Offset())
	}
}
