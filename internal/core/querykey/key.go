// Package querykey derives the cache keys of every read query from the
// selection state, and the patterns the invalidation planner matches them with.
// This is part of the Functional Core - no I/O, only pure functions.
package querykey

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Name identifies a read query.
type Name string

const (
	NameAccounts              Name = "accounts"
	NamePartitions            Name = "partitions"
	NameCategories            Name = "categories"
	NamePartitionBalance      Name = "partitionBalance"
	NamePartitionCanBeDeleted Name = "partitionCanBeDeleted"
	NameAccountBalance        Name = "accountBalance"
	NameAccountCanBeDeleted   Name = "accountCanBeDeleted"
	NameCategoryBalance       Name = "categoryBalance"
	NameCategoryCanBeDeleted  Name = "categoryCanBeDeleted"
	NameCategoryKindBalance   Name = "categoryKindBalance"
	NameBudgetProfiles        Name = "budgetProfiles"
	NameBudgetAmount          Name = "budgetAmount"
	NamePartitionsWithLoans   Name = "partitionsWithLoans"
	NameUnpaidLoans           Name = "unpaidLoans"
	NameTransactions          Name = "transactions"
	NameGroupedTransactions   Name = "groupedTransactions"
)

var allNames = []Name{
	NameAccounts, NamePartitions, NameCategories,
	NamePartitionBalance, NamePartitionCanBeDeleted,
	NameAccountBalance, NameAccountCanBeDeleted,
	NameCategoryBalance, NameCategoryCanBeDeleted, NameCategoryKindBalance,
	NameBudgetProfiles, NameBudgetAmount,
	NamePartitionsWithLoans, NameUnpaidLoans,
	NameTransactions, NameGroupedTransactions,
}

// Names returns every query name.
func Names() []Name {
	out := make([]Name, len(allNames))
	copy(out, allNames)
	return out
}

// IsValid returns true if the name is a known query.
func (n Name) IsValid() bool {
	for _, known := range allNames {
		if n == known {
			return true
		}
	}
	return false
}

// Key identifies one cached query result. Keys are comparable and two keys are
// equal iff their name, scope and canonical parameters are equal.
type Key struct {
	Name   Name
	Scope  string // entity the result belongs to; empty for unscoped queries
	Params string // canonical encoding of the remaining parameters
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Name))
	if k.Scope != "" {
		b.WriteString("(")
		b.WriteString(k.Scope)
		b.WriteString(")")
	}
	if k.Params != "" {
		b.WriteString("{")
		b.WriteString(k.Params)
		b.WriteString("}")
	}
	return b.String()
}

// params builds the canonical parameter encoding: fields in the order they are
// added, ids sorted.
type params struct {
	parts []string
}

func (p *params) str(field, v string) *params {
	p.parts = append(p.parts, field+"="+v)
	return p
}

func (p *params) num(field string, v int) *params {
	return p.str(field, fmt.Sprintf("%d", v))
}

func (p *params) flag(field string, v bool) *params {
	return p.str(field, fmt.Sprintf("%t", v))
}

func (p *params) ids(field string, ids []string) *params {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return p.str(field, "["+strings.Join(sorted, ",")+"]")
}

func (p *params) instant(field string, t *time.Time) *params {
	if t == nil {
		return p.str(field, "-")
	}
	return p.str(field, t.UTC().Format(time.RFC3339Nano))
}

func (p *params) window(w Window) *params {
	if w.Overall {
		return p.str("window", "overall")
	}
	p.instant("start", w.Start)
	return p.instant("end", w.End)
}

func (p *params) String() string {
	return strings.Join(p.parts, ";")
}
