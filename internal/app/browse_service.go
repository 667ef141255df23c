package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/caburj/kwartrack/internal/core/ledger"
	qk "github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/core/selection"
	klog "github.com/caburj/kwartrack/internal/log"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// dashboardFanout bounds the concurrent account fetches of a dashboard.
const dashboardFanout = 4

// BrowseServiceImpl implements the BrowseService interface as a read-through
// cache over the repositories. Cached results are shared between callers and
// must not be modified.
type BrowseServiceImpl struct {
	accountRepo     secondary.AccountRepository
	partitionRepo   secondary.PartitionRepository
	categoryRepo    secondary.CategoryRepository
	transactionRepo secondary.TransactionRepository
	loanRepo        secondary.LoanRepository
	budgetRepo      secondary.BudgetRepository
	cache           secondary.QueryCache
	flight          singleflight.Group
	logger          *klog.Logger
}

// NewBrowseService creates a new BrowseService with injected dependencies.
// cache is optional - if nil, every read goes to the repositories.
func NewBrowseService(
	accountRepo secondary.AccountRepository,
	partitionRepo secondary.PartitionRepository,
	categoryRepo secondary.CategoryRepository,
	transactionRepo secondary.TransactionRepository,
	loanRepo secondary.LoanRepository,
	budgetRepo secondary.BudgetRepository,
	cache secondary.QueryCache,
	logger *klog.Logger,
) *BrowseServiceImpl {
	if logger == nil {
		logger = klog.Discard()
	}
	return &BrowseServiceImpl{
		accountRepo:     accountRepo,
		partitionRepo:   partitionRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		loanRepo:        loanRepo,
		budgetRepo:      budgetRepo,
		cache:           cache,
		logger:          logger.WithComponent(klog.ComponentBrowse),
	}
}

// cached returns the cached result of q, or fetches it once for all
// concurrent callers. A result fetched while an invalidation ran is returned
// but not cached.
func cached[T any](ctx context.Context, s *BrowseServiceImpl, q qk.Query, fetch func(context.Context) (T, error)) (T, error) {
	key := q.Key()
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			if typed, ok := hit.(T); ok {
				return typed, nil
			}
		}
	}

	v, err, _ := s.flight.Do(key.String(), func() (any, error) {
		var generation uint64
		if s.cache != nil {
			generation = s.cache.Generation()
		}
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && !s.cache.SetIfCurrent(key, result, generation) {
			s.logger.DebugContext(ctx, "discarded stale result", klog.FieldKey, key.String())
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func balanceWindow(w qk.Window) secondary.BalanceWindow {
	return secondary.BalanceWindow{Overall: w.Overall, Start: w.Start, End: w.End}
}

func transactionFilter(f qk.Filter) secondary.TransactionFilter {
	return secondary.TransactionFilter{
		ViewerID:     f.UserID,
		PartitionIDs: f.PartitionIDs,
		CategoryIDs:  f.CategoryIDs,
		LoanIDs:      f.LoanIDs,
		Window:       secondary.BalanceWindow{Overall: f.Overall, Start: f.Start, End: f.End},
	}
}

var groupOrder = map[string]int{
	string(ledger.GroupOwned):  0,
	string(ledger.GroupCommon): 1,
	string(ledger.GroupOthers): 2,
}

// Accounts lists every account, owned first, then common, then the others.
func (s *BrowseServiceImpl) Accounts(ctx context.Context, userID string) ([]*primary.Account, error) {
	return cached(ctx, s, qk.Accounts{UserID: userID}, func(ctx context.Context) ([]*primary.Account, error) {
		records, err := s.accountRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		accounts := make([]*primary.Account, len(records))
		for i, r := range records {
			accounts[i] = recordToAccount(r, userID)
		}
		sort.SliceStable(accounts, func(i, j int) bool {
			return groupOrder[accounts[i].Group] < groupOrder[accounts[j].Group]
		})
		return accounts, nil
	})
}

// Partitions lists the partitions of an account visible to the user.
func (s *BrowseServiceImpl) Partitions(ctx context.Context, userID, accountID string) ([]*primary.Partition, error) {
	q := qk.Partitions{UserID: userID, AccountID: accountID}
	return cached(ctx, s, q, func(ctx context.Context) ([]*primary.Partition, error) {
		records, err := s.partitionRepo.List(ctx, secondary.PartitionFilters{AccountID: accountID, ViewerID: userID})
		if err != nil {
			return nil, fmt.Errorf("failed to list partitions: %w", err)
		}
		return partitionsOf(records), nil
	})
}

func partitionsOf(records []*secondary.PartitionRecord) []*primary.Partition {
	partitions := make([]*primary.Partition, len(records))
	for i, r := range records {
		partitions[i] = recordToPartition(r)
	}
	return partitions
}

// Categories lists the active categories of a user.
func (s *BrowseServiceImpl) Categories(ctx context.Context, userID string) ([]*primary.Category, error) {
	return cached(ctx, s, qk.Categories{UserID: userID}, func(ctx context.Context) ([]*primary.Category, error) {
		records, err := s.categoryRepo.ListByOwner(ctx, userID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		categories := make([]*primary.Category, len(records))
		for i, r := range records {
			categories[i] = recordToCategory(r)
		}
		return categories, nil
	})
}

// PartitionBalance is the balance of a partition over the state's window.
func (s *BrowseServiceImpl) PartitionBalance(ctx context.Context, state selection.State, partitionID string) (decimal.Decimal, error) {
	q := qk.PartitionBalanceFor(state, partitionID)
	return cached(ctx, s, q, func(ctx context.Context) (decimal.Decimal, error) {
		return s.partitionRepo.Balance(ctx, partitionID, balanceWindow(q.Window))
	})
}

// AccountBalance is the balance of an account over the state's window.
func (s *BrowseServiceImpl) AccountBalance(ctx context.Context, state selection.State, accountID string) (decimal.Decimal, error) {
	q := qk.AccountBalanceFor(state, accountID)
	return cached(ctx, s, q, func(ctx context.Context) (decimal.Decimal, error) {
		return s.accountRepo.Balance(ctx, accountID, balanceWindow(q.Window))
	})
}

// CategoryBalance is the total of a category over the state's window and
// partition selection.
func (s *BrowseServiceImpl) CategoryBalance(ctx context.Context, state selection.State, categoryID string) (decimal.Decimal, error) {
	q := qk.CategoryBalanceFor(state, categoryID)
	return cached(ctx, s, q, func(ctx context.Context) (decimal.Decimal, error) {
		return s.categoryRepo.Balance(ctx, categoryID, secondary.BalanceFilter{
			PartitionIDs: q.PartitionIDs,
			Window:       balanceWindow(q.Window),
		})
	})
}

// CategoryKindBalance is the total of every category of one kind owned by the user.
func (s *BrowseServiceImpl) CategoryKindBalance(ctx context.Context, state selection.State, userID, kind string) (decimal.Decimal, error) {
	parsed, err := ledger.ParseKind(kind)
	if err != nil {
		return decimal.Zero, err
	}
	q := qk.CategoryKindBalanceFor(state, userID, parsed)
	return cached(ctx, s, q, func(ctx context.Context) (decimal.Decimal, error) {
		return s.categoryRepo.KindBalance(ctx, userID, string(parsed), secondary.BalanceFilter{
			PartitionIDs: q.PartitionIDs,
			Window:       balanceWindow(q.Window),
		})
	})
}

// PartitionCanBeDeleted reports whether a partition has no transactions.
func (s *BrowseServiceImpl) PartitionCanBeDeleted(ctx context.Context, partitionID string) (bool, error) {
	return cached(ctx, s, qk.PartitionCanBeDeleted{PartitionID: partitionID}, func(ctx context.Context) (bool, error) {
		n, err := s.partitionRepo.CountTransactions(ctx, partitionID)
		return n == 0, err
	})
}

// AccountCanBeDeleted reports whether an account has no transactions.
func (s *BrowseServiceImpl) AccountCanBeDeleted(ctx context.Context, accountID string) (bool, error) {
	return cached(ctx, s, qk.AccountCanBeDeleted{AccountID: accountID}, func(ctx context.Context) (bool, error) {
		n, err := s.accountRepo.CountTransactions(ctx, accountID)
		return n == 0, err
	})
}

// CategoryCanBeDeleted reports whether no transaction uses a category.
func (s *BrowseServiceImpl) CategoryCanBeDeleted(ctx context.Context, categoryID string) (bool, error) {
	return cached(ctx, s, qk.CategoryCanBeDeleted{CategoryID: categoryID}, func(ctx context.Context) (bool, error) {
		n, err := s.categoryRepo.CountTransactions(ctx, categoryID)
		return n == 0, err
	})
}

// BudgetProfiles lists the budget profiles of a user.
func (s *BrowseServiceImpl) BudgetProfiles(ctx context.Context, userID string) ([]*primary.BudgetProfile, error) {
	return cached(ctx, s, qk.BudgetProfiles{UserID: userID}, func(ctx context.Context) ([]*primary.BudgetProfile, error) {
		records, err := s.budgetRepo.ListProfiles(ctx, userID)
		if err != nil {
			return nil, err
		}
		profiles := make([]*primary.BudgetProfile, len(records))
		for i, r := range records {
			profiles[i] = recordToProfile(r)
		}
		return profiles, nil
	})
}

// BudgetAmounts returns the budgets of the active profile for the given categories.
func (s *BrowseServiceImpl) BudgetAmounts(ctx context.Context, state selection.State, categoryIDs []string) (map[string]decimal.Decimal, error) {
	amounts := make(map[string]decimal.Decimal)
	for _, q := range qk.BudgetAmountsFor(state, categoryIDs) {
		amount, err := cached(ctx, s, q, func(ctx context.Context) (decimal.Decimal, error) {
			return s.budgetRepo.GetAmount(ctx, q.ProfileID, q.CategoryID)
		})
		if err != nil {
			return nil, err
		}
		amounts[q.CategoryID] = amount
	}
	return amounts, nil
}

// PartitionsWithLoans lists the partitions that lent money still unpaid.
func (s *BrowseServiceImpl) PartitionsWithLoans(ctx context.Context, userID string) ([]*primary.Partition, error) {
	return cached(ctx, s, qk.PartitionsWithLoans{UserID: userID}, func(ctx context.Context) ([]*primary.Partition, error) {
		records, err := s.loanRepo.ListLendersWithUnpaid(ctx, userID)
		if err != nil {
			return nil, err
		}
		return partitionsOf(records), nil
	})
}

// UnpaidLoans lists the unpaid loans of a lender partition.
func (s *BrowseServiceImpl) UnpaidLoans(ctx context.Context, lenderPartitionID string) ([]*primary.Loan, error) {
	q := qk.UnpaidLoans{LenderPartitionID: lenderPartitionID}
	return cached(ctx, s, q, func(ctx context.Context) ([]*primary.Loan, error) {
		records, err := s.loanRepo.ListUnpaidByLender(ctx, lenderPartitionID)
		if err != nil {
			return nil, err
		}
		loans := make([]*primary.Loan, len(records))
		for i, r := range records {
			loans[i] = recordToLoan(r)
		}
		return loans, nil
	})
}

// Transactions returns the page of transactions the state selects.
func (s *BrowseServiceImpl) Transactions(ctx context.Context, state selection.State, userID string) (*primary.TransactionPage, error) {
	q := qk.TransactionsFor(state, userID)
	return cached(ctx, s, q, func(ctx context.Context) (*primary.TransactionPage, error) {
		filter := transactionFilter(q.Filter)
		filter.Limit = q.PerPage
		filter.Offset = q.Offset()
		records, total, err := s.transactionRepo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to find transactions: %w", err)
		}
		page := &primary.TransactionPage{
			Transactions: make([]*primary.Transaction, len(records)),
			Total:        total,
			Page:         q.Page,
			PerPage:      q.PerPage,
		}
		for i, r := range records {
			page.Transactions[i] = recordToTransaction(r)
		}
		return page, nil
	})
}

// GroupedTransactions totals the selected transactions per category.
func (s *BrowseServiceImpl) GroupedTransactions(ctx context.Context, state selection.State, userID string) ([]*primary.CategoryTotal, error) {
	q := qk.GroupedTransactionsFor(state, userID)
	return cached(ctx, s, q, func(ctx context.Context) ([]*primary.CategoryTotal, error) {
		records, err := s.transactionRepo.Grouped(ctx, transactionFilter(q.Filter))
		if err != nil {
			return nil, fmt.Errorf("failed to group transactions: %w", err)
		}
		totals := make([]*primary.CategoryTotal, len(records))
		for i, r := range records {
			totals[i] = recordToCategoryTotal(r)
		}
		return totals, nil
	})
}

// Dashboard gathers every account visible to the user with its partitions and
// balances. Accounts are fetched concurrently; the first error cancels the rest.
func (s *BrowseServiceImpl) Dashboard(ctx context.Context, state selection.State, userID string) (*primary.Dashboard, error) {
	accounts, err := s.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*primary.AccountSummary, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanout)
	for i, account := range accounts {
		g.Go(func() error {
			summary, err := s.accountSummary(gctx, state, userID, account)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dashboard := &primary.Dashboard{Accounts: summaries, Total: decimal.Zero}
	for _, summary := range summaries {
		dashboard.Total = dashboard.Total.Add(summary.Balance)
	}
	return dashboard, nil
}

func (s *BrowseServiceImpl) accountSummary(ctx context.Context, state selection.State, userID string, account *primary.Account) (*primary.AccountSummary, error) {
	balance, err := s.AccountBalance(ctx, state, account.ID)
	if err != nil {
		return nil, err
	}
	partitions, err := s.Partitions(ctx, userID, account.ID)
	if err != nil {
		return nil, err
	}

	summary := &primary.AccountSummary{Account: account, Balance: balance}
	for _, p := range partitions {
		pb, err := s.PartitionBalance(ctx, state, p.ID)
		if err != nil {
			return nil, err
		}
		summary.Partitions = append(summary.Partitions, &primary.PartitionSummary{
			Partition: p,
			Balance:   pb,
			Selected:  state.IsSelected(selection.FieldPartitions, p.ID),
		})
	}
	return summary, nil
}

// Ensure BrowseServiceImpl implements the interface.
var _ primary.BrowseService = (*BrowseServiceImpl)(nil)
