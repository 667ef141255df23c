package app

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/cache"
	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/ctxutil"
	"github.com/caburj/kwartrack/internal/db"
	klog "github.com/caburj/kwartrack/internal/log"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// recordingPublisher implements secondary.InvalidationPublisher for testing.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []secondary.InvalidationMessage
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg secondary.InvalidationMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) messages() []secondary.InvalidationMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]secondary.InvalidationMessage(nil), p.msgs...)
}

// memorySessionStore implements secondary.SessionStore for testing.
type memorySessionStore struct {
	state   selection.State
	found   bool
	saves   int
	loadErr error
	saveErr error
}

func (m *memorySessionStore) Load(ctx context.Context) (selection.State, bool, error) {
	if m.loadErr != nil {
		return selection.State{}, false, m.loadErr
	}
	return m.state.Clone(), m.found, nil
}

func (m *memorySessionStore) Save(ctx context.Context, state selection.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state.Clone()
	m.found = true
	m.saves++
	return nil
}

var errBoom = errors.New("boom")

// fixture wires every service over a seeded in-memory database.
//
// Seeded balances (overall):
//
//	PART-001 415.80   PART-002 -120   PART-003 2300   PART-004 0   PART-005 184.50
//	ACC-001 295.80    ACC-002 2300    ACC-003 184.50
//	LOAN-001 lent by PART-003 to PART-005 through TX-006, 200 to pay
type fixture struct {
	ctx       context.Context
	db        *sql.DB
	cache     *cache.QueryCache
	publisher *recordingPublisher
	store     *memorySessionStore
	session   *SessionServiceImpl
	executor  *DefaultEffectExecutor
	ledger    *LedgerServiceImpl
	browse    *BrowseServiceImpl
	logs      *LogServiceImpl

	accounts     *sqlite.AccountRepository
	partitions   *sqlite.PartitionRepository
	categories   *sqlite.CategoryRepository
	transactions *sqlite.TransactionRepository
	loans        *sqlite.LoanRepository
	budgets      *sqlite.BudgetRepository
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	testDB.SetMaxOpenConns(1)
	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err)
	require.NoError(t, db.SeedFixtures(testDB))

	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:       ctxutil.WithUserID(context.Background(), "USER-001"),
		db:        setupTestDB(t),
		cache:     cache.NewQueryCache(256, time.Hour),
		publisher: &recordingPublisher{},
		store:     &memorySessionStore{},
	}
	f.accounts = sqlite.NewAccountRepository(f.db)
	f.partitions = sqlite.NewPartitionRepository(f.db)
	f.categories = sqlite.NewCategoryRepository(f.db)
	f.transactions = sqlite.NewTransactionRepository(f.db)
	f.loans = sqlite.NewLoanRepository(f.db)
	f.budgets = sqlite.NewBudgetRepository(f.db)
	logRepo := sqlite.NewActivityLogRepository(f.db)

	session, err := NewSessionService(f.ctx, f.store, klog.Discard())
	require.NoError(t, err)
	f.session = session
	f.executor = NewEffectExecutor(f.cache, f.publisher, f.session, klog.Discard())
	f.ledger = NewLedgerService(
		sqlite.NewUserRepository(f.db),
		f.accounts, f.partitions, f.categories, f.transactions, f.loans, f.budgets,
		sqlite.NewLogWriterAdapter(logRepo),
		f.executor,
	)
	f.browse = NewBrowseService(f.accounts, f.partitions, f.categories, f.transactions, f.loans, f.budgets, f.cache, klog.Discard())
	f.logs = NewLogService(logRepo)
	return f
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(t, want).Equal(got), "want %s, got %s", want, got.String())
}

func ptr[T any](v T) *T { return &v }
