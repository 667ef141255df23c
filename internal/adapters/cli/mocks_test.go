package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mockLedgerService implements primary.LedgerService for testing. Methods a
// test does not set panic through the nil embedded interface.
type mockLedgerService struct {
	primary.LedgerService

	createTransactionFn func(ctx context.Context, req primary.CreateTransactionRequest) (*primary.Transaction, error)
	updateTransactionFn func(ctx context.Context, req primary.UpdateTransactionRequest) (*primary.Transaction, error)
	deleteTransactionFn func(ctx context.Context, id string) (*primary.DeleteTransactionResponse, error)
	makePaymentFn       func(ctx context.Context, req primary.MakePaymentRequest) (*primary.Transaction, error)
	getLoanFn           func(ctx context.Context, id string) (*primary.Loan, error)
	toggleProfileFn     func(ctx context.Context, profileID, partitionID string) (bool, error)
	listUsersFn         func(ctx context.Context) ([]*primary.User, error)

	lastCreateTxReq primary.CreateTransactionRequest
	updateCalls     int
}

func (m *mockLedgerService) CreateTransaction(ctx context.Context, req primary.CreateTransactionRequest) (*primary.Transaction, error) {
	m.lastCreateTxReq = req
	return m.createTransactionFn(ctx, req)
}

func (m *mockLedgerService) UpdateTransaction(ctx context.Context, req primary.UpdateTransactionRequest) (*primary.Transaction, error) {
	m.updateCalls++
	return m.updateTransactionFn(ctx, req)
}

func (m *mockLedgerService) DeleteTransaction(ctx context.Context, id string) (*primary.DeleteTransactionResponse, error) {
	return m.deleteTransactionFn(ctx, id)
}

func (m *mockLedgerService) MakePayment(ctx context.Context, req primary.MakePaymentRequest) (*primary.Transaction, error) {
	return m.makePaymentFn(ctx, req)
}

func (m *mockLedgerService) GetLoan(ctx context.Context, id string) (*primary.Loan, error) {
	return m.getLoanFn(ctx, id)
}

func (m *mockLedgerService) ToggleProfilePartition(ctx context.Context, profileID, partitionID string) (bool, error) {
	return m.toggleProfileFn(ctx, profileID, partitionID)
}

func (m *mockLedgerService) ListUsers(ctx context.Context) ([]*primary.User, error) {
	return m.listUsersFn(ctx)
}

// mockBrowseService implements primary.BrowseService for testing.
type mockBrowseService struct {
	primary.BrowseService

	dashboardFn    func(ctx context.Context, state selection.State, userID string) (*primary.Dashboard, error)
	transactionsFn func(ctx context.Context, state selection.State, userID string) (*primary.TransactionPage, error)
	partitionsFn   func(ctx context.Context, userID, accountID string) ([]*primary.Partition, error)
	categoriesFn   func(ctx context.Context, userID string) ([]*primary.Category, error)
	profilesFn     func(ctx context.Context, userID string) ([]*primary.BudgetProfile, error)
}

func (m *mockBrowseService) Dashboard(ctx context.Context, state selection.State, userID string) (*primary.Dashboard, error) {
	return m.dashboardFn(ctx, state, userID)
}

func (m *mockBrowseService) Transactions(ctx context.Context, state selection.State, userID string) (*primary.TransactionPage, error) {
	return m.transactionsFn(ctx, state, userID)
}

func (m *mockBrowseService) Partitions(ctx context.Context, userID, accountID string) ([]*primary.Partition, error) {
	return m.partitionsFn(ctx, userID, accountID)
}

func (m *mockBrowseService) Categories(ctx context.Context, userID string) ([]*primary.Category, error) {
	return m.categoriesFn(ctx, userID)
}

func (m *mockBrowseService) BudgetProfiles(ctx context.Context, userID string) ([]*primary.BudgetProfile, error) {
	return m.profilesFn(ctx, userID)
}

// mockSessionService records dispatched actions over a real reducer.
type mockSessionService struct {
	store      *selection.Store
	dispatched []selection.Action
	resets     int
}

func newMockSession() *mockSessionService {
	return &mockSessionService{store: selection.NewStore()}
}

func (m *mockSessionService) SessionID() string { return "test-session" }

func (m *mockSessionService) State() selection.State { return m.store.State() }

func (m *mockSessionService) Dispatch(ctx context.Context, action selection.Action) (selection.State, error) {
	m.dispatched = append(m.dispatched, action)
	return m.store.Dispatch(action)
}

func (m *mockSessionService) Reset(ctx context.Context) (selection.State, error) {
	m.resets++
	m.store = selection.NewStore()
	return m.store.State(), nil
}

var _ primary.SessionService = (*mockSessionService)(nil)
