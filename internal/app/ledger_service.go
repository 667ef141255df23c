package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caburj/kwartrack/internal/core/invalidation"
	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ctxutil"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	userRepo        secondary.UserRepository
	accountRepo     secondary.AccountRepository
	partitionRepo   secondary.PartitionRepository
	categoryRepo    secondary.CategoryRepository
	transactionRepo secondary.TransactionRepository
	loanRepo        secondary.LoanRepository
	budgetRepo      secondary.BudgetRepository
	logWriter       secondary.LogWriter
	executor        EffectExecutor
	now             func() time.Time
}

// NewLedgerService creates a new LedgerService with injected dependencies.
// logWriter is optional - if nil, no activity logging is performed.
func NewLedgerService(
	userRepo secondary.UserRepository,
	accountRepo secondary.AccountRepository,
	partitionRepo secondary.PartitionRepository,
	categoryRepo secondary.CategoryRepository,
	transactionRepo secondary.TransactionRepository,
	loanRepo secondary.LoanRepository,
	budgetRepo secondary.BudgetRepository,
	logWriter secondary.LogWriter,
	executor EffectExecutor,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		partitionRepo:   partitionRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		loanRepo:        loanRepo,
		budgetRepo:      budgetRepo,
		logWriter:       logWriter,
		executor:        executor,
		now:             time.Now,
	}
}

// SetClock replaces the time source used for transactions without a date.
func (s *LedgerServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// ============================================================================
// Users
// ============================================================================

// CreateUser registers a new user.
func (s *LedgerServiceImpl) CreateUser(ctx context.Context, req primary.CreateUserRequest) (*primary.User, error) {
	if err := ledger.RequireName("user", req.Name).Error(); err != nil {
		return nil, err
	}

	nextID, err := s.userRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	record := &secondary.UserRecord{ID: nextID, Name: req.Name, Email: req.Email}
	if err := s.userRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	created, err := s.userRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created user: %w", err)
	}
	s.logCreate(ctx, "user", nextID)
	return recordToUser(created), nil
}

// GetUserByName retrieves a user by its unique name.
func (s *LedgerServiceImpl) GetUserByName(ctx context.Context, name string) (*primary.User, error) {
	record, err := s.userRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return recordToUser(record), nil
}

// ListUsers retrieves all users.
func (s *LedgerServiceImpl) ListUsers(ctx context.Context) ([]*primary.User, error) {
	records, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*primary.User, len(records))
	for i, r := range records {
		users[i] = recordToUser(r)
	}
	return users, nil
}

// ============================================================================
// Accounts
// ============================================================================

// CreateAccount creates an account with its owners and an optional first partition.
// Without owners the acting user owns the account.
func (s *LedgerServiceImpl) CreateAccount(ctx context.Context, req primary.CreateAccountRequest) (*primary.Account, error) {
	if err := ledger.RequireName("account", req.Name).Error(); err != nil {
		return nil, err
	}
	userID := ctxutil.UserFromContext(ctx)
	owners := req.OwnerIDs
	if len(owners) == 0 && userID != "" {
		owners = []string{userID}
	}
	if len(owners) == 0 {
		return nil, fmt.Errorf("an account needs at least one owner")
	}

	nextID, err := s.accountRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account ID: %w", err)
	}
	if err := s.accountRepo.Create(ctx, &secondary.AccountRecord{ID: nextID, Name: req.Name, OwnerIDs: owners}); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.logCreate(ctx, "account", nextID)
	if err := s.apply(ctx, invalidation.AccountChanged{UserID: userID, AccountID: nextID}); err != nil {
		return nil, err
	}

	if req.PartitionName != "" {
		if _, err := s.CreatePartition(ctx, primary.CreatePartitionRequest{AccountID: nextID, Name: req.PartitionName}); err != nil {
			return nil, err
		}
	}

	created, err := s.accountRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created account: %w", err)
	}
	return recordToAccount(created, userID), nil
}

// RenameAccount changes the name of an account.
func (s *LedgerServiceImpl) RenameAccount(ctx context.Context, accountID, name string) error {
	if err := ledger.RequireName("account", name).Error(); err != nil {
		return err
	}
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.accountRepo.Rename(ctx, accountID, name); err != nil {
		return fmt.Errorf("failed to rename account: %w", err)
	}
	s.logUpdate(ctx, "account", accountID, "name", account.Name, name)
	return s.apply(ctx, invalidation.AccountChanged{UserID: ctxutil.UserFromContext(ctx), AccountID: accountID})
}

// SetAccountOwners replaces the owners of an account.
func (s *LedgerServiceImpl) SetAccountOwners(ctx context.Context, accountID string, ownerIDs []string) error {
	if len(ownerIDs) == 0 {
		return fmt.Errorf("an account needs at least one owner")
	}
	if err := s.accountRepo.SetOwners(ctx, accountID, ownerIDs); err != nil {
		return fmt.Errorf("failed to set account owners: %w", err)
	}
	s.logUpdate(ctx, "account", accountID, "owners", "", fmt.Sprint(ownerIDs))
	return s.apply(ctx, invalidation.AccountChanged{UserID: ctxutil.UserFromContext(ctx), AccountID: accountID})
}

// DeleteAccount deletes an account whose partitions have no transactions.
func (s *LedgerServiceImpl) DeleteAccount(ctx context.Context, accountID string) error {
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return err
	}
	count, err := s.accountRepo.CountTransactions(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to count account transactions: %w", err)
	}
	partitions, err := s.partitionRepo.List(ctx, secondary.PartitionFilters{AccountID: accountID, IncludeArchived: true})
	if err != nil {
		return fmt.Errorf("failed to list account partitions: %w", err)
	}
	guard := ledger.CanDeleteAccount(ledger.DeleteEntityContext{
		ID:               accountID,
		TransactionCount: count,
		PartitionCount:   len(partitions),
	})
	if err := guard.Error(); err != nil {
		return err
	}

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logDelete(ctx, "account", accountID)

	userID := ctxutil.UserFromContext(ctx)
	if err := s.apply(ctx, invalidation.AccountChanged{UserID: userID, AccountID: accountID}); err != nil {
		return err
	}
	return s.apply(ctx, invalidation.PartitionChanged{UserID: userID, AccountID: accountID})
}

// ============================================================================
// Partitions
// ============================================================================

// CreatePartition adds a partition to an account.
func (s *LedgerServiceImpl) CreatePartition(ctx context.Context, req primary.CreatePartitionRequest) (*primary.Partition, error) {
	if err := ledger.RequireName("partition", req.Name).Error(); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	nextID, err := s.partitionRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate partition ID: %w", err)
	}
	record := &secondary.PartitionRecord{
		ID:        nextID,
		AccountID: req.AccountID,
		Name:      req.Name,
		IsPrivate: req.IsPrivate,
	}
	if err := s.partitionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create partition: %w", err)
	}
	s.logCreate(ctx, "partition", nextID)

	created, err := s.partitionRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created partition: %w", err)
	}
	if err := s.apply(ctx, s.partitionChanged(ctx, created)); err != nil {
		return nil, err
	}
	return recordToPartition(created), nil
}

// UpdatePartition renames, hides or archives a partition.
func (s *LedgerServiceImpl) UpdatePartition(ctx context.Context, req primary.UpdatePartitionRequest) (*primary.Partition, error) {
	record, err := s.partitionRepo.GetByID(ctx, req.PartitionID)
	if err != nil {
		return nil, err
	}
	updated := *record
	if req.Name != nil {
		if err := ledger.RequireName("partition", *req.Name).Error(); err != nil {
			return nil, err
		}
		updated.Name = *req.Name
	}
	if req.IsPrivate != nil {
		updated.IsPrivate = *req.IsPrivate
	}
	if req.Archived != nil {
		updated.Archived = *req.Archived
	}

	if err := s.partitionRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update partition: %w", err)
	}
	s.logFlags(ctx, "partition", record.ID, record.Name, updated.Name,
		record.IsPrivate, updated.IsPrivate, record.Archived, updated.Archived)

	if err := s.apply(ctx, s.partitionChanged(ctx, &updated)); err != nil {
		return nil, err
	}
	return recordToPartition(&updated), nil
}

// DeletePartition deletes a partition that has no transactions.
func (s *LedgerServiceImpl) DeletePartition(ctx context.Context, partitionID string) error {
	record, err := s.partitionRepo.GetByID(ctx, partitionID)
	if err != nil {
		return err
	}
	count, err := s.partitionRepo.CountTransactions(ctx, partitionID)
	if err != nil {
		return fmt.Errorf("failed to count partition transactions: %w", err)
	}
	if err := ledger.CanDeletePartition(ledger.DeleteEntityContext{ID: partitionID, TransactionCount: count}).Error(); err != nil {
		return err
	}

	if err := s.partitionRepo.Delete(ctx, partitionID); err != nil {
		return fmt.Errorf("failed to delete partition: %w", err)
	}
	s.logDelete(ctx, "partition", partitionID)
	changed := s.partitionChanged(ctx, record)
	changed.Deleted = true
	return s.apply(ctx, changed)
}

func (s *LedgerServiceImpl) partitionChanged(ctx context.Context, p *secondary.PartitionRecord) invalidation.PartitionChanged {
	return invalidation.PartitionChanged{
		UserID:      ctxutil.UserFromContext(ctx),
		PartitionID: p.ID,
		AccountID:   p.AccountID,
	}
}

// ============================================================================
// Categories
// ============================================================================

// CreateCategory creates a category. Without an owner the acting user owns it.
func (s *LedgerServiceImpl) CreateCategory(ctx context.Context, req primary.CreateCategoryRequest) (*primary.Category, error) {
	if err := ledger.RequireName("category", req.Name).Error(); err != nil {
		return nil, err
	}
	kind, err := ledger.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	owner := req.OwnerID
	if owner == "" {
		owner = ctxutil.UserFromContext(ctx)
	}
	if owner == "" {
		return nil, fmt.Errorf("a category needs an owner")
	}

	nextID, err := s.categoryRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate category ID: %w", err)
	}
	record := &secondary.CategoryRecord{
		ID:        nextID,
		OwnerID:   owner,
		Name:      req.Name,
		Kind:      string(kind),
		IsPrivate: req.IsPrivate,
	}
	if err := s.categoryRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logCreate(ctx, "category", nextID)

	created, err := s.categoryRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created category: %w", err)
	}
	if err := s.apply(ctx, invalidation.CategoryChanged{UserID: owner, CategoryID: nextID}); err != nil {
		return nil, err
	}
	return recordToCategory(created), nil
}

// UpdateCategory renames, hides or archives a category.
func (s *LedgerServiceImpl) UpdateCategory(ctx context.Context, req primary.UpdateCategoryRequest) (*primary.Category, error) {
	record, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	updated := *record
	if req.Name != nil {
		if err := ledger.RequireName("category", *req.Name).Error(); err != nil {
			return nil, err
		}
		updated.Name = *req.Name
	}
	if req.IsPrivate != nil {
		updated.IsPrivate = *req.IsPrivate
	}
	if req.Archived != nil {
		updated.Archived = *req.Archived
	}

	if err := s.categoryRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.logFlags(ctx, "category", record.ID, record.Name, updated.Name,
		record.IsPrivate, updated.IsPrivate, record.Archived, updated.Archived)

	if err := s.apply(ctx, invalidation.CategoryChanged{UserID: record.OwnerID, CategoryID: record.ID}); err != nil {
		return nil, err
	}
	return recordToCategory(&updated), nil
}

// DeleteCategory deletes a category no transaction uses.
func (s *LedgerServiceImpl) DeleteCategory(ctx context.Context, categoryID string) error {
	record, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	count, err := s.categoryRepo.CountTransactions(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to count category transactions: %w", err)
	}
	if err := ledger.CanDeleteCategory(ledger.DeleteEntityContext{ID: categoryID, TransactionCount: count}).Error(); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logDelete(ctx, "category", categoryID)
	return s.apply(ctx, invalidation.CategoryChanged{UserID: record.OwnerID, CategoryID: categoryID, Deleted: true})
}

// ============================================================================
// Transactions
// ============================================================================

// CreateTransaction records an income, an expense or a transfer.
func (s *LedgerServiceImpl) CreateTransaction(ctx context.Context, req primary.CreateTransactionRequest) (*primary.Transaction, error) {
	source, err := s.partitionRepo.GetByID(ctx, req.SourcePartitionID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	kind, err := ledger.ParseKind(category.Kind)
	if err != nil {
		return nil, err
	}
	var destination *secondary.PartitionRecord
	if req.DestinationPartitionID != "" {
		if destination, err = s.partitionRepo.GetByID(ctx, req.DestinationPartitionID); err != nil {
			return nil, err
		}
	}

	guard := ledger.CanCreateTransaction(ledger.CreateTransactionContext{
		SourcePartitionID:      source.ID,
		DestinationPartitionID: req.DestinationPartitionID,
		CategoryKind:           kind,
		CategoryArchived:       category.Archived,
		SourceArchived:         source.Archived,
		Value:                  req.Value,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	record, counterpart, err := s.newPostings(ctx, kind, source.ID, req.DestinationPartitionID, category.ID, req.Value, req.Description, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(ctx, record, counterpart); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.logCreate(ctx, "transaction", record.ID)

	shape := transactionShape(ctxutil.UserFromContext(ctx), category, source, destination)
	if err := s.apply(ctx, invalidation.TransactionCreated{Transaction: shape}); err != nil {
		return nil, err
	}
	return recordToTransaction(record), nil
}

// UpdateTransaction edits a transaction and keeps its counterpart in sync.
// The stored sign always follows the category kind.
func (s *LedgerServiceImpl) UpdateTransaction(ctx context.Context, req primary.UpdateTransactionRequest) (*primary.Transaction, error) {
	existing, err := s.transactionRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	current, err := s.categoryRepo.GetByID(ctx, existing.CategoryID)
	if err != nil {
		return nil, err
	}
	currentKind, err := ledger.ParseKind(current.Kind)
	if err != nil {
		return nil, err
	}

	next := current
	var newKind *ledger.CategoryKind
	if req.CategoryID != nil && *req.CategoryID != existing.CategoryID {
		if next, err = s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		if next.Archived {
			return nil, fmt.Errorf("category %s is archived", next.ID)
		}
		kind, err := ledger.ParseKind(next.Kind)
		if err != nil {
			return nil, err
		}
		newKind = &kind
	}

	guard := ledger.CanUpdateTransaction(ledger.UpdateTransactionContext{
		TransactionID: existing.ID,
		IsLoanRelated: existing.LoanID != "",
		NewValue:      req.Value,
		NewKind:       newKind,
		CurrentKind:   currentKind,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	before, err := s.loadShape(ctx, existing)
	if err != nil {
		return nil, err
	}

	updated := *existing
	kind := currentKind
	if newKind != nil {
		kind = *newKind
	}
	amount := existing.Value.Abs()
	if req.Value != nil {
		amount = *req.Value
	}
	updated.CategoryID = next.ID
	updated.Value = ledger.SignedValue(kind, amount, existing.IsCounterpart)
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.CreatedAt != nil {
		updated.CreatedAt = req.CreatedAt.UTC()
	}

	if err := s.transactionRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if !updated.Value.Equal(existing.Value) {
		s.logUpdate(ctx, "transaction", existing.ID, "value", existing.Value.String(), updated.Value.String())
	}
	if updated.CategoryID != existing.CategoryID {
		s.logUpdate(ctx, "transaction", existing.ID, "category_id", existing.CategoryID, updated.CategoryID)
	}
	if updated.Description != existing.Description {
		s.logUpdate(ctx, "transaction", existing.ID, "description", existing.Description, updated.Description)
	}
	if !updated.CreatedAt.Equal(existing.CreatedAt) {
		s.logUpdate(ctx, "transaction", existing.ID, "created_at",
			existing.CreatedAt.Format(time.RFC3339), updated.CreatedAt.Format(time.RFC3339))
	}

	after, err := s.loadShape(ctx, &updated)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, invalidation.TransactionUpdated{Before: before, After: after}); err != nil {
		return nil, err
	}
	return recordToTransaction(&updated), nil
}

// DeleteTransaction deletes a transaction and its counterpart. Deleting the
// transaction that made a loan deletes the loan, its payments, and drops the
// loan from the session selection.
func (s *LedgerServiceImpl) DeleteTransaction(ctx context.Context, transactionID string) (*primary.DeleteTransactionResponse, error) {
	existing, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	shape, err := s.loadShape(ctx, existing)
	if err != nil {
		return nil, err
	}

	deletedLoanID, err := s.transactionRepo.Delete(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.logDelete(ctx, "transaction", transactionID)
	if deletedLoanID != "" {
		s.logDelete(ctx, "loan", deletedLoanID)
	}

	if err := s.apply(ctx, invalidation.TransactionDeleted{Transaction: shape, DeletedLoanID: deletedLoanID}); err != nil {
		return nil, err
	}
	return &primary.DeleteTransactionResponse{TransactionID: transactionID, DeletedLoanID: deletedLoanID}, nil
}

// newPostings builds the records of one transaction. A transfer gets a
// counterpart posting on the destination.
func (s *LedgerServiceImpl) newPostings(
	ctx context.Context,
	kind ledger.CategoryKind,
	sourceID, destinationID, categoryID string,
	amount decimal.Decimal,
	description string,
	at *time.Time,
) (*secondary.TransactionRecord, *secondary.TransactionRecord, error) {
	n := 1
	if destinationID != "" {
		n = 2
	}
	ids, err := s.transactionRepo.GetNextIDs(ctx, n)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate transaction ID: %w", err)
	}
	createdAt := s.now().UTC()
	if at != nil {
		createdAt = at.UTC()
	}

	record := &secondary.TransactionRecord{
		ID:                ids[0],
		SourcePartitionID: sourceID,
		CategoryID:        categoryID,
		Value:             ledger.SignedValue(kind, amount, false),
		Description:       description,
		CreatedAt:         createdAt,
	}
	if destinationID == "" {
		return record, nil, nil
	}
	counterpart := &secondary.TransactionRecord{
		ID:                ids[1],
		SourcePartitionID: destinationID,
		CategoryID:        categoryID,
		Value:             ledger.SignedValue(kind, amount, true),
		Description:       description,
		CreatedAt:         createdAt,
	}
	return record, counterpart, nil
}

// transactionShape describes a transaction for the invalidation planner.
func transactionShape(userID string, category *secondary.CategoryRecord, source, counterpart *secondary.PartitionRecord) invalidation.TransactionShape {
	shape := invalidation.TransactionShape{
		UserID:       userID,
		CategoryID:   category.ID,
		CategoryKind: ledger.CategoryKind(category.Kind),
		Source:       invalidation.PartitionRef{PartitionID: source.ID, AccountID: source.AccountID},
	}
	if counterpart != nil {
		shape.Counterpart = &invalidation.PartitionRef{PartitionID: counterpart.ID, AccountID: counterpart.AccountID}
	}
	return shape
}

// loadShape resolves the partitions, category and loan a stored transaction touches.
func (s *LedgerServiceImpl) loadShape(ctx context.Context, record *secondary.TransactionRecord) (invalidation.TransactionShape, error) {
	category, err := s.categoryRepo.GetByID(ctx, record.CategoryID)
	if err != nil {
		return invalidation.TransactionShape{}, err
	}
	source, err := s.partitionRepo.GetByID(ctx, record.SourcePartitionID)
	if err != nil {
		return invalidation.TransactionShape{}, err
	}
	var counterpart *secondary.PartitionRecord
	if record.CounterpartID != "" {
		pair, err := s.transactionRepo.GetByID(ctx, record.CounterpartID)
		if err != nil {
			return invalidation.TransactionShape{}, err
		}
		if counterpart, err = s.partitionRepo.GetByID(ctx, pair.SourcePartitionID); err != nil {
			return invalidation.TransactionShape{}, err
		}
	}

	shape := transactionShape(ctxutil.UserFromContext(ctx), category, source, counterpart)
	if record.LoanID != "" {
		loan, err := s.loanRepo.GetByID(ctx, record.LoanID)
		if err != nil {
			return invalidation.TransactionShape{}, err
		}
		shape.LoanID = loan.ID
		shape.LenderPartitionID = loan.LenderPartitionID
	}
	return shape, nil
}

// ============================================================================
// Loans
// ============================================================================

// MakeLoan lends money from the lender partition to the borrower partition.
func (s *LedgerServiceImpl) MakeLoan(ctx context.Context, req primary.MakeLoanRequest) (*primary.Loan, error) {
	lender, err := s.partitionRepo.GetByID(ctx, req.LenderPartitionID)
	if err != nil {
		return nil, err
	}
	borrower, err := s.partitionRepo.GetByID(ctx, req.BorrowerPartitionID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	kind := ledger.CategoryKind(category.Kind)
	toPay := req.ToPay
	if toPay.IsZero() {
		toPay = req.Amount
	}

	guard := ledger.CanMakeALoan(ledger.MakeLoanContext{
		SourcePartitionID:      lender.ID,
		DestinationPartitionID: borrower.ID,
		CategoryKind:           kind,
		Amount:                 req.Amount,
		ToPay:                  toPay,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}
	guard = ledger.CanCreateTransaction(ledger.CreateTransactionContext{
		SourcePartitionID:      lender.ID,
		DestinationPartitionID: borrower.ID,
		CategoryKind:           kind,
		CategoryArchived:       category.Archived,
		SourceArchived:         lender.Archived,
		Value:                  req.Amount,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	loanID, err := s.loanRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate loan ID: %w", err)
	}
	record, counterpart, err := s.newPostings(ctx, kind, lender.ID, borrower.ID, category.ID, req.Amount, req.Description, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	loan := &secondary.LoanRecord{
		ID:                  loanID,
		LenderPartitionID:   lender.ID,
		BorrowerPartitionID: borrower.ID,
		CategoryID:          category.ID,
		Amount:              req.Amount,
		ToPay:               toPay,
		Description:         req.Description,
	}
	if err := s.transactionRepo.CreateLoan(ctx, loan, record, counterpart); err != nil {
		return nil, fmt.Errorf("failed to make loan: %w", err)
	}
	s.logCreate(ctx, "loan", loanID)

	shape := transactionShape(ctxutil.UserFromContext(ctx), category, lender, borrower)
	shape.LoanID = loanID
	shape.LenderPartitionID = lender.ID
	if err := s.apply(ctx, invalidation.LoanCreated{Transaction: shape}); err != nil {
		return nil, err
	}

	created, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created loan: %w", err)
	}
	return recordToLoan(created), nil
}

// MakePayment pays back part of a loan: a transfer from the borrower to the
// lender carrying the loan ID.
func (s *LedgerServiceImpl) MakePayment(ctx context.Context, req primary.MakePaymentRequest) (*primary.Transaction, error) {
	loan, err := s.loanRepo.GetByID(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}
	guard := ledger.CanMakeAPayment(ledger.MakePaymentContext{
		LoanID:    loan.ID,
		Amount:    req.Amount,
		Remaining: loan.Remaining(),
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	borrower, err := s.partitionRepo.GetByID(ctx, loan.BorrowerPartitionID)
	if err != nil {
		return nil, err
	}
	lender, err := s.partitionRepo.GetByID(ctx, loan.LenderPartitionID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, loan.CategoryID)
	if err != nil {
		return nil, err
	}
	if borrower.Archived {
		return nil, fmt.Errorf("partition %s is archived", borrower.ID)
	}

	description := req.Description
	if description == "" {
		description = "payment for " + loan.ID
	}
	record, counterpart, err := s.newPostings(ctx, ledger.KindTransfer, borrower.ID, lender.ID, category.ID, req.Amount, description, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.LoanID = loan.ID
	counterpart.LoanID = loan.ID
	if err := s.transactionRepo.Create(ctx, record, counterpart); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	s.logCreate(ctx, "transaction", record.ID)

	shape := transactionShape(ctxutil.UserFromContext(ctx), category, borrower, lender)
	shape.LoanID = loan.ID
	shape.LenderPartitionID = lender.ID
	if err := s.apply(ctx, invalidation.LoanPaymentMade{Transaction: shape}); err != nil {
		return nil, err
	}
	return recordToTransaction(record), nil
}

// GetLoan retrieves a loan with its paid amount.
func (s *LedgerServiceImpl) GetLoan(ctx context.Context, loanID string) (*primary.Loan, error) {
	record, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return recordToLoan(record), nil
}

// ============================================================================
// Budget profiles
// ============================================================================

// CreateBudgetProfile saves a named partition selection. Without a user the
// acting user owns the profile.
func (s *LedgerServiceImpl) CreateBudgetProfile(ctx context.Context, req primary.CreateBudgetProfileRequest) (*primary.BudgetProfile, error) {
	if err := ledger.RequireName("budget profile", req.Name).Error(); err != nil {
		return nil, err
	}
	userID := req.UserID
	if userID == "" {
		userID = ctxutil.UserFromContext(ctx)
	}
	if userID == "" {
		return nil, fmt.Errorf("a budget profile needs an owner")
	}
	for _, id := range req.PartitionIDs {
		if _, err := s.partitionRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	nextID, err := s.budgetRepo.GetNextProfileID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate budget profile ID: %w", err)
	}
	record := &secondary.BudgetProfileRecord{ID: nextID, UserID: userID, Name: req.Name, PartitionIDs: req.PartitionIDs}
	if err := s.budgetRepo.CreateProfile(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create budget profile: %w", err)
	}
	s.logCreate(ctx, "budget_profile", nextID)

	if err := s.apply(ctx, invalidation.BudgetProfileToggled{UserID: userID, ProfileID: nextID}); err != nil {
		return nil, err
	}
	return s.GetBudgetProfile(ctx, nextID)
}

// GetBudgetProfile retrieves a budget profile with its partitions.
func (s *LedgerServiceImpl) GetBudgetProfile(ctx context.Context, profileID string) (*primary.BudgetProfile, error) {
	record, err := s.budgetRepo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return recordToProfile(record), nil
}

// ToggleProfilePartition adds a partition to a profile, or removes it.
func (s *LedgerServiceImpl) ToggleProfilePartition(ctx context.Context, profileID, partitionID string) (bool, error) {
	profile, err := s.budgetRepo.GetProfile(ctx, profileID)
	if err != nil {
		return false, err
	}
	if _, err := s.partitionRepo.GetByID(ctx, partitionID); err != nil {
		return false, err
	}

	added, err := s.budgetRepo.TogglePartition(ctx, profileID, partitionID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle profile partition: %w", err)
	}
	if added {
		s.logUpdate(ctx, "budget_profile", profileID, "partitions", "", partitionID)
	} else {
		s.logUpdate(ctx, "budget_profile", profileID, "partitions", partitionID, "")
	}

	updated, err := s.budgetRepo.GetProfile(ctx, profileID)
	if err != nil {
		return false, err
	}
	if err := s.apply(ctx, invalidation.BudgetProfileToggled{
		UserID:       profile.UserID,
		ProfileID:    profileID,
		PartitionIDs: updated.PartitionIDs,
	}); err != nil {
		return false, err
	}
	return added, nil
}

// SetBudget sets the budget of a category under a profile.
func (s *LedgerServiceImpl) SetBudget(ctx context.Context, req primary.SetBudgetRequest) error {
	if req.Amount.IsNegative() {
		return fmt.Errorf("budget cannot be negative (got %s)", req.Amount.String())
	}
	profile, err := s.budgetRepo.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return err
	}
	previous, err := s.budgetRepo.GetAmount(ctx, req.ProfileID, req.CategoryID)
	if err != nil {
		return err
	}

	budget := &secondary.BudgetRecord{ProfileID: req.ProfileID, CategoryID: req.CategoryID, Amount: req.Amount}
	if err := s.budgetRepo.SetAmount(ctx, budget); err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	s.logUpdate(ctx, "budget_profile", req.ProfileID, "budget:"+req.CategoryID, previous.String(), req.Amount.String())

	return s.apply(ctx, invalidation.BudgetProfileToggled{
		UserID:      profile.UserID,
		ProfileID:   req.ProfileID,
		CategoryIDs: []string{req.CategoryID},
	})
}

// DeleteBudgetProfile deletes a profile and its budgets.
func (s *LedgerServiceImpl) DeleteBudgetProfile(ctx context.Context, profileID string) error {
	profile, err := s.budgetRepo.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	categories, err := s.budgetRepo.ListBudgetedCategories(ctx, profileID)
	if err != nil {
		return err
	}
	if err := s.budgetRepo.DeleteProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete budget profile: %w", err)
	}
	s.logDelete(ctx, "budget_profile", profileID)

	return s.apply(ctx, invalidation.BudgetProfileToggled{
		UserID:      profile.UserID,
		ProfileID:   profileID,
		CategoryIDs: categories,
		Deleted:     true,
	})
}

// ============================================================================
// Helpers
// ============================================================================

// apply plans the invalidation of a successful mutation and executes it.
func (s *LedgerServiceImpl) apply(ctx context.Context, result invalidation.MutationResult) error {
	if s.executor == nil {
		return nil
	}
	plan := invalidation.PlanInvalidations(result)
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return fmt.Errorf("%s applied but invalidation failed: %w", result.Variant(), err)
	}
	return nil
}

func (s *LedgerServiceImpl) logCreate(ctx context.Context, entityType, entityID string) {
	if s.logWriter != nil {
		_ = s.logWriter.LogCreate(ctx, entityType, entityID)
	}
}

func (s *LedgerServiceImpl) logUpdate(ctx context.Context, entityType, entityID, field, oldValue, newValue string) {
	if s.logWriter != nil {
		_ = s.logWriter.LogUpdate(ctx, entityType, entityID, field, oldValue, newValue)
	}
}

func (s *LedgerServiceImpl) logDelete(ctx context.Context, entityType, entityID string) {
	if s.logWriter != nil {
		_ = s.logWriter.LogDelete(ctx, entityType, entityID)
	}
}

// logFlags logs the name, privacy and archive changes of a partition or category.
func (s *LedgerServiceImpl) logFlags(ctx context.Context, entityType, id, oldName, newName string, oldPrivate, newPrivate, oldArchived, newArchived bool) {
	if oldName != newName {
		s.logUpdate(ctx, entityType, id, "name", oldName, newName)
	}
	if oldPrivate != newPrivate {
		s.logUpdate(ctx, entityType, id, "is_private", strconv.FormatBool(oldPrivate), strconv.FormatBool(newPrivate))
	}
	if oldArchived != newArchived {
		s.logUpdate(ctx, entityType, id, "archived", strconv.FormatBool(oldArchived), strconv.FormatBool(newArchived))
	}
}

// Ensure LedgerServiceImpl implements the interface.
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
