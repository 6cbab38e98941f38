package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

// TransactionService owns the ledger write path: validation, ownership
// checks and the budget notification that follows a new expense.
type TransactionService struct {
	store    Store
	notifier *Notifier
	events   *log.StructuredLogger
	now      func() time.Time
}

func NewTransactionService(store Store, notifier *Notifier, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:    store,
		notifier: notifier,
		events:   log.NewStructuredLogger(logger),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

func (s *TransactionService) today() core.Date {
	return core.DateOf(s.now())
}

// CreateResult is a new transaction plus the budgets alerted because of it.
type CreateResult struct {
	Transaction  core.Transaction `json:"transaction"`
	BudgetAlerts []string         `json:"budget_alerts"`
}

// Create validates and stores t for user. For a categorized expense the
// current month's budgets are evaluated before the insert; once the row is
// stored that snapshot is patched with the new amount, so the new expense
// is counted exactly once. Notification problems never undo the insert.
func (s *TransactionService) Create(ctx context.Context, user core.User, t core.Transaction) (CreateResult, error) {
	t.UserID = user.ID
	t.Normalize()
	if err := t.Validate(); err != nil {
		return CreateResult{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return CreateResult{}, err
	}

	var (
		snapshot []core.BudgetProgress
		period   = core.PeriodOf(s.today())
		logger   = log.FromContext(ctx).WithComponent(log.ComponentTransaction)
	)
	if t.Type == core.Expense && t.CategoryID != nil {
		var err error
		snapshot, err = EvaluateBudgets(ctx, s.store, user.ID, period)
		if err != nil {
			logger.ErrorContext(ctx, "Budget snapshot failed, skipping notifications",
				log.FieldUserID, user.ID, log.FieldError, err)
			snapshot = nil
		}
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return CreateResult{}, err
	}
	s.events.LogTransactionCreated(ctx, user.ID, created.AccountID, created.CategoryID, string(created.Type), created.Amount.Cents)

	result := CreateResult{Transaction: created, BudgetAlerts: []string{}}
	if snapshot != nil && period.Contains(created.Date) {
		result.BudgetAlerts = s.notifier.NotifyOverages(ctx, user, snapshot, *created.CategoryID, created.Amount)
	}
	return result, nil
}

func (s *TransactionService) Get(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID string, f storage.TransactionFilter) (storage.TransactionPage, error) {
	return s.store.ListTransactions(ctx, userID, f)
}

// Update rewrites a transaction. Budget alerts are only sent on create.
func (s *TransactionService) Update(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.UserID = userID
	t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return s.store.GetTransaction(ctx, userID, t.ID)
}

func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

// checkReferences makes sure the account and category belong to (or are
// visible to) the transaction's user.
func (s *TransactionService) checkReferences(ctx context.Context, t core.Transaction) error {
	account, err := s.store.GetAccount(ctx, t.UserID, t.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: account %d", core.ErrMissingAccount, t.AccountID)
		}
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %d is closed", core.ErrMissingAccount, t.AccountID)
	}

	if t.CategoryID == nil {
		return nil
	}
	category, err := s.store.GetCategory(ctx, t.UserID, *t.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: category %d", core.ErrMissingCategory, *t.CategoryID)
		}
		return err
	}
	if t.Type != core.Transfer && string(category.Type) != string(t.Type) {
		return core.ErrCategoryTypeMismatch
	}
	return nil
}
