package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
)

// LedgerService validates and stores the entities around transactions:
// accounts, categories, budgets, goals and bills.
type LedgerService struct {
	store Store
	now   func() time.Time
}

func NewLedgerService(store Store) *LedgerService {
	return &LedgerService{store: store, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

func (s *LedgerService) CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	a.UserID = userID
	a.Normalize()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.store.CreateAccount(ctx, a)
}

func (s *LedgerService) UpdateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	a.UserID = userID
	a.Normalize()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return s.store.GetAccount(ctx, userID, a.ID)
}

// AccountWithBalance returns one account and its derived balance.
func (s *LedgerService) AccountWithBalance(ctx context.Context, userID string, id int64) (core.AccountBalance, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return core.AccountBalance{}, err
	}
	balance, err := AccountBalance(ctx, s.store, a.ID)
	if err != nil {
		return core.AccountBalance{}, err
	}
	return core.AccountBalance{Account: a, Balance: balance}, nil
}

func (s *LedgerService) CloseAccount(ctx context.Context, userID string, id int64) error {
	return s.store.DeactivateAccount(ctx, userID, id)
}

func (s *LedgerService) CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	c.UserID = userID
	c.IsSystem = false
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.checkParent(ctx, c); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, c)
}

// UpdateCategory edits a user category. The type cannot change once created.
func (s *LedgerService) UpdateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, userID, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	if existing.IsSystem {
		return core.Category{}, core.ErrImmutableCategory
	}
	c.UserID = userID
	c.Type = existing.Type
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return core.Category{}, core.ErrNestedTooDeep
	}
	if err := s.checkParent(ctx, c); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return s.store.GetCategory(ctx, userID, c.ID)
}

func (s *LedgerService) checkParent(ctx context.Context, c core.Category) error {
	if c.ParentID == nil {
		return nil
	}
	parent, err := s.store.GetCategory(ctx, c.UserID, *c.ParentID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: parent %d", core.ErrMissingCategory, *c.ParentID)
		}
		return err
	}
	return c.ValidateParent(parent)
}

// CreateBudget stores a budget on an expense category visible to the user.
func (s *LedgerService) CreateBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	b.UserID = userID
	b.Normalize()
	if b.StartDate.IsZero() {
		b.StartDate = core.DateOf(s.now())
	}
	if err := s.checkBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	log.FromContext(ctx).WithComponent(log.ComponentBudget).InfoContext(ctx, "Budget created",
		log.FieldUserID, userID, log.FieldCategoryID, b.CategoryID, log.FieldAmountCents, b.Amount.Cents)
	return created, nil
}

func (s *LedgerService) UpdateBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	b.UserID = userID
	b.Normalize()
	if err := s.checkBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return s.store.GetBudget(ctx, userID, b.ID)
}

func (s *LedgerService) checkBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	c, err := s.store.GetCategory(ctx, b.UserID, b.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: category %d", core.ErrMissingCategory, b.CategoryID)
		}
		return err
	}
	if c.Type != core.ExpenseCategory {
		return core.ErrCategoryTypeMismatch
	}
	return nil
}

func (s *LedgerService) GetBudget(ctx context.Context, userID string, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, userID, id)
}

func (s *LedgerService) DeactivateBudget(ctx context.Context, userID string, id int64) error {
	return s.store.DeactivateBudget(ctx, userID, id)
}

func (s *LedgerService) CreateGoal(ctx context.Context, userID string, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.UserID = userID
	g.Normalize()
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	return s.store.CreateGoal(ctx, g)
}

// UpdateGoal stores new goal figures. Reaching the target marks the goal achieved.
func (s *LedgerService) UpdateGoal(ctx context.Context, userID string, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.UserID = userID
	g.Normalize()
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.IsAchieved = true
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, err
	}
	return s.store.GetGoal(ctx, userID, g.ID)
}

func (s *LedgerService) GoalProgress(ctx context.Context, userID string, id int64) (core.GoalProgress, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return core.GoalProgress{}, err
	}
	return core.NewGoalProgress(g, core.DateOf(s.now())), nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, userID string, id int64) error {
	return s.store.DeleteGoal(ctx, userID, id)
}

func (s *LedgerService) CreateBill(ctx context.Context, userID string, b core.Bill) (core.Bill, error) {
	b.UserID = userID
	b.IsPaid = false
	if err := s.checkBill(ctx, &b); err != nil {
		return core.Bill{}, err
	}
	return s.store.CreateBill(ctx, b)
}

func (s *LedgerService) UpdateBill(ctx context.Context, userID string, b core.Bill) (core.Bill, error) {
	b.UserID = userID
	if err := s.checkBill(ctx, &b); err != nil {
		return core.Bill{}, err
	}
	if err := s.store.UpdateBill(ctx, b); err != nil {
		return core.Bill{}, err
	}
	return s.store.GetBill(ctx, userID, b.ID)
}

func (s *LedgerService) checkBill(ctx context.Context, b *core.Bill) error {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return err
	}
	if b.CategoryID == nil {
		return nil
	}
	if _, err := s.store.GetCategory(ctx, b.UserID, *b.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: category %d", core.ErrMissingCategory, *b.CategoryID)
		}
		return err
	}
	return nil
}

// PayResult is a paid bill and, for recurring bills, its next occurrence.
type PayResult struct {
	Paid core.Bill  `json:"paid"`
	Next *core.Bill `json:"next,omitempty"`
}

// PayBill marks a bill paid and schedules the next unpaid occurrence for
// recurring frequencies.
func (s *LedgerService) PayBill(ctx context.Context, userID string, id int64) (PayResult, error) {
	bill, err := s.store.GetBill(ctx, userID, id)
	if err != nil {
		return PayResult{}, err
	}
	schedule, err := GetBillSchedule(bill.Frequency)
	if err != nil {
		return PayResult{}, err
	}
	if err := s.store.MarkBillPaid(ctx, userID, id); err != nil {
		return PayResult{}, err
	}
	bill.IsPaid = true
	result := PayResult{Paid: bill}

	nextDue, repeats := schedule.Next(bill.DueDate)
	if !repeats {
		return result, nil
	}
	next := bill
	next.ID = 0
	next.IsPaid = false
	next.DueDate = nextDue
	created, err := s.store.CreateBill(ctx, next)
	if err != nil {
		return PayResult{}, fmt.Errorf("schedule next %s bill: %w", bill.Frequency, err)
	}
	result.Next = &created

	log.FromContext(ctx).WithComponent(log.ComponentBill).InfoContext(ctx, "Bill paid",
		log.FieldUserID, userID, "bill_id", id, "next_due", nextDue.String())
	return result, nil
}
