// Package services holds the aggregation logic and the write paths that
// sit between the HTTP handlers and the ledger store.
package services

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// Store is the part of the ledger the services depend on.
// *storage.Repository implements it.
type Store interface {
	GetUser(ctx context.Context, id string) (core.User, error)

	GetAccount(ctx context.Context, userID string, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, userID string, activeOnly bool) ([]core.Account, error)
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	DeactivateAccount(ctx context.Context, userID string, id int64) error
	AccountTotals(ctx context.Context, accountID int64) (income, expense core.Money, err error)
	AccountTotalsByUser(ctx context.Context, userID string) (map[int64][2]core.Money, error)

	GetCategory(ctx context.Context, userID string, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID string, typ core.CategoryType) ([]core.Category, error)
	FindCategory(ctx context.Context, userID, fragment string, typ core.CategoryType) (core.Category, error)
	FindSystemCategory(ctx context.Context, name string, typ core.CategoryType) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id int64) error
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) (storage.TransactionPage, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	ExpenseTotalsByCategory(ctx context.Context, userID string, p core.Period) (map[int64]core.Money, error)
	CategorySpending(ctx context.Context, userID string, p core.Period) ([]core.CategorySpending, error)
	MonthlyTrend(ctx context.Context, userID string, since core.Date) (core.Trend, error)

	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, userID string, id int64) (core.Budget, error)
	ActiveBudgets(ctx context.Context, userID string) ([]storage.NamedBudget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeactivateBudget(ctx context.Context, userID string, id int64) error

	CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	GetGoal(ctx context.Context, userID string, id int64) (core.SavingsGoal, error)
	ListGoals(ctx context.Context, userID string, pendingOnly bool) ([]core.SavingsGoal, error)
	UpdateGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteGoal(ctx context.Context, userID string, id int64) error

	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	GetBill(ctx context.Context, userID string, id int64) (core.Bill, error)
	UpcomingBills(ctx context.Context, userID string, until core.Date) ([]core.Bill, error)
	UpdateBill(ctx context.Context, b core.Bill) error
	MarkBillPaid(ctx context.Context, userID string, id int64) error
}

var _ Store = (*storage.Repository)(nil)
