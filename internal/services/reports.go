package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
)

// Report defaults.
const (
	DefaultRecentLimit  = 10
	DefaultTrendMonths  = 12
	DefaultUpcomingDays = 30

	MaxTrendMonths  = 1200
	MaxUpcomingDays = 3660
)

// CategorySpending groups the period's expenses by category.
// Uncategorized expenses are left out.
func CategorySpending(ctx context.Context, store Store, userID string, period core.Period) ([]core.CategorySpending, error) {
	return store.CategorySpending(ctx, userID, period)
}

func RecentTransactions(ctx context.Context, store Store, userID string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return store.RecentTransactions(ctx, userID, limit)
}

// IncomeExpenseTrend sums income and expense per month over a window of
// 30*months days ending today.
func IncomeExpenseTrend(ctx context.Context, store Store, userID string, months int, today core.Date) (core.Trend, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}
	return store.MonthlyTrend(ctx, userID, today.AddDays(-30*months))
}

// UpcomingBills lists unpaid bills due within days of today, overdue ones included.
func UpcomingBills(ctx context.Context, store Store, userID string, days int, today core.Date) ([]core.Bill, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	return store.UpcomingBills(ctx, userID, today.AddDays(days))
}

func NetWorth(ctx context.Context, store Store, userID string) (core.NetWorth, error) {
	balances, err := AccountBalances(ctx, store, userID, true)
	if err != nil {
		return core.NetWorth{}, fmt.Errorf("net worth: %w", err)
	}
	return core.ComputeNetWorth(balances), nil
}

// GoalsProgress decorates every goal of the user, achieved ones included.
func GoalsProgress(ctx context.Context, store Store, userID string, today core.Date) ([]core.GoalProgress, error) {
	goals, err := store.ListGoals(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("goals progress: %w", err)
	}
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, core.NewGoalProgress(g, today))
	}
	return out, nil
}

func BudgetOverages(ctx context.Context, store Store, userID string, period core.Period) (core.OverageSummary, error) {
	progress, err := EvaluateBudgets(ctx, store, userID, period)
	if err != nil {
		return core.OverageSummary{}, err
	}
	return core.SummarizeOverages(progress), nil
}

// HealthScoreFor gathers the current month's budgets, all goals and net
// worth, then scores them.
func HealthScoreFor(ctx context.Context, store Store, userID string, today core.Date) (int, error) {
	var (
		budgets []core.BudgetProgress
		goals   []core.GoalProgress
		nw      core.NetWorth
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		budgets, err = EvaluateBudgets(gctx, store, userID, core.PeriodOf(today))
		return err
	})
	g.Go(func() (err error) {
		goals, err = GoalsProgress(gctx, store, userID, today)
		return err
	})
	g.Go(func() (err error) {
		nw, err = NetWorth(gctx, store, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("health score: %w", err)
	}
	return core.HealthScore(budgets, goals, nw.NetWorth), nil
}

// Dashboard is the composite home view.
type Dashboard struct {
	Accounts           []core.AccountBalance   `json:"accounts"`
	TotalBalance       core.Money              `json:"total_balance"`
	RecentTransactions []core.Transaction      `json:"recent_transactions"`
	Budgets            []core.BudgetProgress   `json:"budget_progress"`
	CategorySpending   []core.CategorySpending `json:"monthly_spending"`
	UpcomingBills      []core.Bill             `json:"upcoming_bills"`
	Goals              []core.GoalProgress     `json:"savings_goals"`
	NetWorth           core.NetWorth           `json:"net_worth"`
	HealthScore        int                     `json:"health_score"`
}

// BuildDashboard loads every dashboard section concurrently. The sections
// are read independently and need not agree on a single snapshot.
func BuildDashboard(ctx context.Context, store Store, userID string, today core.Date) (Dashboard, error) {
	var d Dashboard
	period := core.PeriodOf(today)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Accounts, err = AccountBalances(gctx, store, userID, true)
		return err
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = RecentTransactions(gctx, store, userID, DefaultRecentLimit)
		return err
	})
	g.Go(func() (err error) {
		d.Budgets, err = EvaluateBudgets(gctx, store, userID, period)
		return err
	})
	g.Go(func() (err error) {
		d.CategorySpending, err = CategorySpending(gctx, store, userID, period)
		return err
	})
	g.Go(func() (err error) {
		d.UpcomingBills, err = UpcomingBills(gctx, store, userID, DefaultUpcomingDays, today)
		return err
	})
	g.Go(func() (err error) {
		d.Goals, err = GoalsProgress(gctx, store, userID, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	d.TotalBalance = TotalBalance(d.Accounts)
	d.NetWorth = core.ComputeNetWorth(d.Accounts)
	d.HealthScore = core.HealthScore(d.Budgets, d.Goals, d.NetWorth.NetWorth)
	return d, nil
}
