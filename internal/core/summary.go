package core

import (
	"math"
	"sort"
)

// BudgetProgress is the spent-vs-allocated state of one budget in a period.
type BudgetProgress struct {
	Budget          Budget  `json:"budget"`
	CategoryName    string  `json:"category_name"`
	Spent           Money   `json:"spent"`
	Remaining       Money   `json:"remaining"`
	ProgressPercent float64 `json:"progress_percent"`
	IsOverBudget    bool    `json:"is_over_budget"`
}

// NewBudgetProgress derives remaining, percent and the over-budget flag from spent.
func NewBudgetProgress(b Budget, categoryName string, spent Money) BudgetProgress {
	p := BudgetProgress{Budget: b, CategoryName: categoryName, Spent: spent}
	p.recompute()
	return p
}

func (p *BudgetProgress) recompute() {
	p.Remaining = p.Budget.Amount.Sub(p.Spent)
	p.ProgressPercent = Percent(p.Spent, p.Budget.Amount)
	p.IsOverBudget = p.Spent.Cents > p.Budget.Amount.Cents
}

// PatchBudgetProgress adds a just-posted expense to every entry of the
// snapshot that tracks categoryID, without going back to the ledger.
// It reports whether any entry was touched.
func PatchBudgetProgress(snapshot []BudgetProgress, categoryID int64, amount Money) bool {
	patched := false
	for i := range snapshot {
		if snapshot[i].Budget.CategoryID != categoryID {
			continue
		}
		snapshot[i].Spent = snapshot[i].Spent.Add(amount)
		snapshot[i].recompute()
		patched = true
	}
	return patched
}

// BudgetAlert is the context handed to the email collaborator for one overage.
type BudgetAlert struct {
	CategoryName string       `json:"category_name"`
	Period       BudgetPeriod `json:"period"`
	StartDate    Date         `json:"start_date"`
	Spent        Money        `json:"spent"`
	Amount       Money        `json:"amount"`
}

// Alert builds the notification payload for p.
func (p BudgetProgress) Alert() BudgetAlert {
	return BudgetAlert{
		CategoryName: p.CategoryName,
		Period:       p.Budget.Period,
		StartDate:    p.Budget.StartDate,
		Spent:        p.Spent,
		Amount:       p.Budget.Amount,
	}
}

// BudgetOverage describes how far one budget is over its allocation.
type BudgetOverage struct {
	Category       string  `json:"category"`
	BudgetAmount   Money   `json:"budget_amount"`
	SpentAmount    Money   `json:"spent_amount"`
	OverageAmount  Money   `json:"overage_amount"`
	OveragePercent float64 `json:"overage_percent"`
}

type OverageSummary struct {
	Overages             []BudgetOverage `json:"overages"`
	TotalOverage         Money           `json:"total_overage"`
	CategoriesOverBudget int             `json:"categories_over_budget"`
}

// SummarizeOverages collects the over-budget entries of a progress list.
func SummarizeOverages(progress []BudgetProgress) OverageSummary {
	s := OverageSummary{Overages: []BudgetOverage{}}
	for _, p := range progress {
		if !p.IsOverBudget {
			continue
		}
		over := p.Spent.Sub(p.Budget.Amount)
		s.Overages = append(s.Overages, BudgetOverage{
			Category:       p.CategoryName,
			BudgetAmount:   p.Budget.Amount,
			SpentAmount:    p.Spent,
			OverageAmount:  over,
			OveragePercent: Percent(over, p.Budget.Amount),
		})
		s.TotalOverage = s.TotalOverage.Add(over)
	}
	s.CategoriesOverBudget = len(s.Overages)
	return s
}

// CategorySpending is one slice of the monthly spending breakdown.
type CategorySpending struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Total      Money  `json:"total"`
}

// MonthlyTotals holds income and expense sums for one YYYY-MM key.
type MonthlyTotals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

// Trend maps YYYY-MM keys to totals. Months without activity are absent.
type Trend map[string]MonthlyTotals

// Labels returns the month keys in ascending order.
func (t Trend) Labels() []string {
	labels := make([]string, 0, len(t))
	for k := range t {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// GoalProgress decorates a savings goal with derived figures.
type GoalProgress struct {
	Goal            SavingsGoal `json:"goal"`
	ProgressPercent float64     `json:"progress_percent"`
	DaysRemaining   *int        `json:"days_remaining,omitempty"`
	RemainingAmount Money       `json:"remaining_amount"`
}

func NewGoalProgress(g SavingsGoal, today Date) GoalProgress {
	p := GoalProgress{
		Goal:            g,
		ProgressPercent: Percent(g.CurrentAmount, g.TargetAmount),
		RemainingAmount: g.TargetAmount.Sub(g.CurrentAmount),
	}
	if g.TargetDate != nil {
		days := today.DaysUntil(*g.TargetDate)
		p.DaysRemaining = &days
	}
	return p
}

// AccountBalance pairs an account with its ledger-derived balance.
type AccountBalance struct {
	Account Account `json:"account"`
	Balance Money   `json:"balance"`
}

type NetWorth struct {
	Assets      Money `json:"assets"`
	Liabilities Money `json:"liabilities"`
	NetWorth    Money `json:"net_worth"`
}

// ComputeNetWorth sums active account balances. Credit balances always add
// their absolute value to liabilities.
func ComputeNetWorth(balances []AccountBalance) NetWorth {
	var nw NetWorth
	for _, ab := range balances {
		if !ab.Account.IsActive {
			continue
		}
		switch {
		case ab.Account.Type.CountsAsAsset():
			nw.Assets = nw.Assets.Add(ab.Balance)
		case ab.Account.Type == Credit:
			nw.Liabilities = nw.Liabilities.Add(ab.Balance.Abs())
		}
	}
	nw.NetWorth = nw.Assets.Sub(nw.Liabilities)
	return nw
}

// HealthScore combines budget adherence (max 40), savings progress (max 30)
// and net worth sign (max 30) into an integer in [0,100].
func HealthScore(budgets []BudgetProgress, goals []GoalProgress, netWorth Money) int {
	score := 0.0

	if len(budgets) > 0 {
		over := 0
		for _, b := range budgets {
			if b.IsOverBudget {
				over++
			}
		}
		score += math.Max(0, float64(40-10*over))
	}

	if len(goals) > 0 {
		sum := 0.0
		for _, g := range goals {
			sum += g.ProgressPercent
		}
		score += math.Min(30, sum/float64(len(goals))*0.3)
	}

	switch {
	case netWorth.Cents > 0:
		score += 30
	case netWorth.Cents > -100000:
		score += 15
	}

	return int(math.Max(0, math.Min(100, score)))
}
