package services

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

// EvaluateBudgets computes progress for every active budget of the user
// against the expenses of one calendar month. The budget's own start and
// end dates do not narrow the window.
func EvaluateBudgets(ctx context.Context, store Store, userID string, period core.Period) ([]core.BudgetProgress, error) {
	budgets, err := store.ActiveBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("evaluate budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []core.BudgetProgress{}, nil
	}

	spent, err := store.ExpenseTotalsByCategory(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("evaluate budgets: %w", err)
	}

	progress := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		progress = append(progress, core.NewBudgetProgress(b.Budget, b.CategoryName, spent[b.CategoryID]))
	}
	return progress, nil
}
