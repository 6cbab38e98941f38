package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

const budgetColumns = `b.id, b.user_id, b.category_id, b.amount_cents, b.period, b.start_date, b.end_date, b.is_active, b.created_at`

func scanBudget(row interface{ Scan(...any) error }, extra ...any) (core.Budget, error) {
	var b core.Budget
	dest := []any{&b.ID, &b.UserID, &b.CategoryID, moneyCol{&b.Amount}, &b.Period,
		dateCol{&b.StartDate}, nullDateCol{&b.EndDate}, &b.IsActive, timeCol{&b.CreatedAt}}
	err := row.Scan(append(dest, extra...)...)
	return b, err
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	id, err := r.insert(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents, period, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Cents, b.Period, b.StartDate.String(), nullableDate(b.EndDate),
		true, r.timestamp())
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	logWrite(ctx, "budget", id, b.UserID)
	return r.GetBudget(ctx, b.UserID, id)
}

func (r *Repository) GetBudget(ctx context.Context, userID string, id int64) (core.Budget, error) {
	b, err := scanBudget(r.queryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets b WHERE b.id = ? AND b.user_id = ?`, id, userID))
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, notFound(err))
	}
	return b, nil
}

// NamedBudget is an active budget with its category's display name.
type NamedBudget struct {
	core.Budget
	CategoryName string
}

// ActiveBudgets returns the user's active budgets in creation order, each
// joined with its category name in the same query.
func (r *Repository) ActiveBudgets(ctx context.Context, userID string) ([]NamedBudget, error) {
	rows, err := r.query(ctx, `
		SELECT `+budgetColumns+`, c.name
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = ? AND b.is_active = ?
		ORDER BY b.id`, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}
	defer rows.Close()

	out := []NamedBudget{}
	for rows.Next() {
		var nb NamedBudget
		b, err := scanBudget(rows, &nb.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		nb.Budget = b
		out = append(out, nb)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	err := r.execOwned(ctx, `
		UPDATE budgets SET category_id = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ?
		WHERE id = ? AND user_id = ? AND is_active = ?`,
		b.CategoryID, b.Amount.Cents, b.Period, b.StartDate.String(), nullableDate(b.EndDate),
		b.ID, b.UserID, true)
	if err != nil {
		return fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	return nil
}

// DeactivateBudget soft-deletes a budget so it drops out of evaluation.
func (r *Repository) DeactivateBudget(ctx context.Context, userID string, id int64) error {
	err := r.execOwned(ctx, `
		UPDATE budgets SET is_active = ? WHERE id = ? AND user_id = ? AND is_active = ?`,
		false, id, userID, true)
	if err != nil {
		return fmt.Errorf("deactivate budget %d: %w", id, err)
	}
	return nil
}
