package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

const goalColumns = `id, user_id, name, target_amount_cents, current_amount_cents, target_date, description, is_achieved, created_at`

func scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, moneyCol{&g.TargetAmount}, moneyCol{&g.CurrentAmount},
		nullDateCol{&g.TargetDate}, &g.Description, &g.IsAchieved, timeCol{&g.CreatedAt})
	return g, err
}

func (r *Repository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	id, err := r.insert(ctx, `
		INSERT INTO savings_goals (user_id, name, target_amount_cents, current_amount_cents, target_date,
			description, is_achieved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullableDate(g.TargetDate),
		g.Description, g.IsAchieved, r.timestamp())
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	logWrite(ctx, "savings_goal", id, g.UserID)
	return r.GetGoal(ctx, g.UserID, id)
}

func (r *Repository) GetGoal(ctx context.Context, userID string, id int64) (core.SavingsGoal, error) {
	g, err := scanGoal(r.queryRow(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get goal %d: %w", id, notFound(err))
	}
	return g, nil
}

// ListGoals returns the user's goals. With pendingOnly, achieved goals are skipped.
func (r *Repository) ListGoals(ctx context.Context, userID string, pendingOnly bool) ([]core.SavingsGoal, error) {
	q := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = ?`
	args := []any{userID}
	if pendingOnly {
		q += ` AND is_achieved = ?`
		args = append(args, false)
	}
	rows, err := r.query(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []core.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	err := r.execOwned(ctx, `
		UPDATE savings_goals SET name = ?, target_amount_cents = ?, current_amount_cents = ?,
			target_date = ?, description = ?, is_achieved = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullableDate(g.TargetDate),
		g.Description, g.IsAchieved, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID string, id int64) error {
	if err := r.execOwned(ctx, `DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	return nil
}
