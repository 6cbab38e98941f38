package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

const accountColumns = `id, user_id, name, account_type, currency, is_active, created_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &a.IsActive, timeCol{&a.CreatedAt})
	return a, err
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := r.timestamp()
	id, err := r.insert(ctx, `
		INSERT INTO accounts (user_id, name, account_type, currency, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.Currency, true, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	logWrite(ctx, "account", id, a.UserID)
	return r.GetAccount(ctx, a.UserID, id)
}

// GetAccount returns the account if it belongs to userID, active or not.
func (r *Repository) GetAccount(ctx context.Context, userID string, id int64) (core.Account, error) {
	a, err := scanAccount(r.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, notFound(err))
	}
	return a, nil
}

// ListAccounts returns the user's accounts in creation order.
func (r *Repository) ListAccounts(ctx context.Context, userID string, activeOnly bool) ([]core.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		q += ` AND is_active = ?`
		args = append(args, true)
	}
	rows, err := r.query(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	err := r.execOwned(ctx, `
		UPDATE accounts SET name = ?, account_type = ?, currency = ?
		WHERE id = ? AND user_id = ? AND is_active = ?`,
		a.Name, a.Type, a.Currency, a.ID, a.UserID, true)
	if err != nil {
		return fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return nil
}

// DeactivateAccount soft-deletes an account. Its transactions stay in the ledger.
func (r *Repository) DeactivateAccount(ctx context.Context, userID string, id int64) error {
	err := r.execOwned(ctx, `
		UPDATE accounts SET is_active = ? WHERE id = ? AND user_id = ? AND is_active = ?`,
		false, id, userID, true)
	if err != nil {
		return fmt.Errorf("deactivate account %d: %w", id, err)
	}
	return nil
}

// AccountTotals returns income and expense sums of one account.
// Transfers are not part of either sum.
func (r *Repository) AccountTotals(ctx context.Context, accountID int64) (income, expense core.Money, err error) {
	err = r.queryRow(ctx, `
		SELECT
			CAST(COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount_cents ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount_cents ELSE 0 END), 0) AS BIGINT)
		FROM transactions WHERE account_id = ?`,
		core.Income, core.Expense, accountID).
		Scan(moneyCol{&income}, moneyCol{&expense})
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("account totals %d: %w", accountID, err)
	}
	return income, expense, nil
}

// AccountTotalsByUser returns income and expense sums for every account of
// the user that has at least one transaction.
func (r *Repository) AccountTotalsByUser(ctx context.Context, userID string) (map[int64][2]core.Money, error) {
	rows, err := r.query(ctx, `
		SELECT t.account_id,
			CAST(COALESCE(SUM(CASE WHEN t.transaction_type = ? THEN t.amount_cents ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN t.transaction_type = ? THEN t.amount_cents ELSE 0 END), 0) AS BIGINT)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ?
		GROUP BY t.account_id`,
		core.Income, core.Expense, userID)
	if err != nil {
		return nil, fmt.Errorf("account totals for user: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64][2]core.Money)
	for rows.Next() {
		var (
			id              int64
			income, expense core.Money
		)
		if err := rows.Scan(&id, moneyCol{&income}, moneyCol{&expense}); err != nil {
			return nil, fmt.Errorf("scan account totals: %w", err)
		}
		totals[id] = [2]core.Money{income, expense}
	}
	return totals, rows.Err()
}
