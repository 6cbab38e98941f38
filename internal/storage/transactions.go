package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

// DefaultPerPage is the transaction listing page size.
const DefaultPerPage = 20

const transactionColumns = `id, user_id, account_id, category_id, amount_cents, description,
	transaction_date, transaction_type, payment_method, tags, notes, is_recurring, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, nullIDCol{&t.CategoryID}, moneyCol{&t.Amount}, &t.Description,
		dateCol{&t.Date}, &t.Type, &t.PaymentMethod, &t.Tags, &t.Notes, &t.IsRecurring,
		timeCol{&t.CreatedAt}, timeCol{&t.UpdatedAt})
	return t, err
}

func (r *Repository) scanTransactions(ctx context.Context, q string, args ...any) ([]core.Transaction, error) {
	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.timestamp()
	id, err := r.insert(ctx, `
		INSERT INTO transactions (user_id, account_id, category_id, amount_cents, description,
			transaction_date, transaction_type, payment_method, tags, notes, is_recurring, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, nullableID(t.CategoryID), t.Amount.Cents, t.Description,
		t.Date.String(), t.Type, t.PaymentMethod, t.Tags, t.Notes, t.IsRecurring, now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	logWrite(ctx, "transaction", id, t.UserID)
	return r.GetTransaction(ctx, t.UserID, id)
}

func (r *Repository) GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.queryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, notFound(err))
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	err := r.execOwned(ctx, `
		UPDATE transactions SET account_id = ?, category_id = ?, amount_cents = ?, description = ?,
			transaction_date = ?, transaction_type = ?, payment_method = ?, tags = ?, notes = ?,
			is_recurring = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.AccountID, nullableID(t.CategoryID), t.Amount.Cents, t.Description,
		t.Date.String(), t.Type, t.PaymentMethod, t.Tags, t.Notes,
		t.IsRecurring, r.timestamp(), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTransaction removes the row for good.
func (r *Repository) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	if err := r.execOwned(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	AccountID  int64
	CategoryID int64
	Type       core.TransactionType
	Page       int
	PerPage    int
}

type TransactionPage struct {
	Items   []core.Transaction `json:"items"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Pages   int                `json:"pages"`
}

// ListTransactions returns one page of the user's transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) (TransactionPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}

	where := ` WHERE user_id = ?`
	args := []any{userID}
	if f.AccountID > 0 {
		where += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.CategoryID > 0 {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where += ` AND transaction_type = ?`
		args = append(args, f.Type)
	}

	page := TransactionPage{Page: f.Page, PerPage: f.PerPage}
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&page.Total); err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}
	page.Pages = (page.Total + f.PerPage - 1) / f.PerPage

	items, err := r.scanTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions`+where+
			` ORDER BY transaction_date DESC, created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, f.PerPage, (f.Page-1)*f.PerPage)...)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	page.Items = items
	return page, nil
}

// RecentTransactions returns the latest transactions by date, then creation time.
func (r *Repository) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	txs, err := r.scanTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ?
		ORDER BY transaction_date DESC, created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txs, nil
}

// ExpenseTotalsByCategory sums the user's expenses per category over one
// calendar month. Uncategorized expenses are skipped.
func (r *Repository) ExpenseTotalsByCategory(ctx context.Context, userID string, p core.Period) (map[int64]core.Money, error) {
	rows, err := r.query(ctx, `
		SELECT category_id, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE user_id = ? AND transaction_type = ? AND category_id IS NOT NULL
			AND transaction_date >= ? AND transaction_date < ?
		GROUP BY category_id`,
		userID, core.Expense, p.Start().String(), p.End().String())
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]core.Money)
	for rows.Next() {
		var (
			id    int64
			total core.Money
		)
		if err := rows.Scan(&id, moneyCol{&total}); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		totals[id] = total
	}
	return totals, rows.Err()
}

// CategorySpending groups one month of expenses by category with display data.
func (r *Repository) CategorySpending(ctx context.Context, userID string, p core.Period) ([]core.CategorySpending, error) {
	rows, err := r.query(ctx, `
		SELECT c.id, c.name, c.color, CAST(COALESCE(SUM(t.amount_cents), 0) AS BIGINT)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.transaction_type = ?
			AND t.transaction_date >= ? AND t.transaction_date < ?
		GROUP BY c.id, c.name, c.color`,
		userID, core.Expense, p.Start().String(), p.End().String())
	if err != nil {
		return nil, fmt.Errorf("category spending: %w", err)
	}
	defer rows.Close()

	out := []core.CategorySpending{}
	for rows.Next() {
		var cs core.CategorySpending
		if err := rows.Scan(&cs.CategoryID, &cs.Name, &cs.Color, moneyCol{&cs.Total}); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// MonthlyTrend sums income and expense per YYYY-MM from since onwards.
func (r *Repository) MonthlyTrend(ctx context.Context, userID string, since core.Date) (core.Trend, error) {
	key := r.monthKey("transaction_date")
	rows, err := r.query(ctx, `
		SELECT `+key+` AS month, transaction_type, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ? AND transaction_type IN (?, ?)
		GROUP BY `+key+`, transaction_type`,
		userID, since.String(), core.Income, core.Expense)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	trend := core.Trend{}
	for rows.Next() {
		var (
			month string
			typ   core.TransactionType
			total core.Money
		)
		if err := rows.Scan(&month, &typ, moneyCol{&total}); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		entry := trend[month]
		if typ == core.Income {
			entry.Income = total
		} else {
			entry.Expense = total
		}
		trend[month] = entry
	}
	return trend, rows.Err()
}
