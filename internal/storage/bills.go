package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

const billColumns = `id, user_id, name, amount_cents, due_date, frequency, category_id, is_paid, auto_pay, notes, created_at`

func scanBill(row interface{ Scan(...any) error }) (core.Bill, error) {
	var b core.Bill
	err := row.Scan(&b.ID, &b.UserID, &b.Name, moneyCol{&b.Amount}, dateCol{&b.DueDate}, &b.Frequency,
		nullIDCol{&b.CategoryID}, &b.IsPaid, &b.AutoPay, &b.Notes, timeCol{&b.CreatedAt})
	return b, err
}

func (r *Repository) scanBills(ctx context.Context, q string, args ...any) ([]core.Bill, error) {
	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := []core.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *Repository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	id, err := r.insert(ctx, `
		INSERT INTO bills (user_id, name, amount_cents, due_date, frequency, category_id, is_paid, auto_pay, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount.Cents, b.DueDate.String(), b.Frequency, nullableID(b.CategoryID),
		b.IsPaid, b.AutoPay, b.Notes, r.timestamp())
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	logWrite(ctx, "bill", id, b.UserID)
	return r.GetBill(ctx, b.UserID, id)
}

func (r *Repository) GetBill(ctx context.Context, userID string, id int64) (core.Bill, error) {
	b, err := scanBill(r.queryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %d: %w", id, notFound(err))
	}
	return b, nil
}

// ListBills returns all of the user's bills by due date.
func (r *Repository) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	bills, err := r.scanBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY due_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// UpcomingBills returns unpaid bills due on or before until, soonest first.
// Overdue bills are included.
func (r *Repository) UpcomingBills(ctx context.Context, userID string, until core.Date) ([]core.Bill, error) {
	bills, err := r.scanBills(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE user_id = ? AND is_paid = ? AND due_date <= ?
		ORDER BY due_date, id`, userID, false, until.String())
	if err != nil {
		return nil, fmt.Errorf("upcoming bills: %w", err)
	}
	return bills, nil
}

func (r *Repository) UpdateBill(ctx context.Context, b core.Bill) error {
	err := r.execOwned(ctx, `
		UPDATE bills SET name = ?, amount_cents = ?, due_date = ?, frequency = ?, category_id = ?,
			auto_pay = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount.Cents, b.DueDate.String(), b.Frequency, nullableID(b.CategoryID),
		b.AutoPay, b.Notes, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update bill %d: %w", b.ID, err)
	}
	return nil
}

// MarkBillPaid flags an unpaid bill as paid. Paying twice is ErrNotFound.
func (r *Repository) MarkBillPaid(ctx context.Context, userID string, id int64) error {
	err := r.execOwned(ctx, `
		UPDATE bills SET is_paid = ? WHERE id = ? AND user_id = ? AND is_paid = ?`,
		true, id, userID, false)
	if err != nil {
		return fmt.Errorf("mark bill %d paid: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteBill(ctx context.Context, userID string, id int64) error {
	if err := r.execOwned(ctx, `DELETE FROM bills WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	return nil
}
