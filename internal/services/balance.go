package services

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

// AccountBalance derives the balance of one account from its ledger:
// income minus expense. Transfers are not counted on either side.
func AccountBalance(ctx context.Context, store Store, accountID int64) (core.Money, error) {
	income, expense, err := store.AccountTotals(ctx, accountID)
	if err != nil {
		return core.Money{}, fmt.Errorf("account balance: %w", err)
	}
	return income.Sub(expense), nil
}

// AccountBalances returns every account of the user with its derived
// balance, using one grouped query instead of one query per account.
func AccountBalances(ctx context.Context, store Store, userID string, activeOnly bool) ([]core.AccountBalance, error) {
	accounts, err := store.ListAccounts(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	totals, err := store.AccountTotalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]core.AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		t := totals[a.ID]
		out = append(out, core.AccountBalance{Account: a, Balance: t[0].Sub(t[1])})
	}
	return out, nil
}

// TotalBalance is the dashboard headline: asset balances minus the
// absolute value of credit balances.
func TotalBalance(balances []core.AccountBalance) core.Money {
	return core.ComputeNetWorth(balances).NetWorth
}
