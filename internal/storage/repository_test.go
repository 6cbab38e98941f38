package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "finboard.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, id := range []string{"u1", "u2"} {
		if err := repo.UpsertUser(context.Background(), core.User{ID: id, Email: id + "@example.com"}); err != nil {
			t.Fatalf("UpsertUser(%s) error = %v", id, err)
		}
	}
	return repo
}

func mustAccount(t *testing.T, repo *Repository, userID, name string, typ core.AccountType) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{UserID: userID, Name: name, Type: typ, Currency: "USD"})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func mustCategory(t *testing.T, repo *Repository, name string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := repo.FindSystemCategory(context.Background(), name, typ)
	if err != nil {
		t.Fatalf("FindSystemCategory(%q) error = %v", name, err)
	}
	return c
}

func mustTx(t *testing.T, repo *Repository, tx core.Transaction) core.Transaction {
	t.Helper()
	if tx.UserID == "" {
		tx.UserID = "u1"
	}
	created, err := repo.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return created
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func ptr[T any](v T) *T { return &v }

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y IN (?, ?)`
	if got := rebind(SQLite, q); got != q {
		t.Errorf("rebind(sqlite) = %q, want unchanged", got)
	}
	want := `SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)`
	if got := rebind(Postgres, q); got != want {
		t.Errorf("rebind(postgres) = %q, want %q", got, want)
	}
}

func TestUpsertUser_KeepsKnownFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertUser(ctx, core.User{ID: "u1", FirstName: "Ada"}); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	u, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Email != "u1@example.com" || u.FirstName != "Ada" {
		t.Errorf("GetUser() = %+v, want email kept and first name set", u)
	}

	if _, err := repo.GetUser(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetUser(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestAccounts_TotalsAndSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	checking := mustAccount(t, repo, "u1", "Checking", core.Checking)
	day := core.NewDate(2024, 3, 1)
	mustTx(t, repo, core.Transaction{AccountID: checking.ID, Amount: cents(100000), Type: core.Income, Date: day})
	mustTx(t, repo, core.Transaction{AccountID: checking.ID, Amount: cents(25000), Type: core.Expense, Date: day})
	mustTx(t, repo, core.Transaction{AccountID: checking.ID, Amount: cents(99900), Type: core.Transfer, Date: day})

	income, expense, err := repo.AccountTotals(ctx, checking.ID)
	if err != nil {
		t.Fatalf("AccountTotals() error = %v", err)
	}
	if income.Cents != 100000 || expense.Cents != 25000 {
		t.Errorf("AccountTotals() = %v, %v; want 1000.00, 250.00", income, expense)
	}

	byUser, err := repo.AccountTotalsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("AccountTotalsByUser() error = %v", err)
	}
	if got := byUser[checking.ID]; got[0] != income || got[1] != expense {
		t.Errorf("AccountTotalsByUser()[%d] = %v, want [%v %v]", checking.ID, got, income, expense)
	}

	if err := repo.DeactivateAccount(ctx, "u1", checking.ID); err != nil {
		t.Fatalf("DeactivateAccount() error = %v", err)
	}
	if err := repo.DeactivateAccount(ctx, "u1", checking.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeactivateAccount() error = %v, want ErrNotFound", err)
	}

	active, err := repo.ListAccounts(ctx, "u1", true)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListAccounts(active) = %d accounts, want 0", len(active))
	}
	all, _ := repo.ListAccounts(ctx, "u1", false)
	if len(all) != 1 || all[0].IsActive {
		t.Errorf("ListAccounts(all) = %+v, want one inactive account", all)
	}

	// Transactions outlive the account.
	income, _, _ = repo.AccountTotals(ctx, checking.ID)
	if income.Cents != 100000 {
		t.Errorf("income after deactivation = %v, want 1000.00", income)
	}
}

func TestAccounts_Ownership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "u1", "Mine", core.Savings)

	if _, err := repo.GetAccount(ctx, "u2", a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetAccount(other user) error = %v, want ErrNotFound", err)
	}
	a.UserID = "u2"
	a.Name = "Stolen"
	if err := repo.UpdateAccount(ctx, a); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateAccount(other user) error = %v, want ErrNotFound", err)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	c, err := cache.New[[]core.Category](cache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	defer c.Close()
	repo.WithSystemCategoryCache(c)
	ctx := context.Background()

	system, err := repo.SystemCategories(ctx)
	if err != nil {
		t.Fatalf("SystemCategories() error = %v", err)
	}
	if len(system) != 16 {
		t.Fatalf("SystemCategories() = %d, want 16", len(system))
	}

	own, err := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Coffee Beans", Type: core.ExpenseCategory,
		Icon: core.DefaultCategoryIcon, Color: core.DefaultCategoryColor})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	expense, err := repo.ListCategories(ctx, "u1", core.ExpenseCategory)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(expense) != 12 || expense[0].ID != own.ID {
		t.Errorf("ListCategories(expense) = %d entries first %q, want 12 with own category first", len(expense), expense[0].Name)
	}
	other, _ := repo.ListCategories(ctx, "u2", "")
	if len(other) != 16 {
		t.Errorf("ListCategories(u2) = %d, want only the 16 system categories", len(other))
	}

	tests := []struct {
		fragment string
		typ      core.CategoryType
		want     string
		wantErr  error
	}{
		{"food", core.ExpenseCategory, "Food & Dining", nil},
		{"COFFEE", core.ExpenseCategory, "Coffee Beans", nil},
		{"salary", core.IncomeCategory, "Salary", nil},
		{"salary", core.ExpenseCategory, "", core.ErrNotFound},
		{"_", core.ExpenseCategory, "", core.ErrNotFound},
		{"%", core.ExpenseCategory, "", core.ErrNotFound},
		{"& din", core.ExpenseCategory, "Food & Dining", nil},
	}
	for _, tt := range tests {
		t.Run(tt.fragment+"/"+string(tt.typ), func(t *testing.T) {
			c, err := repo.FindCategory(ctx, "u1", tt.fragment, tt.typ)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindCategory() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindCategory() error = %v", err)
			}
			if c.Name != tt.want {
				t.Errorf("FindCategory() = %q, want %q", c.Name, tt.want)
			}
		})
	}

	food := mustCategory(t, repo, "Food & Dining", core.ExpenseCategory)
	food.UserID = "u1"
	food.Name = "Renamed"
	if err := repo.UpdateCategory(ctx, food); !errors.Is(err, core.ErrImmutableCategory) {
		t.Errorf("UpdateCategory(system) error = %v, want ErrImmutableCategory", err)
	}
	own.Name = "Tea"
	if err := repo.UpdateCategory(ctx, own); err != nil {
		t.Errorf("UpdateCategory(own) error = %v", err)
	}
}

func TestTransactions_ListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	acct := mustAccount(t, repo, "u1", "Checking", core.Checking)

	for i := 1; i <= 25; i++ {
		mustTx(t, repo, core.Transaction{AccountID: acct.ID, Amount: cents(int64(i * 100)), Type: core.Expense,
			Date: core.NewDate(2024, 1, i)})
	}
	mustTx(t, repo, core.Transaction{UserID: "u2", AccountID: mustAccount(t, repo, "u2", "X", core.Checking).ID,
		Amount: cents(1), Type: core.Expense, Date: core.NewDate(2024, 1, 1)})

	page, err := repo.ListTransactions(ctx, "u1", TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if page.Total != 25 || page.Pages != 2 || len(page.Items) != DefaultPerPage {
		t.Errorf("page 1 = total %d pages %d items %d, want 25/2/20", page.Total, page.Pages, len(page.Items))
	}
	if got := page.Items[0].Date.String(); got != "2024-01-25" {
		t.Errorf("first item date = %s, want newest 2024-01-25", got)
	}

	page, _ = repo.ListTransactions(ctx, "u1", TransactionFilter{Page: 2})
	if len(page.Items) != 5 {
		t.Errorf("page 2 items = %d, want 5", len(page.Items))
	}

	recent, err := repo.RecentTransactions(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("RecentTransactions() error = %v", err)
	}
	if len(recent) != 10 || recent[9].Date.String() != "2024-01-16" {
		t.Errorf("RecentTransactions() = %d items, last %s", len(recent), recent[len(recent)-1].Date)
	}
}

func TestTransactions_SameDateNewestCreatedFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	acct := mustAccount(t, repo, "u1", "Checking", core.Checking)
	day := core.NewDate(2024, 3, 10)

	created := []time.Time{
		time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	var txs []core.Transaction
	for i, at := range created {
		repo.now = func() time.Time { return at }
		txs = append(txs, mustTx(t, repo, core.Transaction{AccountID: acct.ID, Amount: cents(int64(100 * (i + 1))),
			Type: core.Expense, Date: day}))
	}
	later, earlier := txs[0], txs[1]
	if later.ID >= earlier.ID {
		t.Fatalf("ids = %d, %d, want the later-created row to have the lower id", later.ID, earlier.ID)
	}

	recent, err := repo.RecentTransactions(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("RecentTransactions() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != later.ID || recent[1].ID != earlier.ID {
		t.Errorf("RecentTransactions() order = %v, want [%d %d]", txIDs(recent), later.ID, earlier.ID)
	}

	page, err := repo.ListTransactions(ctx, "u1", TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != later.ID {
		t.Errorf("ListTransactions() order = %v, want %d first", txIDs(page.Items), later.ID)
	}
}

func txIDs(txs []core.Transaction) []int64 {
	ids := make([]int64, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}

func TestTransactions_UpdateDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	acct := mustAccount(t, repo, "u1", "Checking", core.Checking)
	food := mustCategory(t, repo, "Food & Dining", core.ExpenseCategory)

	tx := mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(food.ID), Amount: cents(1250),
		Type: core.Expense, Date: core.NewDate(2024, 3, 2), Description: "Lunch", PaymentMethod: core.Cash})
	if tx.CategoryID == nil || *tx.CategoryID != food.ID || tx.Description != "Lunch" {
		t.Fatalf("CreateTransaction() = %+v", tx)
	}

	tx.Amount = cents(1500)
	tx.CategoryID = nil
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	got, _ := repo.GetTransaction(ctx, "u1", tx.ID)
	if got.Amount.Cents != 1500 || got.CategoryID != nil {
		t.Errorf("after update = %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	if err := repo.DeleteTransaction(ctx, "u2", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction(other user) error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "u1", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestTransactions_Aggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	acct := mustAccount(t, repo, "u1", "Checking", core.Checking)
	food := mustCategory(t, repo, "Food & Dining", core.ExpenseCategory)
	travel := mustCategory(t, repo, "Travel", core.ExpenseCategory)
	salary := mustCategory(t, repo, "Salary", core.IncomeCategory)

	mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(food.ID), Amount: cents(3000), Type: core.Expense, Date: core.NewDate(2024, 3, 1)})
	mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(food.ID), Amount: cents(2000), Type: core.Expense, Date: core.NewDate(2024, 3, 31)})
	mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(food.ID), Amount: cents(9999), Type: core.Expense, Date: core.NewDate(2024, 4, 1)})
	mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(travel.ID), Amount: cents(40000), Type: core.Expense, Date: core.NewDate(2024, 3, 10)})
	mustTx(t, repo, core.Transaction{AccountID: acct.ID, Amount: cents(700), Type: core.Expense, Date: core.NewDate(2024, 3, 11)})
	mustTx(t, repo, core.Transaction{AccountID: acct.ID, CategoryID: ptr(salary.ID), Amount: cents(500000), Type: core.Income, Date: core.NewDate(2024, 2, 28)})

	march := core.Period{Year: 2024, Month: time.March}
	totals, err := repo.ExpenseTotalsByCategory(ctx, "u1", march)
	if err != nil {
		t.Fatalf("ExpenseTotalsByCategory() error = %v", err)
	}
	if totals[food.ID].Cents != 5000 || totals[travel.ID].Cents != 40000 || len(totals) != 2 {
		t.Errorf("ExpenseTotalsByCategory() = %v", totals)
	}

	spending, err := repo.CategorySpending(ctx, "u1", march)
	if err != nil {
		t.Fatalf("CategorySpending() error = %v", err)
	}
	if len(spending) != 2 {
		t.Fatalf("CategorySpending() = %d groups, want 2", len(spending))
	}
	for _, cs := range spending {
		if cs.CategoryID == travel.ID && (cs.Name != "Travel" || cs.Color != travel.Color || cs.Total.Cents != 40000) {
			t.Errorf("travel spending = %+v", cs)
		}
	}

	trend, err := repo.MonthlyTrend(ctx, "u1", core.NewDate(2024, 2, 1))
	if err != nil {
		t.Fatalf("MonthlyTrend() error = %v", err)
	}
	want := core.Trend{
		"2024-02": {Income: cents(500000)},
		"2024-03": {Expense: cents(45700)},
		"2024-04": {Expense: cents(9999)},
	}
	for k, v := range want {
		if trend[k] != v {
			t.Errorf("trend[%s] = %+v, want %+v", k, trend[k], v)
		}
	}
	if len(trend) != len(want) {
		t.Errorf("trend has %d months, want %d", len(trend), len(want))
	}
}

func TestBudgets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	food := mustCategory(t, repo, "Food & Dining", core.ExpenseCategory)

	b, err := repo.CreateBudget(ctx, core.Budget{UserID: "u1", CategoryID: food.ID, Amount: cents(40000),
		Period: core.MonthlyBudget, StartDate: core.NewDate(2024, 3, 1), EndDate: ptr(core.NewDate(2024, 12, 31))})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if !b.IsActive || b.EndDate == nil || b.EndDate.String() != "2024-12-31" {
		t.Errorf("CreateBudget() = %+v", b)
	}

	active, err := repo.ActiveBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveBudgets() error = %v", err)
	}
	if len(active) != 1 || active[0].CategoryName != "Food & Dining" || active[0].Amount.Cents != 40000 {
		t.Errorf("ActiveBudgets() = %+v", active)
	}

	if err := repo.DeactivateBudget(ctx, "u1", b.ID); err != nil {
		t.Fatalf("DeactivateBudget() error = %v", err)
	}
	active, _ = repo.ActiveBudgets(ctx, "u1")
	if len(active) != 0 {
		t.Errorf("ActiveBudgets() after deactivate = %d, want 0", len(active))
	}
}

func TestGoals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g, err := repo.CreateGoal(ctx, core.SavingsGoal{UserID: "u1", Name: "Trip", TargetAmount: cents(500000),
		CurrentAmount: cents(125000), TargetDate: ptr(core.NewDate(2024, 12, 1))})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	g.IsAchieved = true
	if err := repo.UpdateGoal(ctx, g); err != nil {
		t.Fatalf("UpdateGoal() error = %v", err)
	}
	pending, _ := repo.ListGoals(ctx, "u1", true)
	all, _ := repo.ListGoals(ctx, "u1", false)
	if len(pending) != 0 || len(all) != 1 {
		t.Errorf("ListGoals() pending=%d all=%d, want 0 and 1", len(pending), len(all))
	}
	if err := repo.DeleteGoal(ctx, "u1", g.ID); err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}
	if _, err := repo.GetGoal(ctx, "u1", g.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetGoal(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestBills_UpcomingAndPaid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mk := func(name string, due core.Date) core.Bill {
		b, err := repo.CreateBill(ctx, core.Bill{UserID: "u1", Name: name, Amount: cents(5000), DueDate: due, Frequency: core.Monthly})
		if err != nil {
			t.Fatalf("CreateBill() error = %v", err)
		}
		return b
	}
	overdue := mk("Overdue", core.NewDate(2024, 3, 1))
	soon := mk("Soon", core.NewDate(2024, 3, 20))
	mk("Later", core.NewDate(2024, 5, 1))

	upcoming, err := repo.UpcomingBills(ctx, "u1", core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("UpcomingBills() error = %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].ID != overdue.ID || upcoming[1].ID != soon.ID {
		t.Errorf("UpcomingBills() = %+v", upcoming)
	}

	if err := repo.MarkBillPaid(ctx, "u1", overdue.ID); err != nil {
		t.Fatalf("MarkBillPaid() error = %v", err)
	}
	if err := repo.MarkBillPaid(ctx, "u1", overdue.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second MarkBillPaid() error = %v, want ErrNotFound", err)
	}
	upcoming, _ = repo.UpcomingBills(ctx, "u1", core.NewDate(2024, 3, 31))
	if len(upcoming) != 1 || upcoming[0].ID != soon.ID {
		t.Errorf("UpcomingBills() after pay = %+v", upcoming)
	}
}
