package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(NewDate(2025, 3, 9)) {
		t.Fatalf("got %v", d)
	}
	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPeriodBounds(t *testing.T) {
	p := Period{Year: 2024, Month: time.December}
	if got := p.Start().String(); got != "2024-12-01" {
		t.Fatalf("Start = %s", got)
	}
	if got := p.End().String(); got != "2025-01-01" {
		t.Fatalf("End = %s", got)
	}
	if !p.Contains(NewDate(2024, 12, 31)) || p.Contains(NewDate(2025, 1, 1)) {
		t.Fatalf("Contains bounds wrong")
	}
	if p.String() != "2024-12" {
		t.Fatalf("String = %s", p.String())
	}
	if err := (Period{Year: 2024, Month: 13}).Validate(); err == nil {
		t.Fatalf("expected month validation error")
	}
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2025, 1, 1)
	if got := today.DaysUntil(NewDate(2025, 1, 31)); got != 30 {
		t.Fatalf("DaysUntil = %d", got)
	}
	if got := today.DaysUntil(NewDate(2024, 12, 25)); got != -7 {
		t.Fatalf("DaysUntil past = %d", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		AccountID:     1,
		Amount:        Money{Cents: 100},
		Type:          Expense,
		Date:          NewDate(2025, 1, 1),
		Description:   "lunch",
		PaymentMethod: Cash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"missing account", func(tx *Transaction) { tx.AccountID = 0 }, ErrMissingAccount},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "refund" }, ErrInvalidTransactionType},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
		{"bad payment method", func(tx *Transaction) { tx.PaymentMethod = "bitcoin" }, ErrInvalidPaymentMethod},
		{"long notes", func(tx *Transaction) { tx.Notes = strings.Repeat("x", 501) }, ErrNotesTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected error to wrap ErrValidation")
			}
		})
	}
}

func TestAccountNormalizeAndValidate(t *testing.T) {
	a := Account{Name: "  Main  ", Type: Checking}
	a.Normalize()
	if a.Name != "Main" || a.Currency != "USD" {
		t.Fatalf("normalize: %+v", a)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	a.Type = "brokerage"
	if !errors.Is(a.Validate(), ErrInvalidAccountType) {
		t.Fatalf("expected invalid account type")
	}
}

func TestCategoryValidateParent(t *testing.T) {
	parentID := int64(1)
	top := Category{ID: 1, Name: "Food", Type: ExpenseCategory}
	nested := Category{ID: 2, Name: "Groceries", Type: ExpenseCategory, ParentID: &parentID}

	child := Category{Name: "Snacks", Type: ExpenseCategory}
	child.Normalize()
	if err := child.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := child.ValidateParent(top); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !errors.Is(child.ValidateParent(nested), ErrNestedTooDeep) {
		t.Fatalf("expected nesting error")
	}
	income := Category{ID: 3, Name: "Salary", Type: IncomeCategory}
	if !errors.Is(child.ValidateParent(income), ErrCategoryTypeMismatch) {
		t.Fatalf("expected type mismatch")
	}
	child.Color = "red"
	if !errors.Is(child.Validate(), ErrInvalidColor) {
		t.Fatalf("expected color error")
	}
}

func TestBudgetValidate(t *testing.T) {
	end := NewDate(2024, 12, 31)
	b := Budget{CategoryID: 1, Amount: Money{Cents: 20000}, StartDate: NewDate(2025, 1, 1), EndDate: &end}
	b.Normalize()
	if b.Period != MonthlyBudget {
		t.Fatalf("expected default period")
	}
	if !errors.Is(b.Validate(), ErrEndBeforeStart) {
		t.Fatalf("expected end-before-start error")
	}
	b.EndDate = nil
	if err := b.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestGoalAndBillValidate(t *testing.T) {
	g := SavingsGoal{Name: "Trip", TargetAmount: Money{Cents: 500000}}
	if err := g.Validate(); err != nil {
		t.Fatalf("goal: %v", err)
	}
	g.CurrentAmount = Money{Cents: -1}
	if !errors.Is(g.Validate(), ErrNegativeAmount) {
		t.Fatalf("expected negative amount error")
	}

	b := Bill{Name: "Rent", Amount: Money{Cents: 120000}, DueDate: NewDate(2025, 2, 1)}
	b.Normalize()
	if b.Frequency != Monthly {
		t.Fatalf("expected default frequency")
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("bill: %v", err)
	}
	b.Frequency = "daily"
	if !errors.Is(b.Validate(), ErrInvalidFrequency) {
		t.Fatalf("expected frequency error")
	}
}
