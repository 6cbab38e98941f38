package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type (
	AccountType     string
	CategoryType    string
	TransactionType string
	PaymentMethod   string
	BudgetPeriod    string
	BillFrequency   string
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
)

const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Cash         PaymentMethod = "cash"
	CreditCard   PaymentMethod = "credit_card"
	DebitCard    PaymentMethod = "debit_card"
	BankTransfer PaymentMethod = "bank_transfer"
	Check        PaymentMethod = "check"
	VoiceInput   PaymentMethod = "voice_input"
)

const (
	MonthlyBudget BudgetPeriod = "monthly"
	YearlyBudget  BudgetPeriod = "yearly"
)

const (
	Monthly BillFrequency = "monthly"
	Weekly  BillFrequency = "weekly"
	Yearly  BillFrequency = "yearly"
	OneTime BillFrequency = "one-time"
)

const (
	DefaultCurrency      = "USD"
	DefaultCategoryIcon  = "fas fa-tag"
	DefaultCategoryColor = "#6c757d"
)

func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, Credit, Investment:
		return true
	}
	return false
}

// CountsAsAsset reports whether balances of this type add to assets in net worth.
func (t AccountType) CountsAsAsset() bool {
	return t == Checking || t == Savings || t == Investment
}

func (t CategoryType) IsValid() bool {
	return t == IncomeCategory || t == ExpenseCategory
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case "", Cash, CreditCard, DebitCard, BankTransfer, Check, VoiceInput:
		return true
	}
	return false
}

func (p BudgetPeriod) IsValid() bool {
	return p == MonthlyBudget || p == YearlyBudget
}

func (f BillFrequency) IsValid() bool {
	switch f {
	case Monthly, Weekly, Yearly, OneTime:
		return true
	}
	return false
}

type (
	User struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Account struct {
		ID        int64       `json:"id"`
		UserID    string      `json:"-"`
		Name      string      `json:"name"`
		Type      AccountType `json:"account_type"`
		Currency  string      `json:"currency"`
		IsActive  bool        `json:"is_active"`
		CreatedAt time.Time   `json:"created_at"`
	}

	// Category is owned by a user, or shared when IsSystem is set (UserID empty).
	Category struct {
		ID       int64        `json:"id"`
		UserID   string       `json:"-"`
		Name     string       `json:"name"`
		Type     CategoryType `json:"type"`
		Icon     string       `json:"icon"`
		Color    string       `json:"color"`
		ParentID *int64       `json:"parent_category_id,omitempty"`
		IsSystem bool         `json:"is_system"`
	}

	// Transaction amounts are always positive; Type carries the sign.
	Transaction struct {
		ID            int64           `json:"id"`
		UserID        string          `json:"-"`
		AccountID     int64           `json:"account_id"`
		CategoryID    *int64          `json:"category_id,omitempty"`
		Amount        Money           `json:"amount"`
		Description   string          `json:"description"`
		Type          TransactionType `json:"transaction_type"`
		Date          Date            `json:"transaction_date"`
		PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
		Tags          string          `json:"tags,omitempty"`
		Notes         string          `json:"notes,omitempty"`
		IsRecurring   bool            `json:"is_recurring"`
		CreatedAt     time.Time       `json:"created_at"`
		UpdatedAt     time.Time       `json:"updated_at"`
	}

	Budget struct {
		ID         int64        `json:"id"`
		UserID     string       `json:"-"`
		CategoryID int64        `json:"category_id"`
		Amount     Money        `json:"amount"`
		Period     BudgetPeriod `json:"period"`
		StartDate  Date         `json:"start_date"`
		EndDate    *Date        `json:"end_date,omitempty"`
		IsActive   bool         `json:"is_active"`
		CreatedAt  time.Time    `json:"created_at"`
	}

	// SavingsGoal progress is tracked manually through CurrentAmount.
	SavingsGoal struct {
		ID            int64     `json:"id"`
		UserID        string    `json:"-"`
		Name          string    `json:"name"`
		TargetAmount  Money     `json:"target_amount"`
		CurrentAmount Money     `json:"current_amount"`
		TargetDate    *Date     `json:"target_date,omitempty"`
		Description   string    `json:"description,omitempty"`
		IsAchieved    bool      `json:"is_achieved"`
		CreatedAt     time.Time `json:"created_at"`
	}

	Bill struct {
		ID         int64         `json:"id"`
		UserID     string        `json:"-"`
		Name       string        `json:"name"`
		Amount     Money         `json:"amount"`
		DueDate    Date          `json:"due_date"`
		Frequency  BillFrequency `json:"frequency"`
		CategoryID *int64        `json:"category_id,omitempty"`
		IsPaid     bool          `json:"is_paid"`
		AutoPay    bool          `json:"auto_pay"`
		Notes      string        `json:"notes,omitempty"`
		CreatedAt  time.Time     `json:"created_at"`
	}
)

var (
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

func validateName(name string, max int) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > max {
		return ErrNameTooLong
	}
	return nil
}

// Normalize trims free-text fields and fills defaults.
func (a *Account) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
}

func (a Account) Validate() error {
	if err := validateName(a.Name, 100); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	if !currencyPattern.MatchString(a.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.Color = strings.TrimSpace(c.Color)
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

func (c Category) Validate() error {
	if err := validateName(c.Name, 50); err != nil {
		return err
	}
	if !c.Type.IsValid() {
		return ErrInvalidCategoryType
	}
	if !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if len(c.Icon) > 50 {
		return ErrNameTooLong
	}
	return nil
}

// ValidateParent checks the one-level nesting rule against the chosen parent.
func (c Category) ValidateParent(parent Category) error {
	if parent.ParentID != nil {
		return ErrNestedTooDeep
	}
	if parent.Type != c.Type {
		return ErrCategoryTypeMismatch
	}
	return nil
}

func (t *Transaction) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	t.Notes = strings.TrimSpace(t.Notes)
	t.Tags = strings.TrimSpace(t.Tags)
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrMissingAccount
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if !t.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if utf8.RuneCountInString(t.Tags) > 200 {
		return ErrTagsTooLong
	}
	if utf8.RuneCountInString(t.Notes) > 500 {
		return ErrNotesTooLong
	}
	return nil
}

func (b *Budget) Normalize() {
	if b.Period == "" {
		b.Period = MonthlyBudget
	}
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.IsValid() {
		return ErrInvalidBudgetPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (g *SavingsGoal) Normalize() {
	g.Name = strings.TrimSpace(g.Name)
	g.Description = strings.TrimSpace(g.Description)
}

func (g SavingsGoal) Validate() error {
	if err := validateName(g.Name, 100); err != nil {
		return err
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if utf8.RuneCountInString(g.Description) > 500 {
		return ErrNotesTooLong
	}
	return nil
}

func (b *Bill) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Notes = strings.TrimSpace(b.Notes)
	if b.Frequency == "" {
		b.Frequency = Monthly
	}
}

func (b Bill) Validate() error {
	if err := validateName(b.Name, 100); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.DueDate.Validate(); err != nil {
		return err
	}
	if !b.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if utf8.RuneCountInString(b.Notes) > 500 {
		return ErrNotesTooLong
	}
	return nil
}
