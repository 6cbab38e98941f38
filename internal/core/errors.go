package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every input validation error.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an entity does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrImmutableCategory is returned on attempts to modify a system category.
	ErrImmutableCategory = errors.New("system categories cannot be modified")
)

var (
	ErrInvalidAmount          = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidMonth           = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrInvalidYear            = fmt.Errorf("%w: invalid year", ErrValidation)
	ErrEmptyName              = fmt.Errorf("%w: empty name", ErrValidation)
	ErrNameTooLong            = fmt.Errorf("%w: name too long", ErrValidation)
	ErrDescriptionTooLong     = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrNotesTooLong           = fmt.Errorf("%w: notes too long (max 500 characters)", ErrValidation)
	ErrTagsTooLong            = fmt.Errorf("%w: tags too long (max 200 characters)", ErrValidation)
	ErrInvalidAccountType     = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidCategoryType    = fmt.Errorf("%w: invalid category type", ErrValidation)
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidPaymentMethod   = fmt.Errorf("%w: invalid payment method", ErrValidation)
	ErrInvalidBudgetPeriod    = fmt.Errorf("%w: invalid budget period", ErrValidation)
	ErrInvalidFrequency       = fmt.Errorf("%w: invalid bill frequency", ErrValidation)
	ErrInvalidCurrency        = fmt.Errorf("%w: invalid currency", ErrValidation)
	ErrInvalidColor           = fmt.Errorf("%w: invalid color", ErrValidation)
	ErrEndBeforeStart         = fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	ErrMissingAccount         = fmt.Errorf("%w: account is required", ErrValidation)
	ErrMissingCategory        = fmt.Errorf("%w: category is required", ErrValidation)
	ErrCategoryTypeMismatch   = fmt.Errorf("%w: category type does not match", ErrValidation)
	ErrNestedTooDeep          = fmt.Errorf("%w: parent category must be a top-level category", ErrValidation)
	ErrNegativeAmount         = fmt.Errorf("%w: amount cannot be negative", ErrValidation)
)
