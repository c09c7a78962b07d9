package app

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type BudgetErrorCode string

const (
	ErrCodeNotFound           BudgetErrorCode = "NOT_FOUND"
	ErrCodeInvalidState       BudgetErrorCode = "INVALID_STATE"
	ErrCodeInsufficientBudget BudgetErrorCode = "INSUFFICIENT_BUDGET"
	ErrCodeInconsistentData   BudgetErrorCode = "INCONSISTENT_DATA"
	ErrCodePartialFailure     BudgetErrorCode = "PARTIAL_FAILURE"
	ErrCodeConflict           BudgetErrorCode = "CONFLICT"
	ErrCodeInvalidInput       BudgetErrorCode = "INVALID_INPUT"
)

// BudgetError is the error type returned by every use case. Requested and
// Available are set for INSUFFICIENT_BUDGET.
type BudgetError struct {
	Code      BudgetErrorCode
	Message   string
	Requested *decimal.Decimal
	Available *decimal.Decimal
	Err       error
}

func (e *BudgetError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *BudgetError) Unwrap() error {
	return e.Err
}

// ErrorCodeOf returns the code of the first BudgetError in err's chain, or
// "" when there is none.
func ErrorCodeOf(err error) BudgetErrorCode {
	var be *BudgetError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code BudgetErrorCode) bool {
	return err != nil && ErrorCodeOf(err) == code
}

func NotFound(format string, args ...any) *BudgetError {
	return &BudgetError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *BudgetError {
	return &BudgetError{Code: ErrCodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *BudgetError {
	return &BudgetError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func InconsistentData(format string, args ...any) *BudgetError {
	return &BudgetError{Code: ErrCodeInconsistentData, Message: fmt.Sprintf(format, args...)}
}

// Conflict wraps a lost optimistic write that exhausted its retries.
func Conflict(err error, format string, args ...any) *BudgetError {
	return &BudgetError{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...), Err: err}
}

// InsufficientBudget reports both figures so the caller can shrink the
// request instead of resubmitting it unchanged.
func InsufficientBudget(what string, requested, available decimal.Decimal) *BudgetError {
	return &BudgetError{
		Code: ErrCodeInsufficientBudget,
		Message: fmt.Sprintf("%s: requested %s, available %s",
			what, requested.StringFixed(2), available.StringFixed(2)),
		Requested: &requested,
		Available: &available,
	}
}
