package domain

import "errors"

// Domain errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrCustomerNotFound    = errors.New("customer not found")

	ErrInvalidTerms     = errors.New("invalid loan terms")
	ErrInvalidAmount    = errors.New("payment amount must be positive")
	ErrInvalidMode      = errors.New("payment mode is required")
	ErrInvalidSurcharge = errors.New("overdue surcharge must not be negative")

	ErrConcurrentModification = errors.New("record was modified concurrently, reload and retry")

	ErrLoanNumberEmpty   = errors.New("loan number is required")
	ErrLoanNumberTaken   = errors.New("loan number is already in use")
	ErrLoanNotActive     = errors.New("loan is not active")
	ErrLoanNotSettled    = errors.New("loan has unsettled installments")
	ErrCustomerNameEmpty = errors.New("customer name is required")
)

// Validation constants
const (
	MaxLoanNumberLength   = 50
	MaxRemarksLength      = 500
	MaxCustomerNameLength = 200
)
