package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Derived views. Recomputed on read, never persisted.

// LoanSummary rolls per-installment state up to the loan level. Status and
// NextDueDate come from the earliest-due installment not yet fully paid
// (tie broken by lowest installment number); an all-paid loan reports no
// next due date.
type LoanSummary struct {
	LoanID          int32             `json:"loanId"`
	LoanNumber      string            `json:"loanNumber"`
	TotalEMIs       int               `json:"totalEmis"`
	PaidEMIs        int               `json:"paidEmis"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	AmountPaid      decimal.Decimal   `json:"amountPaid"`
	NextDueDate     *time.Time        `json:"nextDueDate,omitempty"`
	LastPaymentDate *time.Time        `json:"lastPaymentDate,omitempty"`
	Status          InstallmentStatus `json:"status"`
}

// AmortizationLine is one row of the contractual declining-balance
// decomposition. Computed from scheduled amounts, not the cash ledger.
type AmortizationLine struct {
	Number    int32           `json:"number"`
	DueDate   time.Time       `json:"dueDate"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// ForeclosureQuote is the payoff-today amount for early closure.
type ForeclosureQuote struct {
	LoanID              int32           `json:"loanId"`
	AsOf                time.Time       `json:"asOf"`
	ElapsedInstallments int             `json:"elapsedInstallments"`
	RemainingPrincipal  decimal.Decimal `json:"remainingPrincipal"`
	ForeclosureAmount   decimal.Decimal `json:"foreclosureAmount"`
}

// CollectionsRow is one follow-up queue entry with contact fan-out.
type CollectionsRow struct {
	LoanID          int32             `json:"loanId"`
	LoanNumber      string            `json:"loanNumber"`
	CustomerName    string            `json:"customerName"`
	Mobile          string            `json:"mobile"`
	GuarantorName   *string           `json:"guarantorName,omitempty"`
	GuarantorMobile *string           `json:"guarantorMobile,omitempty"`
	UnpaidMonths    int               `json:"unpaidMonths"`
	TotalDueAmount  decimal.Decimal   `json:"totalDueAmount"`
	NextDueDate     *time.Time        `json:"nextDueDate,omitempty"`
	Status          InstallmentStatus `json:"status"`
	IsSeized        bool              `json:"isSeized"`
}
