package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus is derived from stored facts plus "today"; it is never
// persisted.
type InstallmentStatus string

const (
	StatusPending       InstallmentStatus = "pending"
	StatusPartiallyPaid InstallmentStatus = "partially_paid"
	StatusPaid          InstallmentStatus = "paid"
	StatusOverdue       InstallmentStatus = "overdue"
)

// PaymentEvent is the atomic unit of the ledger. Immutable once appended;
// corrections are additive.
type PaymentEvent struct {
	ID         uuid.UUID       `json:"id"`
	Date       time.Time       `json:"date"`
	Mode       string          `json:"mode"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedBy string          `json:"recordedBy"`
}

// Installment is one scheduled repayment of a loan, ordered by Number.
// AmountPaid always equals the sum of Events amounts. Version guards
// against lost updates from concurrent operators.
type Installment struct {
	ID               int32           `json:"id"`
	LoanID           int32           `json:"loanId"`
	Number           int32           `json:"number"`
	DueDate          time.Time       `json:"dueDate"`
	ScheduledAmount  decimal.Decimal `json:"scheduledAmount"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	Events           []PaymentEvent  `json:"events"`
	OverdueSurcharge decimal.Decimal `json:"overdueSurcharge"`
	Remarks          *string         `json:"remarks,omitempty"`
	UpdatedBy        string          `json:"updatedBy"`
	Version          int32           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Status derives the installment state as of the given day. Overdue overlays
// Pending and PartiallyPaid once the due date has passed without full
// settlement, so an installment can change state purely by clock advance.
func (i *Installment) Status(today time.Time) InstallmentStatus {
	if i.AmountPaid.GreaterThanOrEqual(i.ScheduledAmount) {
		return StatusPaid
	}
	if i.DueDate.Before(today) {
		return StatusOverdue
	}
	if i.AmountPaid.GreaterThan(decimal.Zero) {
		return StatusPartiallyPaid
	}
	return StatusPending
}

// Outstanding returns scheduled minus paid, clamped at zero for
// over-collected installments.
func (i *Installment) Outstanding() decimal.Decimal {
	due := i.ScheduledAmount.Sub(i.AmountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// EventTotal sums the payment event amounts.
func (i *Installment) EventTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range i.Events {
		total = total.Add(e.Amount)
	}
	return total
}

// HasPayments reports whether any payment event has been recorded.
func (i *Installment) HasPayments() bool {
	return len(i.Events) > 0
}

// LastEventDate returns the latest event date, or nil when no payments exist.
func (i *Installment) LastEventDate() *time.Time {
	var last *time.Time
	for idx := range i.Events {
		d := i.Events[idx].Date
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return last
}

type InstallmentRepository interface {
	CreateBatchTx(tx any, installments []*Installment) error
	GetByID(id int32) (*Installment, error)
	// GetByLoanID returns installments ordered by Number ascending.
	GetByLoanID(loanID int32) ([]*Installment, error)
	// Update persists the installment as one atomic row write guarded by the
	// version column; a stale version yields ErrConcurrentModification.
	Update(installment *Installment) (*Installment, error)
	// DeleteWithoutPaymentsTx removes every installment of the loan that has
	// no payment events; used by schedule regeneration.
	DeleteWithoutPaymentsTx(tx any, loanID int32) error
}
