package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan lifecycle states
const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
	LoanStatusSold   = "sold"
)

var twelve = decimal.NewFromInt(12)
var hundred = decimal.NewFromInt(100)

// Loan is one credit agreement. Aggregates (paid counts, next due date,
// representative status) are never stored here; they are derived on read
// from the installment set.
type Loan struct {
	ID                   int32           `json:"id"`
	LoanNumber           string          `json:"loanNumber"`
	CustomerID           int32           `json:"customerId"`
	Principal            decimal.Decimal `json:"principal"`
	AnnualRatePercent    decimal.Decimal `json:"annualRatePercent"`
	TenureMonths         int32           `json:"tenureMonths"`
	DisbursementDate     time.Time       `json:"disbursementDate"`
	EMIStartDate         time.Time       `json:"emiStartDate"`
	EMIAmount            decimal.Decimal `json:"emiAmount"`
	ProcessingFeePercent decimal.Decimal `json:"processingFeePercent"`
	ProcessingFeeAmount  decimal.Decimal `json:"processingFeeAmount"`
	ClientResponse       *string         `json:"clientResponse,omitempty"`
	IsSeized             bool            `json:"isSeized"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ValidateTerms checks the amortization inputs.
func (l *Loan) ValidateTerms() error {
	if l.LoanNumber == "" {
		return ErrLoanNumberEmpty
	}
	if len(l.LoanNumber) > MaxLoanNumberLength {
		return ErrLoanNumberEmpty
	}
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTerms
	}
	if l.TenureMonths < 1 {
		return ErrInvalidTerms
	}
	if l.AnnualRatePercent.IsNegative() {
		return ErrInvalidTerms
	}
	return nil
}

// MonthlyRate returns the periodic rate r = R / 12 / 100.
func (l *Loan) MonthlyRate() decimal.Decimal {
	return l.AnnualRatePercent.Div(twelve).Div(hundred)
}

// LoanFilter narrows loan listings for collections and follow-up screens.
// Query matches loan number or customer name, Mobile matches applicant or
// guarantor numbers exactly.
type LoanFilter struct {
	Query      string
	Mobile     string
	SeizedOnly bool
	Status     string
}

type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	CreateTx(tx any, loan *Loan) (*Loan, error)
	GetByID(id int32) (*Loan, error)
	GetByNumber(loanNumber string) (*Loan, error)
	List(filter LoanFilter) ([]*Loan, error)
	Update(loan *Loan) (*Loan, error)
	UpdateTx(tx any, loan *Loan) (*Loan, error)
}
