package service

import (
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AmortizationService maintains the declining-balance decomposition of the
// contractual schedule and derives foreclosure quotes from it. The curve is
// computed against scheduled amounts only; what was actually paid never
// enters the decomposition.
type AmortizationService struct {
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
}

// NewAmortizationService creates a new AmortizationService
func NewAmortizationService(loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository) *AmortizationService {
	return &AmortizationService{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
	}
}

// BuildBreakdown decomposes each installment into interest and principal
// against the declining balance: interest = B * r, principal = scheduled -
// interest, B -= principal. For a correctly generated schedule the final
// balance lands within rounding tolerance of zero.
func BuildBreakdown(loan *domain.Loan, installments []*domain.Installment) []domain.AmortizationLine {
	r := loan.MonthlyRate()
	balance := loan.Principal
	lines := make([]domain.AmortizationLine, 0, len(installments))
	for _, inst := range installments {
		interest := balance.Mul(r).Round(2)
		principal := inst.ScheduledAmount.Sub(interest)
		balance = balance.Sub(principal)
		lines = append(lines, domain.AmortizationLine{
			Number:    inst.Number,
			DueDate:   inst.DueDate,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
	}
	return lines
}

// GetBreakdown loads the loan and returns its amortization lines.
func (s *AmortizationService) GetBreakdown(loanID int32) ([]domain.AmortizationLine, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.GetByLoanID(loanID)
	if err != nil {
		return nil, err
	}
	return BuildBreakdown(loan, installments), nil
}

// GetForeclosureQuote computes the payoff amount as of the given date.
// The elapsed index k counts installments whose due date has passed (or
// falls on) the as-of date; the remaining principal is the balance after
// line k, clamped at zero. No early-closure fee component is added.
func (s *AmortizationService) GetForeclosureQuote(loanID int32, asOf time.Time) (*domain.ForeclosureQuote, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.GetByLoanID(loanID)
	if err != nil {
		return nil, err
	}

	lines := BuildBreakdown(loan, installments)

	elapsed := 0
	for _, inst := range installments {
		if !inst.DueDate.After(asOf) {
			elapsed++
		}
	}

	remaining := loan.Principal
	if elapsed > 0 {
		remaining = lines[elapsed-1].Balance
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &domain.ForeclosureQuote{
		LoanID:              loan.ID,
		AsOf:                asOf,
		ElapsedInstallments: elapsed,
		RemainingPrincipal:  remaining,
		ForeclosureAmount:   remaining,
	}, nil
}
