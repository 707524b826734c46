package service

import (
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SummaryService rolls per-installment state up to loan-level aggregates.
// Everything here is pure derivation from the installment set; nothing is
// cached back onto the loan record.
type SummaryService struct {
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	clock           domain.Clock
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository, clock domain.Clock) *SummaryService {
	return &SummaryService{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		clock:           clock,
	}
}

// BuildSummary aggregates the installments as of the given day. The loan's
// representative status and next due date come from the non-Paid installment
// with the earliest due date, ties broken by lowest installment number; a
// fully settled loan reports Paid with no next due date.
func BuildSummary(loan *domain.Loan, installments []*domain.Installment, today time.Time) *domain.LoanSummary {
	summary := &domain.LoanSummary{
		LoanID:      loan.ID,
		LoanNumber:  loan.LoanNumber,
		TotalEMIs:   len(installments),
		TotalAmount: decimal.Zero,
		AmountPaid:  decimal.Zero,
		Status:      domain.StatusPaid,
	}

	var representative *domain.Installment
	for _, inst := range installments {
		summary.TotalAmount = summary.TotalAmount.Add(inst.ScheduledAmount)
		summary.AmountPaid = summary.AmountPaid.Add(inst.AmountPaid)

		status := inst.Status(today)
		if status == domain.StatusPaid {
			summary.PaidEMIs++
		} else if representative == nil ||
			inst.DueDate.Before(representative.DueDate) ||
			(inst.DueDate.Equal(representative.DueDate) && inst.Number < representative.Number) {
			representative = inst
		}

		if last := inst.LastEventDate(); last != nil {
			if summary.LastPaymentDate == nil || last.After(*summary.LastPaymentDate) {
				summary.LastPaymentDate = last
			}
		}
	}

	if representative != nil {
		due := representative.DueDate
		summary.NextDueDate = &due
		summary.Status = representative.Status(today)
	}
	return summary
}

// GetLoanSummary loads the loan and derives its aggregate view.
func (s *SummaryService) GetLoanSummary(loanID int32) (*domain.LoanSummary, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.GetByLoanID(loanID)
	if err != nil {
		return nil, err
	}
	return BuildSummary(loan, installments, s.clock.Today()), nil
}
