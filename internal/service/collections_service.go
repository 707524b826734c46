package service

import (
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CollectionsService builds the follow-up and seizure queues consumed by
// outreach screens.
type CollectionsService struct {
	loanRepo        domain.LoanRepository
	customerRepo    domain.CustomerRepository
	installmentRepo domain.InstallmentRepository
	clock           domain.Clock
}

// NewCollectionsService creates a new CollectionsService
func NewCollectionsService(loanRepo domain.LoanRepository, customerRepo domain.CustomerRepository, installmentRepo domain.InstallmentRepository, clock domain.Clock) *CollectionsService {
	return &CollectionsService{
		loanRepo:        loanRepo,
		customerRepo:    customerRepo,
		installmentRepo: installmentRepo,
		clock:           clock,
	}
}

// CollectionsFilter narrows the queue. A missing due-date window defaults
// to today; text and mobile matching happen at the repository.
type CollectionsFilter struct {
	From       *time.Time
	To         *time.Time
	Query      string
	Mobile     string
	SeizedOnly bool
}

// GetCollectionsQueue produces one row per loan that still has unsettled
// installments and whose next due date falls inside the window. Rows carry
// the contact fan-out for the applicant and guarantor.
func (s *CollectionsService) GetCollectionsQueue(filter CollectionsFilter) ([]*domain.CollectionsRow, error) {
	today := s.clock.Today()
	from, to := filter.From, filter.To
	if from == nil && to == nil {
		from, to = &today, &today
	}

	loans, err := s.loanRepo.List(domain.LoanFilter{
		Query:      filter.Query,
		Mobile:     filter.Mobile,
		SeizedOnly: filter.SeizedOnly,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.CollectionsRow, 0, len(loans))
	for _, loan := range loans {
		installments, err := s.installmentRepo.GetByLoanID(loan.ID)
		if err != nil {
			return nil, err
		}

		summary := BuildSummary(loan, installments, today)
		if summary.NextDueDate == nil {
			continue // fully settled, nothing to chase
		}
		if from != nil && summary.NextDueDate.Before(*from) {
			continue
		}
		if to != nil && summary.NextDueDate.After(*to) {
			continue
		}

		unpaidMonths := 0
		totalDue := decimal.Zero
		for _, inst := range installments {
			if inst.Status(today) == domain.StatusPaid {
				continue
			}
			unpaidMonths++
			totalDue = totalDue.Add(inst.Outstanding())
		}

		customer, err := s.customerRepo.GetByID(loan.CustomerID)
		if err != nil {
			return nil, err
		}

		rows = append(rows, &domain.CollectionsRow{
			LoanID:          loan.ID,
			LoanNumber:      loan.LoanNumber,
			CustomerName:    customer.Name,
			Mobile:          customer.Mobile,
			GuarantorName:   customer.GuarantorName,
			GuarantorMobile: customer.GuarantorMobile,
			UnpaidMonths:    unpaidMonths,
			TotalDueAmount:  totalDue,
			NextDueDate:     summary.NextDueDate,
			Status:          summary.Status,
			IsSeized:        loan.IsSeized,
		})
	}
	return rows, nil
}
