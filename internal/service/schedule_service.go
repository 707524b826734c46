package service

import (
	"fmt"
	"sort"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ScheduleService turns loan terms into the repayment schedule.
type ScheduleService struct{}

// NewScheduleService creates a new ScheduleService
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

var one = decimal.NewFromInt(1)

// CalculateEMI computes the equal monthly installment for the given terms.
// Zero-rate loans divide the principal evenly; otherwise the standard
// annuity formula EMI = P*r*(1+r)^N / ((1+r)^N - 1) applies, rounded to
// 2 decimal places. The rounding residual is not trued up in the final
// installment.
func CalculateEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(tenureMonths))
	r := annualRatePercent.Div(decimal.NewFromInt(12)).Div(decimal.NewFromInt(100))
	if r.IsZero() {
		return principal.Div(months).Round(2)
	}
	factor := one.Add(r).Pow(months)
	return principal.Mul(r).Mul(factor).Div(factor.Sub(one)).Round(2)
}

// CalculateProcessingFee computes the fee charged at disbursement.
func CalculateProcessingFee(principal, feePercent decimal.Decimal) decimal.Decimal {
	return principal.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
}

// GenerateSchedule produces the full installment set for a loan. The first
// installment falls one calendar month after the EMI start date, never on
// the start date itself. Generation is deterministic: identical terms give
// identical due dates and amounts.
func (s *ScheduleService) GenerateSchedule(loan *domain.Loan) ([]*domain.Installment, error) {
	if loan.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal %s must be positive", domain.ErrInvalidTerms, loan.Principal)
	}
	if loan.TenureMonths < 1 {
		return nil, fmt.Errorf("%w: tenure %d months must be positive", domain.ErrInvalidTerms, loan.TenureMonths)
	}
	if loan.AnnualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate %s must not be negative", domain.ErrInvalidTerms, loan.AnnualRatePercent)
	}

	emi := CalculateEMI(loan.Principal, loan.AnnualRatePercent, int(loan.TenureMonths))
	installments := make([]*domain.Installment, 0, loan.TenureMonths)
	for i := int32(1); i <= loan.TenureMonths; i++ {
		installments = append(installments, &domain.Installment{
			LoanID:           loan.ID,
			Number:           i,
			DueDate:          loan.EMIStartDate.AddDate(0, int(i), 0),
			ScheduledAmount:  emi,
			AmountPaid:       decimal.Zero,
			Events:           []domain.PaymentEvent{},
			OverdueSurcharge: decimal.Zero,
		})
	}
	return installments, nil
}

// RegenerateSchedule rebuilds the schedule after the loan terms changed.
// Installments that already carry payments are preserved verbatim; every
// zero-payment installment is replaced from the new terms. The new tenure
// must not drop below the highest installment number that carries payments.
// Returns the merged schedule ordered by number, and the subset of freshly
// generated installments that must be inserted.
func (s *ScheduleService) RegenerateSchedule(loan *domain.Loan, existing []*domain.Installment) ([]*domain.Installment, []*domain.Installment, error) {
	preserved := make(map[int32]*domain.Installment)
	maxPaidNumber := int32(0)
	for _, inst := range existing {
		if inst.HasPayments() {
			preserved[inst.Number] = inst
			if inst.Number > maxPaidNumber {
				maxPaidNumber = inst.Number
			}
		}
	}
	if loan.TenureMonths < maxPaidNumber {
		return nil, nil, fmt.Errorf("%w: tenure %d months is below installment %d which already carries payments",
			domain.ErrInvalidTerms, loan.TenureMonths, maxPaidNumber)
	}

	fresh, err := s.GenerateSchedule(loan)
	if err != nil {
		return nil, nil, err
	}

	merged := make([]*domain.Installment, 0, loan.TenureMonths)
	inserted := make([]*domain.Installment, 0, loan.TenureMonths)
	for _, inst := range fresh {
		if kept, ok := preserved[inst.Number]; ok {
			merged = append(merged, kept)
			continue
		}
		merged = append(merged, inst)
		inserted = append(inserted, inst)
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].Number < merged[b].Number })
	return merged, inserted, nil
}
