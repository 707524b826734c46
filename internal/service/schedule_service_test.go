package service

import (
	"errors"
	"testing"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateEMI_StandardAnnuity(t *testing.T) {
	// 100000 at 12% over 12 months
	emi := CalculateEMI(dec("100000"), dec("12"), 12)

	if !emi.Equal(dec("8884.88")) {
		t.Errorf("Expected EMI 8884.88, got %s", emi)
	}
}

func TestCalculateEMI_ZeroRate(t *testing.T) {
	emi := CalculateEMI(dec("100000"), dec("0"), 12)

	if !emi.Equal(dec("8333.33")) {
		t.Errorf("Expected EMI 8333.33, got %s", emi)
	}
}

func TestCalculateEMI_SingleMonth(t *testing.T) {
	emi := CalculateEMI(dec("10000"), dec("12"), 1)

	// One installment repays principal plus one month of interest
	if !emi.Equal(dec("10100")) {
		t.Errorf("Expected EMI 10100, got %s", emi)
	}
}

func TestCalculateProcessingFee(t *testing.T) {
	fee := CalculateProcessingFee(dec("100000"), dec("1.5"))

	if !fee.Equal(dec("1500")) {
		t.Errorf("Expected fee 1500, got %s", fee)
	}
}

func testLoan() *domain.Loan {
	return &domain.Loan{
		ID:                int32(1),
		LoanNumber:        "LN-1001",
		CustomerID:        1,
		Principal:         dec("100000"),
		AnnualRatePercent: dec("12"),
		TenureMonths:      12,
		DisbursementDate:  day(2025, time.January, 10),
		EMIStartDate:      day(2025, time.January, 15),
		Status:            domain.LoanStatusActive,
	}
}

func TestGenerateSchedule_Success(t *testing.T) {
	scheduleService := NewScheduleService()
	loan := testLoan()

	installments, err := scheduleService.GenerateSchedule(loan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(installments) != 12 {
		t.Fatalf("Expected 12 installments, got %d", len(installments))
	}

	// First due date falls one calendar month after the EMI start date
	if !installments[0].DueDate.Equal(day(2025, time.February, 15)) {
		t.Errorf("Expected first due date 2025-02-15, got %s", installments[0].DueDate.Format("2006-01-02"))
	}
	if !installments[11].DueDate.Equal(day(2026, time.January, 15)) {
		t.Errorf("Expected last due date 2026-01-15, got %s", installments[11].DueDate.Format("2006-01-02"))
	}

	for i, inst := range installments {
		if inst.Number != int32(i+1) {
			t.Errorf("Expected number %d, got %d", i+1, inst.Number)
		}
		if inst.LoanID != loan.ID {
			t.Errorf("Expected loan ID %d, got %d", loan.ID, inst.LoanID)
		}
		if !inst.ScheduledAmount.Equal(dec("8884.88")) {
			t.Errorf("Installment %d: expected scheduled amount 8884.88, got %s", inst.Number, inst.ScheduledAmount)
		}
		if !inst.AmountPaid.IsZero() {
			t.Errorf("Installment %d: expected zero paid, got %s", inst.Number, inst.AmountPaid)
		}
		if len(inst.Events) != 0 {
			t.Errorf("Installment %d: expected no events, got %d", inst.Number, len(inst.Events))
		}
	}
}

func TestGenerateSchedule_MonthEndRollover(t *testing.T) {
	scheduleService := NewScheduleService()
	loan := testLoan()
	loan.TenureMonths = 3
	loan.EMIStartDate = day(2025, time.January, 31)

	installments, err := scheduleService.GenerateSchedule(loan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// AddDate normalizes Jan 31 + 1 month to Mar 3 (2025 is not a leap year)
	if !installments[0].DueDate.Equal(day(2025, time.March, 3)) {
		t.Errorf("Expected first due date 2025-03-03, got %s", installments[0].DueDate.Format("2006-01-02"))
	}
}

func TestGenerateSchedule_Deterministic(t *testing.T) {
	scheduleService := NewScheduleService()

	first, err := scheduleService.GenerateSchedule(testLoan())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := scheduleService.GenerateSchedule(testLoan())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i := range first {
		if !first[i].DueDate.Equal(second[i].DueDate) {
			t.Errorf("Installment %d: due dates differ", i+1)
		}
		if !first[i].ScheduledAmount.Equal(second[i].ScheduledAmount) {
			t.Errorf("Installment %d: scheduled amounts differ", i+1)
		}
	}
}

func TestGenerateSchedule_InvalidTerms(t *testing.T) {
	scheduleService := NewScheduleService()

	tests := []struct {
		name   string
		mutate func(*domain.Loan)
	}{
		{"zero principal", func(l *domain.Loan) { l.Principal = decimal.Zero }},
		{"negative principal", func(l *domain.Loan) { l.Principal = dec("-5000") }},
		{"zero tenure", func(l *domain.Loan) { l.TenureMonths = 0 }},
		{"negative rate", func(l *domain.Loan) { l.AnnualRatePercent = dec("-1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := testLoan()
			tt.mutate(loan)

			_, err := scheduleService.GenerateSchedule(loan)
			if !errors.Is(err, domain.ErrInvalidTerms) {
				t.Errorf("Expected ErrInvalidTerms, got %v", err)
			}
		})
	}
}

func TestRegenerateSchedule_PreservesPaidInstallments(t *testing.T) {
	scheduleService := NewScheduleService()
	loan := testLoan()

	existing, err := scheduleService.GenerateSchedule(loan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i := range existing {
		existing[i].ID = int32(i + 1)
	}
	// Installments 1 and 2 carry payments
	existing[0].Events = []domain.PaymentEvent{{Mode: "cash", Amount: dec("8884.88")}}
	existing[0].AmountPaid = dec("8884.88")
	existing[1].Events = []domain.PaymentEvent{{Mode: "upi", Amount: dec("4000")}}
	existing[1].AmountPaid = dec("4000")

	loan.TenureMonths = 18
	merged, inserted, err := scheduleService.RegenerateSchedule(loan, existing)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(merged) != 18 {
		t.Fatalf("Expected 18 merged installments, got %d", len(merged))
	}
	if len(inserted) != 16 {
		t.Fatalf("Expected 16 inserted installments, got %d", len(inserted))
	}

	// Preserved rows keep their identity and ledger
	if merged[0].ID != existing[0].ID || !merged[0].AmountPaid.Equal(dec("8884.88")) {
		t.Error("Expected installment 1 to be preserved verbatim")
	}
	if merged[1].ID != existing[1].ID || !merged[1].AmountPaid.Equal(dec("4000")) {
		t.Error("Expected installment 2 to be preserved verbatim")
	}

	// Replaced rows come from the new terms
	newEMI := CalculateEMI(loan.Principal, loan.AnnualRatePercent, 18)
	for _, inst := range inserted {
		if !inst.ScheduledAmount.Equal(newEMI) {
			t.Errorf("Installment %d: expected scheduled amount %s, got %s", inst.Number, newEMI, inst.ScheduledAmount)
		}
	}
}

func TestRegenerateSchedule_TenureBelowPaidInstallment(t *testing.T) {
	scheduleService := NewScheduleService()
	loan := testLoan()

	existing, err := scheduleService.GenerateSchedule(loan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Installment 8 carries a payment; shrinking tenure below it must fail
	existing[7].Events = []domain.PaymentEvent{{Mode: "cash", Amount: dec("1000")}}
	existing[7].AmountPaid = dec("1000")

	loan.TenureMonths = 6
	_, _, err = scheduleService.RegenerateSchedule(loan, existing)
	if !errors.Is(err, domain.ErrInvalidTerms) {
		t.Errorf("Expected ErrInvalidTerms, got %v", err)
	}
}
