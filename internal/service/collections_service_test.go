package service

import (
	"testing"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/testutil"
)

func newCollectionsFixture(today time.Time) (*CollectionsService, *testutil.MockLoanRepository, *testutil.MockCustomerRepository, *testutil.MockInstallmentRepository) {
	loanRepo := testutil.NewMockLoanRepository()
	customerRepo := testutil.NewMockCustomerRepository()
	installmentRepo := testutil.NewMockInstallmentRepository()
	collectionsService := NewCollectionsService(loanRepo, customerRepo, installmentRepo, testutil.NewFixedClock(today))
	return collectionsService, loanRepo, customerRepo, installmentRepo
}

func seedCollectionsLoan(loanRepo *testutil.MockLoanRepository, customerRepo *testutil.MockCustomerRepository, id int32, loanNumber string) {
	guarantorName := "Guarantor " + loanNumber
	guarantorMobile := "98000000" + loanNumber[len(loanNumber)-2:]
	customerRepo.AddCustomer(&domain.Customer{
		ID:              id,
		Name:            "Customer " + loanNumber,
		Mobile:          "9876543210",
		GuarantorName:   &guarantorName,
		GuarantorMobile: &guarantorMobile,
	})
	loanRepo.AddLoan(&domain.Loan{
		ID:                id,
		LoanNumber:        loanNumber,
		CustomerID:        id,
		Principal:         dec("100000"),
		AnnualRatePercent: dec("12"),
		TenureMonths:      12,
		Status:            domain.LoanStatusActive,
	})
}

func TestGetCollectionsQueue_DefaultWindowIsToday(t *testing.T) {
	today := day(2025, time.March, 15)
	collectionsService, loanRepo, customerRepo, installmentRepo := newCollectionsFixture(today)

	// Loan 1 is due today, loan 2 tomorrow
	seedCollectionsLoan(loanRepo, customerRepo, 1, "LN-1001")
	seedCollectionsLoan(loanRepo, customerRepo, 2, "LN-1002")
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 1, LoanID: 1, Number: 1, DueDate: today, ScheduledAmount: dec("8884.88"),
	})
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 2, LoanID: 2, Number: 1, DueDate: today.AddDate(0, 0, 1), ScheduledAmount: dec("8884.88"),
	})

	rows, err := collectionsService.GetCollectionsQueue(CollectionsFilter{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].LoanNumber != "LN-1001" {
		t.Errorf("Expected LN-1001, got %s", rows[0].LoanNumber)
	}
}

func TestGetCollectionsQueue_SkipsSettledLoans(t *testing.T) {
	today := day(2025, time.March, 15)
	collectionsService, loanRepo, customerRepo, installmentRepo := newCollectionsFixture(today)

	seedCollectionsLoan(loanRepo, customerRepo, 1, "LN-1001")
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 1, LoanID: 1, Number: 1, DueDate: today,
		ScheduledAmount: dec("8884.88"), AmountPaid: dec("8884.88"),
		Events: []domain.PaymentEvent{paidEvent(today, "8884.88")},
	})

	rows, err := collectionsService.GetCollectionsQueue(CollectionsFilter{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows for a settled loan, got %d", len(rows))
	}
}

func TestGetCollectionsQueue_ArrearsRollup(t *testing.T) {
	today := day(2025, time.May, 20)
	collectionsService, loanRepo, customerRepo, installmentRepo := newCollectionsFixture(today)

	seedCollectionsLoan(loanRepo, customerRepo, 1, "LN-1001")
	// Three months behind: one fully unpaid, one partial, one paid
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 1, LoanID: 1, Number: 1, DueDate: day(2025, time.March, 15),
		ScheduledAmount: dec("8884.88"), AmountPaid: dec("8884.88"),
		Events: []domain.PaymentEvent{paidEvent(day(2025, time.March, 15), "8884.88")},
	})
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 2, LoanID: 1, Number: 2, DueDate: day(2025, time.April, 15),
		ScheduledAmount: dec("8884.88"), AmountPaid: dec("4000"),
		Events: []domain.PaymentEvent{paidEvent(day(2025, time.April, 20), "4000")},
	})
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 3, LoanID: 1, Number: 3, DueDate: day(2025, time.May, 15),
		ScheduledAmount: dec("8884.88"),
	})

	from := day(2025, time.April, 1)
	to := day(2025, time.May, 31)
	rows, err := collectionsService.GetCollectionsQueue(CollectionsFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.UnpaidMonths != 2 {
		t.Errorf("Expected 2 unpaid months, got %d", row.UnpaidMonths)
	}
	// 4884.88 remaining on installment 2 plus 8884.88 on installment 3
	if !row.TotalDueAmount.Equal(dec("13769.76")) {
		t.Errorf("Expected total due 13769.76, got %s", row.TotalDueAmount)
	}
	if row.NextDueDate == nil || !row.NextDueDate.Equal(day(2025, time.April, 15)) {
		t.Errorf("Expected next due date 2025-04-15, got %v", row.NextDueDate)
	}
	if row.Status != domain.StatusOverdue {
		t.Errorf("Expected status overdue, got %s", row.Status)
	}
}

func TestGetCollectionsQueue_CarriesContactFanOut(t *testing.T) {
	today := day(2025, time.March, 15)
	collectionsService, loanRepo, customerRepo, installmentRepo := newCollectionsFixture(today)

	seedCollectionsLoan(loanRepo, customerRepo, 1, "LN-1001")
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 1, LoanID: 1, Number: 1, DueDate: today, ScheduledAmount: dec("8884.88"),
	})

	rows, err := collectionsService.GetCollectionsQueue(CollectionsFilter{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.CustomerName != "Customer LN-1001" {
		t.Errorf("Expected customer name, got %s", row.CustomerName)
	}
	if row.Mobile != "9876543210" {
		t.Errorf("Expected applicant mobile, got %s", row.Mobile)
	}
	if row.GuarantorName == nil || *row.GuarantorName != "Guarantor LN-1001" {
		t.Error("Expected guarantor name on the row")
	}
	if row.GuarantorMobile == nil {
		t.Error("Expected guarantor mobile on the row")
	}
}

func TestGetCollectionsQueue_SeizedOnlyReachesRepository(t *testing.T) {
	today := day(2025, time.March, 15)
	collectionsService, loanRepo, customerRepo, installmentRepo := newCollectionsFixture(today)

	seedCollectionsLoan(loanRepo, customerRepo, 1, "LN-1001")
	seedCollectionsLoan(loanRepo, customerRepo, 2, "LN-1002")
	loanRepo.Loans[2].IsSeized = true
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 1, LoanID: 1, Number: 1, DueDate: today, ScheduledAmount: dec("8884.88"),
	})
	installmentRepo.AddInstallment(&domain.Installment{
		ID: 2, LoanID: 2, Number: 1, DueDate: today, ScheduledAmount: dec("8884.88"),
	})

	rows, err := collectionsService.GetCollectionsQueue(CollectionsFilter{SeizedOnly: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].LoanNumber != "LN-1002" || !rows[0].IsSeized {
		t.Errorf("Expected only the seized loan, got %s", rows[0].LoanNumber)
	}
}
