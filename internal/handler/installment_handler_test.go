package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/service"
	"github.com/emitrack/emitrack-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newInstallmentFixture() (*InstallmentHandler, *testutil.MockInstallmentRepository, *echo.Echo) {
	e := echo.New()
	installmentRepo := testutil.NewMockInstallmentRepository()
	clock := testutil.NewFixedClock(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	ledgerService := service.NewLedgerService(installmentRepo, clock, service.NewLoanLocks())
	return NewInstallmentHandler(ledgerService, clock), installmentRepo, e
}

func seedInstallment(repo *testutil.MockInstallmentRepository) {
	scheduled, _ := decimal.NewFromString("8884.88")
	repo.AddInstallment(&domain.Installment{
		ID:              1,
		LoanID:          1,
		Number:          1,
		DueDate:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		ScheduledAmount: scheduled,
		Events:          []domain.PaymentEvent{},
	})
}

func installmentRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c, rec
}

func TestInstallmentHandler_ApplyPayment_Success(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	body := `{"events": [
		{"date": "2025-03-10", "mode": "cash", "amount": "3000"},
		{"date": "2025-03-10", "mode": "upi", "amount": "2000"}
	]}`
	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", body)
	c.Set("actor", "asha")

	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["amountPaid"] != "5000" {
		t.Errorf("Expected amount paid 5000, got %v", response["amountPaid"])
	}
	if response["status"] != "partially_paid" {
		t.Errorf("Expected status partially_paid, got %v", response["status"])
	}
	if response["updatedBy"] != "asha" {
		t.Errorf("Expected updated by asha, got %v", response["updatedBy"])
	}

	events, ok := response["events"].([]interface{})
	if !ok || len(events) != 2 {
		t.Fatalf("Expected 2 events in response, got %v", response["events"])
	}
}

func TestInstallmentHandler_ApplyPayment_EmptyBatch(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", `{"events": []}`)
	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestInstallmentHandler_ApplyPayment_BadAmount(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	body := `{"events": [{"mode": "cash", "amount": "abc"}]}`
	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", body)
	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestInstallmentHandler_ApplyPayment_NegativeAmount(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	body := `{"events": [{"mode": "cash", "amount": "-100"}]}`
	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", body)
	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected validation problem type, got %s", problem.Type)
	}
}

func TestInstallmentHandler_ApplyPayment_ConflictOnStaleVersion(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)
	repo.UpdateFn = func(installment *domain.Installment) (*domain.Installment, error) {
		return nil, domain.ErrConcurrentModification
	}

	body := `{"events": [{"mode": "cash", "amount": "100"}]}`
	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", body)
	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestInstallmentHandler_SetSurcharge_Success(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	body := `{"overdueSurcharge": "250", "remarks": "late fee after reminder call"}`
	c, rec := installmentRequest(e, http.MethodPut, "/api/installments/1/surcharge", body)
	c.Set("actor", "asha")

	if err := handler.SetSurcharge(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["overdueSurcharge"] != "250" {
		t.Errorf("Expected surcharge 250, got %v", response["overdueSurcharge"])
	}
	if response["remarks"] != "late fee after reminder call" {
		t.Errorf("Expected remarks, got %v", response["remarks"])
	}
}

func TestInstallmentHandler_SetSurcharge_Negative(t *testing.T) {
	handler, repo, e := newInstallmentFixture()
	seedInstallment(repo)

	body := `{"overdueSurcharge": "-10"}`
	c, rec := installmentRequest(e, http.MethodPut, "/api/installments/1/surcharge", body)
	if err := handler.SetSurcharge(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestInstallmentHandler_NotFound(t *testing.T) {
	handler, _, e := newInstallmentFixture()

	body := `{"events": [{"mode": "cash", "amount": "100"}]}`
	c, rec := installmentRequest(e, http.MethodPost, "/api/installments/1/payments", body)
	if err := handler.ApplyPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
