package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LoanHandler handles loan intake, term edits, lifecycle transitions and the
// derived read models.
type LoanHandler struct {
	loanService         *service.LoanService
	summaryService      *service.SummaryService
	amortizationService *service.AmortizationService
	clock               domain.Clock
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, summaryService *service.SummaryService, amortizationService *service.AmortizationService, clock domain.Clock) *LoanHandler {
	return &LoanHandler{
		loanService:         loanService,
		summaryService:      summaryService,
		amortizationService: amortizationService,
		clock:               clock,
	}
}

// CreateLoanRequest represents the request body for creating a loan.
// Monetary fields arrive as strings to keep exact decimal semantics.
type CreateLoanRequest struct {
	LoanNumber           string `json:"loanNumber"`
	CustomerID           int32  `json:"customerId"`
	Principal            string `json:"principal"`
	AnnualRatePercent    string `json:"annualRatePercent"`
	TenureMonths         int32  `json:"tenureMonths"`
	DisbursementDate     string `json:"disbursementDate"`
	EMIStartDate         string `json:"emiStartDate"`
	ProcessingFeePercent string `json:"processingFeePercent"`
}

// UpdateTermsRequest represents the request body for editing amortization terms
type UpdateTermsRequest struct {
	Principal         string `json:"principal"`
	AnnualRatePercent string `json:"annualRatePercent"`
	TenureMonths      int32  `json:"tenureMonths"`
	EMIStartDate      string `json:"emiStartDate"`
}

// SeizeRequest toggles the seizure flag
type SeizeRequest struct {
	Seized bool `json:"seized"`
}

// ClientResponseRequest records the latest follow-up note
type ClientResponseRequest struct {
	ClientResponse string `json:"clientResponse"`
}

func parseLoanID(c echo.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, false
	}
	return int32(id), true
}

// Create handles POST /api/loans
func (h *LoanHandler) Create(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "principal must be a decimal number")
	}
	rate, err := decimal.NewFromString(req.AnnualRatePercent)
	if err != nil {
		return NewValidationError(c, "annualRatePercent must be a decimal number")
	}
	feePercent := decimal.Zero
	if req.ProcessingFeePercent != "" {
		feePercent, err = decimal.NewFromString(req.ProcessingFeePercent)
		if err != nil {
			return NewValidationError(c, "processingFeePercent must be a decimal number")
		}
	}
	disbursed, err := time.Parse(dateLayout, req.DisbursementDate)
	if err != nil {
		return NewValidationError(c, "disbursementDate must be YYYY-MM-DD")
	}
	emiStart, err := time.Parse(dateLayout, req.EMIStartDate)
	if err != nil {
		return NewValidationError(c, "emiStartDate must be YYYY-MM-DD")
	}

	loan, err := h.loanService.CreateLoan(c.Request().Context(), service.CreateLoanInput{
		LoanNumber:           req.LoanNumber,
		CustomerID:           req.CustomerID,
		Principal:            principal,
		AnnualRatePercent:    rate,
		TenureMonths:         req.TenureMonths,
		DisbursementDate:     disbursed,
		EMIStartDate:         emiStart,
		ProcessingFeePercent: feePercent,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, loan)
}

// Get handles GET /api/loans/:id
func (h *LoanHandler) Get(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	loan, err := h.loanService.GetLoan(loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// UpdateTerms handles PUT /api/loans/:id
func (h *LoanHandler) UpdateTerms(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	var req UpdateTermsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "principal must be a decimal number")
	}
	rate, err := decimal.NewFromString(req.AnnualRatePercent)
	if err != nil {
		return NewValidationError(c, "annualRatePercent must be a decimal number")
	}
	emiStart, err := time.Parse(dateLayout, req.EMIStartDate)
	if err != nil {
		return NewValidationError(c, "emiStartDate must be YYYY-MM-DD")
	}

	loan, err := h.loanService.UpdateTerms(c.Request().Context(), loanID, service.UpdateTermsInput{
		Principal:         principal,
		AnnualRatePercent: rate,
		TenureMonths:      req.TenureMonths,
		EMIStartDate:      emiStart,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// Seize handles POST /api/loans/:id/seize
func (h *LoanHandler) Seize(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	var req SeizeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	loan, err := h.loanService.SetSeized(loanID, req.Seized)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// SetClientResponse handles PUT /api/loans/:id/client-response
func (h *LoanHandler) SetClientResponse(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	var req ClientResponseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	loan, err := h.loanService.SetClientResponse(loanID, req.ClientResponse)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// Close handles POST /api/loans/:id/close
func (h *LoanHandler) Close(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	loan, err := h.loanService.CloseLoan(c.Request().Context(), loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// MarkSold handles POST /api/loans/:id/sell
func (h *LoanHandler) MarkSold(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	loan, err := h.loanService.MarkSold(c.Request().Context(), loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// Reopen handles POST /api/loans/:id/reopen
func (h *LoanHandler) Reopen(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	loan, err := h.loanService.ReopenLoan(c.Request().Context(), loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// Summary handles GET /api/loans/:id/summary
func (h *LoanHandler) Summary(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	summary, err := h.summaryService.GetLoanSummary(loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Schedule handles GET /api/loans/:id/schedule
func (h *LoanHandler) Schedule(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	installments, err := h.loanService.GetSchedule(loanID)
	if err != nil {
		return respondDomainError(c, err)
	}

	today := h.clock.Today()
	responses := make([]InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		responses = append(responses, toInstallmentResponse(inst, today))
	}
	return c.JSON(http.StatusOK, responses)
}

// Amortization handles GET /api/loans/:id/amortization
func (h *LoanHandler) Amortization(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	lines, err := h.amortizationService.GetBreakdown(loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, lines)
}

// Foreclosure handles GET /api/loans/:id/foreclosure?asOf=YYYY-MM-DD
func (h *LoanHandler) Foreclosure(c echo.Context) error {
	loanID, ok := parseLoanID(c)
	if !ok {
		return NewValidationError(c, "invalid loan ID")
	}

	asOf := h.clock.Today()
	if raw := c.QueryParam("asOf"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "asOf must be YYYY-MM-DD")
		}
		asOf = parsed
	}

	quote, err := h.amortizationService.GetForeclosureQuote(loanID, asOf)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}
