package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/middleware"
	"github.com/emitrack/emitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InstallmentHandler handles payment application and surcharge edits
type InstallmentHandler struct {
	ledgerService *service.LedgerService
	clock         domain.Clock
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(ledgerService *service.LedgerService, clock domain.Clock) *InstallmentHandler {
	return &InstallmentHandler{
		ledgerService: ledgerService,
		clock:         clock,
	}
}

// InstallmentResponse decorates the stored installment with its derived
// status as of today.
type InstallmentResponse struct {
	*domain.Installment
	Status      domain.InstallmentStatus `json:"status"`
	Outstanding decimal.Decimal          `json:"outstanding"`
}

func toInstallmentResponse(inst *domain.Installment, today time.Time) InstallmentResponse {
	return InstallmentResponse{
		Installment: inst,
		Status:      inst.Status(today),
		Outstanding: inst.Outstanding(),
	}
}

// PaymentEventRequest is one entry of a payment batch. An empty date defaults
// to today.
type PaymentEventRequest struct {
	Date   string `json:"date"`
	Mode   string `json:"mode"`
	Amount string `json:"amount"`
}

// ApplyPaymentRequest represents the request body for recording payments
type ApplyPaymentRequest struct {
	Events []PaymentEventRequest `json:"events"`
}

// SurchargeRequest represents the request body for setting the overdue
// surcharge and remarks
type SurchargeRequest struct {
	OverdueSurcharge string  `json:"overdueSurcharge"`
	Remarks          *string `json:"remarks"`
}

func parseInstallmentID(c echo.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, false
	}
	return int32(id), true
}

// ApplyPayment handles POST /api/installments/:id/payments
func (h *InstallmentHandler) ApplyPayment(c echo.Context) error {
	installmentID, ok := parseInstallmentID(c)
	if !ok {
		return NewValidationError(c, "invalid installment ID")
	}

	var req ApplyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}
	if len(req.Events) == 0 {
		return NewValidationError(c, "at least one payment event is required")
	}

	inputs := make([]service.PaymentInput, 0, len(req.Events))
	for i, ev := range req.Events {
		amount, err := decimal.NewFromString(ev.Amount)
		if err != nil {
			return NewValidationError(c, "event "+strconv.Itoa(i+1)+": amount must be a decimal number")
		}
		var date time.Time
		if ev.Date != "" {
			date, err = time.Parse(dateLayout, ev.Date)
			if err != nil {
				return NewValidationError(c, "event "+strconv.Itoa(i+1)+": date must be YYYY-MM-DD")
			}
		}
		inputs = append(inputs, service.PaymentInput{
			Date:   date,
			Mode:   ev.Mode,
			Amount: amount,
		})
	}

	installment, err := h.ledgerService.ApplyPayment(installmentID, inputs, middleware.GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toInstallmentResponse(installment, h.clock.Today()))
}

// SetSurcharge handles PUT /api/installments/:id/surcharge
func (h *InstallmentHandler) SetSurcharge(c echo.Context) error {
	installmentID, ok := parseInstallmentID(c)
	if !ok {
		return NewValidationError(c, "invalid installment ID")
	}

	var req SurchargeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	surcharge, err := decimal.NewFromString(req.OverdueSurcharge)
	if err != nil {
		return NewValidationError(c, "overdueSurcharge must be a decimal number")
	}

	installment, err := h.ledgerService.SetSurcharge(installmentID, surcharge, req.Remarks, middleware.GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toInstallmentResponse(installment, h.clock.Today()))
}
