package handler

import (
	"net/http"
	"strconv"

	"github.com/emitrack/emitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CustomerHandler handles applicant record management
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRequest represents the request body for creating or updating a
// customer
type CustomerRequest struct {
	Name            string  `json:"name"`
	Mobile          string  `json:"mobile"`
	Address         *string `json:"address"`
	GuarantorName   *string `json:"guarantorName"`
	GuarantorMobile *string `json:"guarantorMobile"`
}

func (r CustomerRequest) toInput() service.CustomerInput {
	return service.CustomerInput{
		Name:            r.Name,
		Mobile:          r.Mobile,
		Address:         r.Address,
		GuarantorName:   r.GuarantorName,
		GuarantorMobile: r.GuarantorMobile,
	}
}

// Create handles POST /api/customers
func (h *CustomerHandler) Create(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	customer, err := h.customerService.CreateCustomer(req.toInput())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// Get handles GET /api/customers/:id
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return NewValidationError(c, "invalid customer ID")
	}

	customer, err := h.customerService.GetCustomer(int32(id))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Update handles PUT /api/customers/:id
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return NewValidationError(c, "invalid customer ID")
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	customer, err := h.customerService.UpdateCustomer(int32(id), req.toInput())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}
