package handler

import (
	"errors"
	"net/http"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error types
const (
	ErrorTypeValidation = "https://emitrack.app/errors/validation"
	ErrorTypeNotFound   = "https://emitrack.app/errors/not-found"
	ErrorTypeConflict   = "https://emitrack.app/errors/conflict"
	ErrorTypeInternal   = "https://emitrack.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// respondDomainError maps engine errors onto problem-details responses.
// Every error carries the offending entity or value in its message so the
// UI can render it directly.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrInstallmentNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrLoanNumberTaken):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTerms),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidSurcharge),
		errors.Is(err, domain.ErrLoanNumberEmpty),
		errors.Is(err, domain.ErrLoanNotActive),
		errors.Is(err, domain.ErrLoanNotSettled),
		errors.Is(err, domain.ErrCustomerNameEmpty):
		return NewValidationError(c, err.Error())
	default:
		return NewInternalError(c, "an unexpected error occurred")
	}
}
