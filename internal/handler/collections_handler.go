package handler

import (
	"net/http"
	"time"

	"github.com/emitrack/emitrack-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CollectionsHandler serves the follow-up and seizure queues
type CollectionsHandler struct {
	collectionsService *service.CollectionsService
}

// NewCollectionsHandler creates a new CollectionsHandler
func NewCollectionsHandler(collectionsService *service.CollectionsService) *CollectionsHandler {
	return &CollectionsHandler{collectionsService: collectionsService}
}

// List handles GET /api/collections?from=&to=&q=&mobile=&seized=
func (h *CollectionsHandler) List(c echo.Context) error {
	var filter service.CollectionsFilter

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "from must be YYYY-MM-DD")
		}
		filter.From = &parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "to must be YYYY-MM-DD")
		}
		filter.To = &parsed
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return NewValidationError(c, "to must not precede from")
	}

	filter.Query = c.QueryParam("q")
	filter.Mobile = c.QueryParam("mobile")
	filter.SeizedOnly = c.QueryParam("seized") == "true"

	rows, err := h.collectionsService.GetCollectionsQueue(filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}
