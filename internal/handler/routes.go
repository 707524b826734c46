package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emitrack/emitrack-backend/internal/middleware"
)

// RegisterRoutes wires all HTTP routes onto the Echo instance
func RegisterRoutes(
	e *echo.Echo,
	loanHandler *LoanHandler,
	installmentHandler *InstallmentHandler,
	customerHandler *CustomerHandler,
	collectionsHandler *CollectionsHandler,
	wsHandler *WebSocketHandler,
	rateLimiter *middleware.RateLimiter,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Real-time updates for back-office screens
	e.GET("/ws", wsHandler.Connect)

	api := e.Group("/api")
	api.Use(middleware.ActorMiddleware())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Customers
	api.POST("/customers", customerHandler.Create)
	api.GET("/customers/:id", customerHandler.Get)
	api.PUT("/customers/:id", customerHandler.Update)

	// Loans
	api.POST("/loans", loanHandler.Create)
	api.GET("/loans/:id", loanHandler.Get)
	api.PUT("/loans/:id", loanHandler.UpdateTerms)
	api.POST("/loans/:id/seize", loanHandler.Seize)
	api.PUT("/loans/:id/client-response", loanHandler.SetClientResponse)
	api.POST("/loans/:id/close", loanHandler.Close)
	api.POST("/loans/:id/sell", loanHandler.MarkSold)
	api.POST("/loans/:id/reopen", loanHandler.Reopen)
	api.GET("/loans/:id/summary", loanHandler.Summary)
	api.GET("/loans/:id/schedule", loanHandler.Schedule)
	api.GET("/loans/:id/amortization", loanHandler.Amortization)
	api.GET("/loans/:id/foreclosure", loanHandler.Foreclosure)

	// Installments
	api.POST("/installments/:id/payments", installmentHandler.ApplyPayment)
	api.PUT("/installments/:id/surcharge", installmentHandler.SetSurcharge)

	// Collections queue
	api.GET("/collections", collectionsHandler.List)
}
