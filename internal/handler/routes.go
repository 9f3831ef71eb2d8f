package handler

import (
	"github.com/dafibh/fieldops/fieldops-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the API handlers registered under /api/v1
type Handlers struct {
	Outstanding *OutstandingHandler
	Project     *ProjectHandler
	Invoice     *InvoiceHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, exportLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api/v1")

	// WebSocket authenticates with the query-string token
	if h.WebSocket != nil {
		api.GET("/ws", h.WebSocket.HandleWS)
	}

	receivables := api.Group("/receivables")
	receivables.Use(authMiddleware.Authenticate())
	receivables.GET("/outstanding", h.Outstanding.GetReport)
	receivables.GET("/outstanding/:projectId", h.Outstanding.GetProjectBalance)
	receivables.POST("/outstanding/export", h.Outstanding.Export, middleware.RateLimitMiddleware(exportLimiter))

	projects := api.Group("/projects")
	projects.Use(authMiddleware.Authenticate())
	projects.GET("", h.Project.ListProjects)
	projects.GET("/:id", h.Project.GetProject)

	invoices := api.Group("/invoices")
	invoices.Use(authMiddleware.Authenticate())
	invoices.GET("", h.Invoice.ListInvoices)
	invoices.PUT("/sync", h.Invoice.SyncInvoices)
}
