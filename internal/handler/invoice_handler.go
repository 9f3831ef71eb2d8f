package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/middleware"
	"github.com/dafibh/fieldops/fieldops-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OutstandingRefresher recomputes a workspace's outstanding report after its inputs change
type OutstandingRefresher interface {
	RefreshWorkspace(ctx context.Context, workspaceID int32) (bool, error)
}

// InvoiceHandler handles the accounting invoice mirror
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	refresher      OutstandingRefresher
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// SetRefresher makes a successful sync trigger an immediate outstanding refresh
func (h *InvoiceHandler) SetRefresher(refresher OutstandingRefresher) {
	h.refresher = refresher
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"projectId"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Status        string  `json:"status"`
	AmountDue     string  `json:"amountDue"`
	Total         string  `json:"total"`
	DueDate       *string `json:"dueDate,omitempty"`
	UpdatedAt     string  `json:"updatedAt"`
}

// SyncInvoiceItem is one invoice in a sync request. Amounts are decimal strings.
type SyncInvoiceItem struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	InvoiceNumber string `json:"invoiceNumber"`
	Status        string `json:"status"`
	AmountDue     string `json:"amountDue"`
	Total         string `json:"total"`
	DueDate       string `json:"dueDate,omitempty"`
}

// SyncInvoicesRequest represents the invoice sync request body
type SyncInvoicesRequest struct {
	Invoices []SyncInvoiceItem `json:"invoices"`
}

// SyncInvoicesResponse represents the invoice sync response
type SyncInvoicesResponse struct {
	Count    int               `json:"count"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// ListInvoices godoc
// @Summary List mirrored invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Only invoices linked to this project"
// @Success 200 {array} InvoiceResponse
// @Failure 401 {object} ProblemDetails
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request().Context(), workspaceID, c.QueryParam("projectId"))
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to list invoices")
		return NewInternalError(c, "Failed to list invoices")
	}

	return c.JSON(http.StatusOK, toInvoiceResponses(invoices))
}

// SyncInvoices godoc
// @Summary Sync invoices from the accounting system
// @Description Upserts up to 500 invoices atomically
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SyncInvoicesRequest true "Invoices to upsert"
// @Success 200 {object} SyncInvoicesResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /invoices/sync [put]
func (h *InvoiceHandler) SyncInvoices(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req SyncInvoicesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	inputs := make([]service.InvoiceInput, 0, len(req.Invoices))
	var fieldErrors []ValidationError
	for i, item := range req.Invoices {
		input, errs := toInvoiceInput(i, item)
		if len(errs) > 0 {
			fieldErrors = append(fieldErrors, errs...)
			continue
		}
		inputs = append(inputs, input)
	}
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	result, err := h.invoiceService.SyncInvoices(c.Request().Context(), workspaceID, inputs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyInvoices):
			return NewValidationError(c, fmt.Sprintf("At most %d invoices per sync", domain.MaxInvoicesPerSync), nil)
		case errors.Is(err, domain.ErrInvoiceIDRequired),
			errors.Is(err, domain.ErrInvalidInvoiceStatus),
			errors.Is(err, domain.ErrInvoiceAmountNegative),
			errors.Is(err, domain.ErrDuplicateInvoiceInSync):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to sync invoices")
		return NewInternalError(c, "Failed to sync invoices")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("count", result.Count).Msg("Invoices synced")

	if h.refresher != nil && result.Count > 0 {
		if _, err := h.refresher.RefreshWorkspace(c.Request().Context(), workspaceID); err != nil {
			log.Warn().Err(err).Int32("workspace_id", workspaceID).Msg("Outstanding refresh after sync failed")
		}
	}

	return c.JSON(http.StatusOK, SyncInvoicesResponse{
		Count:    result.Count,
		Invoices: toInvoiceResponses(result.Invoices),
	})
}

func toInvoiceInput(index int, item SyncInvoiceItem) (service.InvoiceInput, []ValidationError) {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("invoices[%d].%s", index, name) }

	parseAmount := func(name, raw string) decimal.Decimal {
		if strings.TrimSpace(raw) == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, ValidationError{Field: field(name), Message: "Must be a valid decimal number"})
			return decimal.Zero
		}
		return d
	}

	input := service.InvoiceInput{
		ID:            item.ID,
		ProjectID:     item.ProjectID,
		InvoiceNumber: item.InvoiceNumber,
		Status:        item.Status,
		AmountDue:     parseAmount("amountDue", item.AmountDue),
		Total:         parseAmount("total", item.Total),
	}

	if item.DueDate != "" {
		due, err := time.Parse("2006-01-02", item.DueDate)
		if err != nil {
			errs = append(errs, ValidationError{Field: field("dueDate"), Message: "Must be a date (YYYY-MM-DD)"})
		} else {
			input.DueDate = &due
		}
	}

	return input, errs
}

func toInvoiceResponses(invoices []*domain.Invoice) []InvoiceResponse {
	response := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		var dueDate *string
		if inv.DueDate != nil {
			s := inv.DueDate.Format("2006-01-02")
			dueDate = &s
		}
		response[i] = InvoiceResponse{
			ID:            inv.ID,
			ProjectID:     inv.ProjectID,
			InvoiceNumber: inv.InvoiceNumber,
			Status:        string(inv.Status),
			AmountDue:     inv.AmountDue.StringFixed(2),
			Total:         inv.Total.StringFixed(2),
			DueDate:       dueDate,
			UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
		}
	}
	return response
}
