package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/middleware"
	"github.com/dafibh/fieldops/fieldops-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// OutstandingHandler serves the receivables dashboard
type OutstandingHandler struct {
	outstandingService *service.OutstandingService
	exportService      *service.ReportExportService
}

// NewOutstandingHandler creates a new OutstandingHandler. exportService may be nil.
func NewOutstandingHandler(outstandingService *service.OutstandingService, exportService *service.ReportExportService) *OutstandingHandler {
	return &OutstandingHandler{
		outstandingService: outstandingService,
		exportService:      exportService,
	}
}

// ProjectBalanceResponse is one row of the outstanding report
type ProjectBalanceResponse struct {
	ProjectID          string `json:"projectId"`
	ProjectName        string `json:"projectName"`
	ClientName         string `json:"clientName"`
	FinancialStatus    string `json:"financialStatus"`
	OutstandingBalance string `json:"outstandingBalance"`
	Source             string `json:"source"`
	QualifyingInvoices int    `json:"qualifyingInvoices"`
	InvoiceCount       int    `json:"invoiceCount"`
}

// OutstandingReportResponse is the receivables widget payload
type OutstandingReportResponse struct {
	WorkspaceID  int32                    `json:"workspaceId"`
	GrandTotal   string                   `json:"grandTotal"`
	ProjectCount int                      `json:"projectCount"`
	GeneratedAt  string                   `json:"generatedAt"`
	Balances     []ProjectBalanceResponse `json:"balances"`
}

// ReportExportResponse points at a stored CSV export
type ReportExportResponse struct {
	URL          string `json:"url"`
	ObjectPath   string `json:"objectPath"`
	ExpiresAt    string `json:"expiresAt"`
	ProjectCount int    `json:"projectCount"`
	GrandTotal   string `json:"grandTotal"`
}

// GetReport godoc
// @Summary Outstanding balances
// @Description Per-project outstanding balances for completed jobs, highest first, with the grand total
// @Tags receivables
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OutstandingReportResponse
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /receivables/outstanding [get]
func (h *OutstandingHandler) GetReport(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	report, err := h.outstandingService.GetReport(c.Request().Context(), workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to build outstanding report")
		return NewInternalError(c, "Failed to build outstanding report")
	}

	return c.JSON(http.StatusOK, toOutstandingReportResponse(report))
}

// GetProjectBalance godoc
// @Summary Outstanding balance for one project
// @Tags receivables
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} ProjectBalanceResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /receivables/outstanding/{projectId} [get]
func (h *OutstandingHandler) GetProjectBalance(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	projectID := c.Param("projectId")
	balance, err := h.outstandingService.GetProjectBalance(c.Request().Context(), workspaceID, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return NewNotFoundError(c, "Project not found")
		}
		if errors.Is(err, domain.ErrProjectBalanceNotFound) {
			return NewNotFoundError(c, "Project has no outstanding balance")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("project_id", projectID).Msg("Failed to resolve project balance")
		return NewInternalError(c, "Failed to resolve project balance")
	}

	return c.JSON(http.StatusOK, toProjectBalanceResponse(balance))
}

// Export godoc
// @Summary Export outstanding balances as CSV
// @Description Uploads the current report as CSV and returns a short-lived download link
// @Tags receivables
// @Produce json
// @Security BearerAuth
// @Success 201 {object} ReportExportResponse
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /receivables/outstanding/export [post]
func (h *OutstandingHandler) Export(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	export, err := h.exportService.Export(c.Request().Context(), workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrReportStorageNotConfigured) {
			return NewServiceUnavailableError(c, "Report exports are not enabled")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to export outstanding report")
		return NewInternalError(c, "Failed to export outstanding report")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("object_path", export.ObjectPath).
		Int("project_count", export.ProjectCount).
		Msg("Outstanding report exported")

	return c.JSON(http.StatusCreated, ReportExportResponse{
		URL:          export.URL,
		ObjectPath:   export.ObjectPath,
		ExpiresAt:    export.ExpiresAt.Format(time.RFC3339),
		ProjectCount: export.ProjectCount,
		GrandTotal:   export.GrandTotal.StringFixed(2),
	})
}

func toProjectBalanceResponse(b *domain.ProjectBalance) ProjectBalanceResponse {
	return ProjectBalanceResponse{
		ProjectID:          b.Project.ID,
		ProjectName:        b.Project.Name,
		ClientName:         b.Project.ClientName,
		FinancialStatus:    string(b.Project.FinancialStatus),
		OutstandingBalance: b.OutstandingBalance.StringFixed(2),
		Source:             string(b.Source),
		QualifyingInvoices: b.QualifyingInvoices,
		InvoiceCount:       b.InvoiceCount,
	}
}

func toOutstandingReportResponse(report *domain.OutstandingReport) OutstandingReportResponse {
	balances := make([]ProjectBalanceResponse, len(report.Balances))
	for i, b := range report.Balances {
		balances[i] = toProjectBalanceResponse(b)
	}
	return OutstandingReportResponse{
		WorkspaceID:  report.WorkspaceID,
		GrandTotal:   report.GrandTotal.StringFixed(2),
		ProjectCount: report.ProjectCount,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Balances:     balances,
	}
}
