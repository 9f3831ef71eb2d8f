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

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ClientName        string  `json:"clientName"`
	Status            string  `json:"status"`
	FinancialStatus   string  `json:"financialStatus"`
	TotalProjectValue string  `json:"totalProjectValue"`
	CompletedAt       *string `json:"completedAt,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
	DeletedAt         *string `json:"deletedAt,omitempty"`
}

// ListProjects godoc
// @Summary List projects by status
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param status query string false "Project status" default(Completed)
// @Param includeDeleted query bool false "Include soft-deleted projects"
// @Success 200 {array} ProjectResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	status := domain.ProjectStatus(c.QueryParam("status"))
	if status == "" {
		status = domain.ProjectStatusCompleted
	}
	includeDeleted := c.QueryParam("includeDeleted") == "true"

	projects, err := h.projectService.ListProjects(c.Request().Context(), workspaceID, status, includeDeleted)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProjectStatus) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Status must be one of: Lead, Quote Sent, Scheduled, In Progress, Completed, Cancelled"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to list projects")
		return NewInternalError(c, "Failed to list projects")
	}

	response := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	project, err := h.projectService.GetProject(c.Request().Context(), workspaceID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return NewNotFoundError(c, "Project not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get project")
		return NewInternalError(c, "Failed to get project")
	}

	return c.JSON(http.StatusOK, toProjectResponse(project))
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:                p.ID,
		Name:              p.Name,
		ClientName:        p.ClientName,
		Status:            string(p.Status),
		FinancialStatus:   string(p.FinancialStatus),
		TotalProjectValue: p.TotalProjectValue.StringFixed(2),
		CompletedAt:       formatTimePtr(p.CompletedAt),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
		DeletedAt:         formatTimePtr(p.DeletedAt),
	}
}
