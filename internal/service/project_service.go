package service

import (
	"context"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
)

// ProjectService handles project reads
type ProjectService struct {
	projectRepo domain.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo domain.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// ListProjects returns the workspace's projects in the given status
func (s *ProjectService) ListProjects(ctx context.Context, workspaceID int32, status domain.ProjectStatus, includeDeleted bool) ([]*domain.Project, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidProjectStatus
	}
	return s.projectRepo.GetByStatus(ctx, workspaceID, status, !includeDeleted)
}

// GetProject retrieves a single project by ID
func (s *ProjectService) GetProject(ctx context.Context, workspaceID int32, id string) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, workspaceID, id)
}
