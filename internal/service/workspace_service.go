package service

import (
	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
)

// WorkspaceService resolves tenants for authenticated callers
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(workspaceRepo domain.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo}
}

// GetWorkspaceByAuth0ID returns the workspace the Auth0 subject is a member of
func (s *WorkspaceService) GetWorkspaceByAuth0ID(auth0ID string) (*domain.Workspace, error) {
	if auth0ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.workspaceRepo.GetByMemberAuth0ID(auth0ID)
}

