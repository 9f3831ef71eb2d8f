package domain

import "time"

// Workspace is one trades business; every project and invoice belongs to exactly one
type Workspace struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByID(id int32) (*Workspace, error)
	GetByMemberAuth0ID(auth0ID string) (*Workspace, error)
	GetAllWorkspaces() ([]*Workspace, error)
}
