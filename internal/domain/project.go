package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrInvalidProjectStatus = errors.New("invalid project status")
)

// ProjectStatus is the operational stage of a job
type ProjectStatus string

const (
	ProjectStatusLead       ProjectStatus = "Lead"
	ProjectStatusQuoteSent  ProjectStatus = "Quote Sent"
	ProjectStatusScheduled  ProjectStatus = "Scheduled"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusCancelled  ProjectStatus = "Cancelled"
)

// IsValid reports whether s is one of the known project statuses
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusLead, ProjectStatusQuoteSent, ProjectStatusScheduled,
		ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// FinancialStatus tracks how far through payment a project is.
// The empty value means the status was never set.
type FinancialStatus string

const (
	FinancialStatusUnset              FinancialStatus = ""
	FinancialStatusAwaitingPayment    FinancialStatus = "Awaiting Payment"
	FinancialStatusInitialPaymentMade FinancialStatus = "Initial Payment Made"
	FinancialStatusSecondPaymentMade  FinancialStatus = "Second Payment Made"
	FinancialStatusBalancePaidInFull  FinancialStatus = "Balance Paid in Full"
	FinancialStatusWrittenOff         FinancialStatus = "Written Off"
	FinancialStatusCancelled          FinancialStatus = "Cancelled"
)

// Project is a job record owned by the hosted backend.
// Missing numeric fields decode to zero and missing enums to the empty value.
type Project struct {
	ID                string          `json:"id"`
	WorkspaceID       int32           `json:"workspaceId"`
	Name              string          `json:"name"`
	ClientName        string          `json:"clientName"`
	Status            ProjectStatus   `json:"status"`
	FinancialStatus   FinancialStatus `json:"financialStatus"`
	TotalProjectValue decimal.Decimal `json:"totalProjectValue"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
}

// IsDeleted returns true if the project has been soft-deleted
func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ProjectRepository defines the interface for project reads
type ProjectRepository interface {
	GetByID(ctx context.Context, workspaceID int32, id string) (*Project, error)
	GetByStatus(ctx context.Context, workspaceID int32, status ProjectStatus, excludeDeleted bool) ([]*Project, error)
}
