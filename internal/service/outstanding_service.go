package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// OutstandingService builds outstanding balance reports from the project and invoice stores
type OutstandingService struct {
	projectRepo domain.ProjectRepository
	invoiceRepo domain.InvoiceRepository
	policy      BalancePolicy
	now         func() time.Time
}

// NewOutstandingService creates a new OutstandingService
func NewOutstandingService(projectRepo domain.ProjectRepository, invoiceRepo domain.InvoiceRepository, policy BalancePolicy) *OutstandingService {
	return &OutstandingService{
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
		policy:      policy,
		now:         time.Now,
	}
}

// SetClock overrides the time source used to stamp reports
func (s *OutstandingService) SetClock(now func() time.Time) {
	s.now = now
}

// GetReport fetches completed projects and all invoices in parallel and resolves
// the outstanding balances once both have arrived
func (s *OutstandingService) GetReport(ctx context.Context, workspaceID int32) (*domain.OutstandingReport, error) {
	var (
		projects []*domain.Project
		invoices []*domain.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projectRepo.GetByStatus(gctx, workspaceID, domain.ProjectStatusCompleted, true)
		if err != nil {
			return fmt.Errorf("fetch completed projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		invoices, err = s.invoiceRepo.GetAllByWorkspace(gctx, workspaceID)
		if err != nil {
			return fmt.Errorf("fetch invoices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The caller may have given up while the fetches were in flight
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	balances, total := ResolveOutstanding(projects, invoices, s.policy)

	return &domain.OutstandingReport{
		WorkspaceID:  workspaceID,
		Balances:     balances,
		GrandTotal:   total,
		ProjectCount: len(balances),
		GeneratedAt:  s.now().UTC(),
	}, nil
}

// GetProjectBalance returns the outstanding balance row for a single project
func (s *OutstandingService) GetProjectBalance(ctx context.Context, workspaceID int32, projectID string) (*domain.ProjectBalance, error) {
	if _, err := s.projectRepo.GetByID(ctx, workspaceID, projectID); err != nil {
		return nil, err
	}

	report, err := s.GetReport(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	b := report.Find(projectID)
	if b == nil {
		return nil, domain.ErrProjectBalanceNotFound
	}
	return b, nil
}
