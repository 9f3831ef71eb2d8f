package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// InvoiceService handles the accounting invoice mirror
type InvoiceService struct {
	invoiceRepo    domain.InvoiceRepository
	eventPublisher websocket.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo domain.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *InvoiceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InvoiceService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// ListInvoices returns every invoice in the workspace, or only those linked to projectID when set
func (s *InvoiceService) ListInvoices(ctx context.Context, workspaceID int32, projectID string) ([]*domain.Invoice, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return s.invoiceRepo.GetAllByWorkspace(ctx, workspaceID)
	}
	return s.invoiceRepo.GetByProject(ctx, workspaceID, projectID)
}

// InvoiceInput is one invoice as pushed by the accounting integration
type InvoiceInput struct {
	ID            string
	ProjectID     string
	InvoiceNumber string
	Status        string
	AmountDue     decimal.Decimal
	Total         decimal.Decimal
	DueDate       *time.Time
}

// SyncResult summarizes a mirror sync
type SyncResult struct {
	Count    int               `json:"count"`
	Invoices []*domain.Invoice `json:"invoices"`
}

// SyncInvoices validates and upserts a batch of mirrored invoices in one transaction
func (s *InvoiceService) SyncInvoices(ctx context.Context, workspaceID int32, inputs []InvoiceInput) (*SyncResult, error) {
	if len(inputs) > domain.MaxInvoicesPerSync {
		return nil, domain.ErrTooManyInvoices
	}

	seen := make(map[string]bool, len(inputs))
	invoices := make([]*domain.Invoice, 0, len(inputs))
	for _, in := range inputs {
		inv, err := toInvoice(workspaceID, in)
		if err != nil {
			return nil, err
		}
		if seen[inv.ID] {
			return nil, domain.ErrDuplicateInvoiceInSync
		}
		seen[inv.ID] = true
		invoices = append(invoices, inv)
	}

	if len(invoices) == 0 {
		return &SyncResult{Invoices: []*domain.Invoice{}}, nil
	}

	saved, err := s.invoiceRepo.UpsertBatch(ctx, workspaceID, invoices)
	if err != nil {
		return nil, err
	}

	projectIDs := make([]string, 0)
	linked := make(map[string]bool)
	for _, inv := range saved {
		if inv.ProjectID != "" && !linked[inv.ProjectID] {
			linked[inv.ProjectID] = true
			projectIDs = append(projectIDs, inv.ProjectID)
		}
	}
	s.publishEvent(workspaceID, websocket.InvoicesSynced(map[string]interface{}{
		"count":      len(saved),
		"projectIds": projectIDs,
	}))

	return &SyncResult{Count: len(saved), Invoices: saved}, nil
}

func toInvoice(workspaceID int32, in InvoiceInput) (*domain.Invoice, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, domain.ErrInvoiceIDRequired
	}

	status := domain.NormalizeInvoiceStatus(in.Status)
	if !status.IsValid() {
		return nil, domain.ErrInvalidInvoiceStatus
	}

	if in.AmountDue.IsNegative() || in.Total.IsNegative() {
		return nil, domain.ErrInvoiceAmountNegative
	}

	return &domain.Invoice{
		ID:            id,
		WorkspaceID:   workspaceID,
		ProjectID:     strings.TrimSpace(in.ProjectID),
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Status:        status,
		AmountDue:     in.AmountDue,
		Total:         in.Total,
		DueDate:       in.DueDate,
	}, nil
}
