package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceIDRequired      = errors.New("invoice id is required")
	ErrInvalidInvoiceStatus   = errors.New("invalid invoice status")
	ErrInvoiceAmountNegative  = errors.New("invoice amounts must not be negative")
	ErrTooManyInvoices        = errors.New("too many invoices in one sync")
	ErrDuplicateInvoiceInSync = errors.New("invoice appears more than once in sync")
)

// MaxInvoicesPerSync caps a single mirror sync batch
const MaxInvoicesPerSync = 500

// InvoiceStatus mirrors the accounting system's invoice states
type InvoiceStatus string

const (
	InvoiceStatusDraft      InvoiceStatus = "DRAFT"
	InvoiceStatusSubmitted  InvoiceStatus = "SUBMITTED"
	InvoiceStatusAuthorised InvoiceStatus = "AUTHORISED"
	InvoiceStatusOverdue    InvoiceStatus = "OVERDUE"
	InvoiceStatusPaid       InvoiceStatus = "PAID"
	InvoiceStatusVoided     InvoiceStatus = "VOIDED"
	InvoiceStatusDeleted    InvoiceStatus = "DELETED"
)

// NormalizeInvoiceStatus trims and upper-cases a raw status string
func NormalizeInvoiceStatus(raw string) InvoiceStatus {
	return InvoiceStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsValid reports whether s is a known accounting status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSubmitted, InvoiceStatusAuthorised,
		InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusVoided, InvoiceStatusDeleted:
		return true
	}
	return false
}

// Invoice is a mirrored accounting invoice. ProjectID is empty when the
// invoice is not linked to a job.
type Invoice struct {
	ID            string          `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	ProjectID     string          `json:"projectId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Status        InvoiceStatus   `json:"status"`
	AmountDue     decimal.Decimal `json:"amountDue"`
	Total         decimal.Decimal `json:"total"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InvoiceRepository defines the interface for invoice mirror persistence
type InvoiceRepository interface {
	GetAllByWorkspace(ctx context.Context, workspaceID int32) ([]*Invoice, error)
	GetByProject(ctx context.Context, workspaceID int32, projectID string) ([]*Invoice, error)
	UpsertBatch(ctx context.Context, workspaceID int32, invoices []*Invoice) ([]*Invoice, error)
}
