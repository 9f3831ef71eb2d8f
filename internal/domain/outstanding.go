package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProjectBalanceNotFound     = errors.New("project has no outstanding balance")
	ErrReportStorageNotConfigured = errors.New("report storage not configured")
)

// BalanceSource records which rule produced an outstanding balance
type BalanceSource string

const (
	// BalanceSourceInvoices means the balance is the sum of qualifying invoices
	BalanceSourceInvoices BalanceSource = "invoices"
	// BalanceSourceProjectValue means the project had no invoices and the contract value was used
	BalanceSourceProjectValue BalanceSource = "project_value"
)

// ProjectBalance is one row of the outstanding report
type ProjectBalance struct {
	Project            *Project        `json:"project"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	Source             BalanceSource   `json:"source"`
	QualifyingInvoices int             `json:"qualifyingInvoices"`
	InvoiceCount       int             `json:"invoiceCount"`
}

// OutstandingReport is the ranked list of money still owed on completed work
type OutstandingReport struct {
	WorkspaceID  int32             `json:"workspaceId"`
	Balances     []*ProjectBalance `json:"balances"`
	GrandTotal   decimal.Decimal   `json:"grandTotal"`
	ProjectCount int               `json:"projectCount"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// Find returns the balance row for a project, or nil if the project is not in the report
func (r *OutstandingReport) Find(projectID string) *ProjectBalance {
	for _, b := range r.Balances {
		if b.Project.ID == projectID {
			return b
		}
	}
	return nil
}

// ReportExport describes an uploaded report file
type ReportExport struct {
	ObjectPath   string          `json:"objectPath"`
	URL          string          `json:"url"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	ProjectCount int             `json:"projectCount"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
}
