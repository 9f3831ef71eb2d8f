package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/repository/storage"
)

// DefaultExportExpiry is how long an export download link stays valid
const DefaultExportExpiry = 15 * time.Minute

var outstandingCSVHeader = []string{
	"project_id", "project_name", "client", "financial_status",
	"invoice_count", "qualifying_invoices", "source", "outstanding_balance",
}

// ReportExportService renders reports to CSV and stores them for download
type ReportExportService struct {
	outstanding *OutstandingService
	storage     storage.ReportRepository
	expiry      time.Duration
	now         func() time.Time
}

// NewReportExportService creates a new ReportExportService. storage may be nil when no bucket is configured.
func NewReportExportService(outstanding *OutstandingService, storage storage.ReportRepository, expiry time.Duration) *ReportExportService {
	if expiry <= 0 {
		expiry = DefaultExportExpiry
	}
	return &ReportExportService{
		outstanding: outstanding,
		storage:     storage,
		expiry:      expiry,
		now:         time.Now,
	}
}

// IsEnabled indicates whether exports can be stored
func (s *ReportExportService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Export builds the workspace's outstanding report, uploads it as CSV and returns a download link
func (s *ReportExportService) Export(ctx context.Context, workspaceID int32) (*domain.ReportExport, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrReportStorageNotConfigured
	}

	report, err := s.outstanding.GetReport(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	data, err := WriteOutstandingCSV(report)
	if err != nil {
		return nil, fmt.Errorf("render outstanding csv: %w", err)
	}

	now := s.now()
	objectPath := storage.GenerateReportPath(workspaceID, "outstanding", now, ".csv")
	if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(data), "text/csv", int64(len(data))); err != nil {
		return nil, err
	}

	url, err := s.storage.GeneratePresignedURL(ctx, objectPath, s.expiry)
	if err != nil {
		return nil, err
	}

	return &domain.ReportExport{
		ObjectPath:   objectPath,
		URL:          url,
		ExpiresAt:    now.Add(s.expiry).UTC(),
		ProjectCount: report.ProjectCount,
		GrandTotal:   report.GrandTotal,
	}, nil
}

// WriteOutstandingCSV renders a report as CSV with a trailing TOTAL row
func WriteOutstandingCSV(report *domain.OutstandingReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(outstandingCSVHeader); err != nil {
		return nil, err
	}
	for _, b := range report.Balances {
		row := []string{
			b.Project.ID,
			b.Project.Name,
			b.Project.ClientName,
			string(b.Project.FinancialStatus),
			strconv.Itoa(b.InvoiceCount),
			strconv.Itoa(b.QualifyingInvoices),
			string(b.Source),
			b.OutstandingBalance.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"TOTAL", "", "", "", "", "", "", report.GrandTotal.StringFixed(2)}); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
