// Package snapshot decodes project and invoice exports taken from the hosted
// backend so a report can be resolved without a database.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Amount decodes a money value written as a JSON number or numeric string.
// null and "" decode to zero. Any other value that is not a number also decodes to
// zero and is kept in Malformed so the caller can report it.
type Amount struct {
	decimal.Decimal
	Malformed string
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = decimal.Zero
	a.Malformed = ""

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	raw := string(trimmed)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			a.Malformed = raw
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		a.Malformed = string(trimmed)
		return nil
	}
	a.Decimal = d
	return nil
}

// Timestamp decodes an RFC 3339 timestamp or a YYYY-MM-DD date. null and "" leave it unset.
type Timestamp struct {
	Time *time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		t.Time = nil
		return nil
	}

	raw := strings.TrimSpace(*s)
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(dateLayout, raw)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", raw)
		}
	}
	parsed = parsed.UTC()
	t.Time = &parsed
	return nil
}

type projectRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ClientName        string    `json:"client_name"`
	Status            string    `json:"status"`
	FinancialStatus   *string   `json:"financial_status"`
	TotalProjectValue Amount    `json:"total_project_value"`
	CompletedAt       Timestamp `json:"completed_at"`
	DeletedAt         Timestamp `json:"deleted_at"`
}

type invoiceRecord struct {
	ID            string    `json:"id"`
	ProjectID     *string   `json:"project_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Status        string    `json:"status"`
	AmountDue     Amount    `json:"amount_due"`
	Total         Amount    `json:"total"`
	DueDate       Timestamp `json:"due_date"`
}

// DecodeProjects reads a JSON array of projects
func DecodeProjects(r io.Reader) ([]*domain.Project, error) {
	var records []projectRecord
	if err := decodeArray(r, &records); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("decode projects: record %d has no id", i)
		}
		p := &domain.Project{
			ID:                rec.ID,
			Name:              rec.Name,
			ClientName:        rec.ClientName,
			Status:            domain.ProjectStatus(strings.TrimSpace(rec.Status)),
			TotalProjectValue: rec.TotalProjectValue.Decimal,
			CompletedAt:       rec.CompletedAt.Time,
			DeletedAt:         rec.DeletedAt.Time,
		}
		warnMalformed("project", rec.ID, "total_project_value", rec.TotalProjectValue)
		if rec.FinancialStatus != nil {
			p.FinancialStatus = domain.FinancialStatus(strings.TrimSpace(*rec.FinancialStatus))
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// DecodeInvoices reads a JSON array of invoices
func DecodeInvoices(r io.Reader) ([]*domain.Invoice, error) {
	var records []invoiceRecord
	if err := decodeArray(r, &records); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}

	invoices := make([]*domain.Invoice, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("decode invoices: record %d has no id", i)
		}
		inv := &domain.Invoice{
			ID:            rec.ID,
			InvoiceNumber: rec.InvoiceNumber,
			Status:        domain.NormalizeInvoiceStatus(rec.Status),
			AmountDue:     rec.AmountDue.Decimal,
			Total:         rec.Total.Decimal,
			DueDate:       rec.DueDate.Time,
		}
		warnMalformed("invoice", rec.ID, "amount_due", rec.AmountDue)
		warnMalformed("invoice", rec.ID, "total", rec.Total)
		if rec.ProjectID != nil {
			inv.ProjectID = strings.TrimSpace(*rec.ProjectID)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// LoadProjects decodes the projects file at path
func LoadProjects(path string) ([]*domain.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeProjects(f)
}

// LoadInvoices decodes the invoices file at path
func LoadInvoices(path string) ([]*domain.Invoice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeInvoices(f)
}

func warnMalformed(kind, id, field string, a Amount) {
	if a.Malformed == "" {
		return
	}
	log.Warn().
		Str("component", "snapshot").
		Str("record", kind).
		Str("id", id).
		Str("field", field).
		Str("value", a.Malformed).
		Msg("Malformed amount treated as zero")
}

func decodeArray(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after array")
	}
	return nil
}
