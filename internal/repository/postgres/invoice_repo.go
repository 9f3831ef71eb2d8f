package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository implements domain.InvoiceRepository using PostgreSQL
type InvoiceRepository struct {
	pool    *pgxpool.Pool
	queries *Queries
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{
		pool:    pool,
		queries: New(pool),
	}
}

// GetAllByWorkspace retrieves every mirrored invoice in a workspace
func (r *InvoiceRepository) GetAllByWorkspace(ctx context.Context, workspaceID int32) ([]*domain.Invoice, error) {
	rows, err := r.queries.db.Query(ctx, getInvoicesByWorkspace, workspaceID)
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

// GetByProject retrieves the invoices linked to one project
func (r *InvoiceRepository) GetByProject(ctx context.Context, workspaceID int32, projectID string) ([]*domain.Invoice, error) {
	rows, err := r.queries.db.Query(ctx, getInvoicesByProject, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

// UpsertBatch inserts or replaces invoices atomically
func (r *InvoiceRepository) UpsertBatch(ctx context.Context, workspaceID int32, invoices []*domain.Invoice) ([]*domain.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	qtx := r.queries.WithTx(tx)

	batch := &pgx.Batch{}
	for _, inv := range invoices {
		amountDue, err := decimalToPgNumeric(inv.AmountDue)
		if err != nil {
			return nil, fmt.Errorf("invalid amount due for invoice %s: %w", inv.ID, err)
		}
		total, err := decimalToPgNumeric(inv.Total)
		if err != nil {
			return nil, fmt.Errorf("invalid total for invoice %s: %w", inv.ID, err)
		}
		batch.Queue(upsertInvoice,
			inv.ID, workspaceID, stringToPgText(inv.ProjectID), stringToPgText(inv.InvoiceNumber),
			string(inv.Status), amountDue, total, timePtrToPgDate(inv.DueDate),
		)
	}

	results := qtx.db.SendBatch(ctx, batch)
	saved := make([]*domain.Invoice, 0, len(invoices))
	for range invoices {
		inv, err := scanInvoice(results.QueryRow())
		if err != nil {
			results.Close()
			return nil, err
		}
		saved = append(saved, inv)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func collectInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	defer rows.Close()

	result := make([]*domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv           domain.Invoice
		projectID     pgtype.Text
		invoiceNumber pgtype.Text
		status        string
		amountDue     pgtype.Numeric
		total         pgtype.Numeric
		dueDate       pgtype.Date
		updatedAt     pgtype.Timestamptz
	)
	err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &projectID, &invoiceNumber, &status,
		&amountDue, &total, &dueDate, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.ProjectID = projectID.String
	inv.InvoiceNumber = invoiceNumber.String
	inv.Status = domain.NormalizeInvoiceStatus(status)
	inv.AmountDue = pgNumericToDecimal(amountDue)
	inv.Total = pgNumericToDecimal(total)
	inv.DueDate = pgDateToPtr(dueDate)
	inv.UpdatedAt = updatedAt.Time
	return &inv, nil
}
