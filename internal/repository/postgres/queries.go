package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Queries holds the SQL used by the repositories
type Queries struct {
	db DBTX
}

// New creates a Queries bound to db
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const workspaceColumns = `w.id, w.name, w.created_at, w.updated_at`

const getWorkspaceByID = `SELECT ` + workspaceColumns + `
FROM workspaces w
WHERE w.id = $1`

const getWorkspaceByMemberAuth0ID = `SELECT ` + workspaceColumns + `
FROM workspaces w
JOIN workspace_members m ON m.workspace_id = w.id
WHERE m.auth0_id = $1
ORDER BY w.id
LIMIT 1`

const listWorkspaces = `SELECT ` + workspaceColumns + `
FROM workspaces w
ORDER BY w.id`

const projectColumns = `id, workspace_id, name, client_name, status, financial_status,
       total_project_value, completed_at, created_at, updated_at, deleted_at`

const getProjectByID = `SELECT ` + projectColumns + `
FROM projects
WHERE workspace_id = $1 AND id = $2`

const getProjectsByStatus = `SELECT ` + projectColumns + `
FROM projects
WHERE workspace_id = $1 AND status = $2 AND ($3::boolean = false OR deleted_at IS NULL)
ORDER BY id`

const invoiceColumns = `id, workspace_id, project_id, invoice_number, status, amount_due, total, due_date, updated_at`

const getInvoicesByWorkspace = `SELECT ` + invoiceColumns + `
FROM invoices
WHERE workspace_id = $1
ORDER BY id`

const getInvoicesByProject = `SELECT ` + invoiceColumns + `
FROM invoices
WHERE workspace_id = $1 AND project_id = $2
ORDER BY id`

const upsertInvoice = `INSERT INTO invoices (id, workspace_id, project_id, invoice_number, status, amount_due, total, due_date, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
ON CONFLICT (workspace_id, id) DO UPDATE SET
    project_id = EXCLUDED.project_id,
    invoice_number = EXCLUDED.invoice_number,
    status = EXCLUDED.status,
    amount_due = EXCLUDED.amount_due,
    total = EXCLUDED.total,
    due_date = EXCLUDED.due_date,
    updated_at = NOW()
RETURNING ` + invoiceColumns
