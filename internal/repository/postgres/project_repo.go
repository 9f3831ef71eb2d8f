package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository implements domain.ProjectRepository using PostgreSQL
type ProjectRepository struct {
	pool    *pgxpool.Pool
	queries *Queries
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		pool:    pool,
		queries: New(pool),
	}
}

// GetByID retrieves a project by its ID within a workspace, including soft-deleted ones
func (r *ProjectRepository) GetByID(ctx context.Context, workspaceID int32, id string) (*domain.Project, error) {
	project, err := scanProject(r.queries.db.QueryRow(ctx, getProjectByID, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// GetByStatus retrieves the workspace's projects in the given status ordered by ID
func (r *ProjectRepository) GetByStatus(ctx context.Context, workspaceID int32, status domain.ProjectStatus, excludeDeleted bool) ([]*domain.Project, error) {
	rows, err := r.queries.db.Query(ctx, getProjectsByStatus, workspaceID, string(status), excludeDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p               domain.Project
		clientName      pgtype.Text
		status          string
		financialStatus pgtype.Text
		value           pgtype.Numeric
		completedAt     pgtype.Timestamptz
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
		deletedAt       pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID, &p.WorkspaceID, &p.Name, &clientName, &status, &financialStatus,
		&value, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ClientName = clientName.String
	p.Status = domain.ProjectStatus(status)
	p.FinancialStatus = domain.FinancialStatus(financialStatus.String)
	p.TotalProjectValue = pgNumericToDecimal(value)
	p.CompletedAt = pgTimestamptzToPtr(completedAt)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	p.DeletedAt = pgTimestamptzToPtr(deletedAt)
	return &p, nil
}
