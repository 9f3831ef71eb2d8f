package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool    *pgxpool.Pool
	queries *Queries
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{
		pool:    pool,
		queries: New(pool),
	}
}

// GetByID retrieves a workspace by its ID
func (r *WorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	row := r.queries.db.QueryRow(context.Background(), getWorkspaceByID, id)
	workspace, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return workspace, nil
}

// GetByMemberAuth0ID retrieves the workspace an Auth0 user belongs to
func (r *WorkspaceRepository) GetByMemberAuth0ID(auth0ID string) (*domain.Workspace, error) {
	row := r.queries.db.QueryRow(context.Background(), getWorkspaceByMemberAuth0ID, auth0ID)
	workspace, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return workspace, nil
}

// GetAllWorkspaces returns every workspace ordered by ID
func (r *WorkspaceRepository) GetAllWorkspaces() ([]*domain.Workspace, error) {
	rows, err := r.queries.db.Query(context.Background(), listWorkspaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Workspace, 0)
	for rows.Next() {
		workspace, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, workspace)
	}
	return result, rows.Err()
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var (
		w         domain.Workspace
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&w.ID, &w.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time
	return &w, nil
}
