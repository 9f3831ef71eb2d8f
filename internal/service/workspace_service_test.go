package service

import (
	"testing"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceService_GetWorkspaceByAuth0ID(t *testing.T) {
	repo := testutil.NewMockWorkspaceRepository()
	repo.AddWorkspace(&domain.Workspace{ID: 3, Name: "Eastgate Electrical"}, "auth0|dispatch")
	svc := NewWorkspaceService(repo)

	ws, err := svc.GetWorkspaceByAuth0ID("auth0|dispatch")
	require.NoError(t, err)
	assert.Equal(t, int32(3), ws.ID)

	_, err = svc.GetWorkspaceByAuth0ID("auth0|stranger")
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)

	_, err = svc.GetWorkspaceByAuth0ID("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

