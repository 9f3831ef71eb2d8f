package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/fieldops/fieldops-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// setupAuthContextWithWorkspace sets up auth context the way AuthMiddleware does
func setupAuthContextWithWorkspace(c echo.Context, auth0ID, email, name string, workspaceID int32) {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: &middleware.CustomClaims{
			Email: email,
			Name:  name,
		},
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	if workspaceID > 0 {
		ctx = context.WithValue(ctx, middleware.WorkspaceIDKey, workspaceID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

func decodeProblem(t *testing.T, body []byte) ProblemDetails {
	t.Helper()
	var p ProblemDetails
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return p
}
