package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

// fakeValidator accepts exactly one token
type fakeValidator struct {
	token   string
	subject string
	claims  interface{}
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != f.token {
		return nil, errors.New("signature invalid")
	}
	if f.claims != nil {
		return f.claims, nil
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: f.subject},
		CustomClaims:     &CustomClaims{Email: "ops@northside.test"},
	}, nil
}

// MockWorkspaceProvider implements WorkspaceProvider for testing
type MockWorkspaceProvider struct {
	workspaceID int32
	err         error
}

func (m *MockWorkspaceProvider) GetWorkspaceByAuth0ID(auth0ID string) (int32, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.workspaceID, nil
}

func runAuth(t *testing.T, m *AuthMiddleware, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivables/outstanding", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var seen echo.Context
	err := m.Authenticate()(func(c echo.Context) error {
		called = true
		seen = c
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, seen, called
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(
		&fakeValidator{token: "good", subject: "auth0|ops"},
		&MockWorkspaceProvider{workspaceID: 42},
	)

	rec, c, called := runAuth(t, m, "Bearer good")
	if !called {
		t.Fatal("Expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if got := GetWorkspaceID(c); got != 42 {
		t.Errorf("Expected workspace 42, got %d", got)
	}
	if got := GetAuth0ID(c); got != "auth0|ops" {
		t.Errorf("Expected auth0|ops, got %q", got)
	}
	if GetClaims(c) == nil {
		t.Error("Expected claims in context")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		provider WorkspaceProvider
		claims   interface{}
	}{
		{"missing header", "", &MockWorkspaceProvider{workspaceID: 1}, nil},
		{"no bearer prefix", "good", &MockWorkspaceProvider{workspaceID: 1}, nil},
		{"wrong scheme", "Basic good", &MockWorkspaceProvider{workspaceID: 1}, nil},
		{"empty token", "Bearer   ", &MockWorkspaceProvider{workspaceID: 1}, nil},
		{"invalid token", "Bearer forged", &MockWorkspaceProvider{workspaceID: 1}, nil},
		{"unexpected claims type", "Bearer good", &MockWorkspaceProvider{workspaceID: 1}, "not-claims"},
		{"no workspace", "Bearer good", &MockWorkspaceProvider{err: errors.New("no rows")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddlewareWithValidator(
				&fakeValidator{token: "good", subject: "auth0|ops", claims: tt.claims},
				tt.provider,
			)

			rec, _, called := runAuth(t, m, tt.header)
			if called {
				t.Error("Handler should not be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rec.Code)
			}

			var body problemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Expected problem details body: %v", err)
			}
			if body.Type != errorTypeUnauthorized {
				t.Errorf("Expected type %q, got %q", errorTypeUnauthorized, body.Type)
			}
			if body.Instance != "/api/v1/receivables/outstanding" {
				t.Errorf("Expected instance path, got %q", body.Instance)
			}
		})
	}
}

func TestAuthMiddleware_NilProviderSkipsWorkspace(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{token: "good", subject: "auth0|ops"}, nil)

	_, c, called := runAuth(t, m, "bearer good")
	if !called {
		t.Fatal("Expected handler to be called")
	}
	if got := GetWorkspaceID(c); got != 0 {
		t.Errorf("Expected no workspace, got %d", got)
	}
}

func TestGetAuth0ID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns auth0 id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), Auth0IDKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			if result := GetAuth0ID(c); result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetWorkspaceID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected int32
	}{
		{
			name: "returns workspace id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, int32(42))
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: 42,
		},
		{
			name:     "returns 0 when not present",
			setup:    func(c echo.Context) {},
			expected: 0,
		},
		{
			name: "returns 0 for a value of the wrong type",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, 42)
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			if result := GetWorkspaceID(c); result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{Email: "ops@northside.test", Name: "Ops"}

	if err := claims.Validate(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
