package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockJWTValidator struct {
	workspaceID int32
	err         error
}

func (m *mockJWTValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	return m.workspaceID, m.err
}

type mockOutstandingReporter struct {
	mu      sync.Mutex
	reports map[int32]*domain.OutstandingReport
	err     error
	calls   []int32
}

func (m *mockOutstandingReporter) GetReport(ctx context.Context, workspaceID int32) (*domain.OutstandingReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, workspaceID)
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.reports[workspaceID]; ok {
		return r, nil
	}
	return &domain.OutstandingReport{WorkspaceID: workspaceID, GrandTotal: decimal.Zero}, nil
}

func (m *mockOutstandingReporter) Calls() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int32, len(m.calls))
	copy(out, m.calls)
	return out
}

const testConsoleOrigin = "https://ops.fieldops.app"

// startWSServer serves HandleWS on a real listener so the handshake and first frame can be observed
func startWSServer(t *testing.T, validator JWTValidator, reports OutstandingReporter) (*websocket.Hub, string) {
	t.Helper()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, validator, reports, []string{testConsoleOrigin})

	e := echo.New()
	e.GET("/ws", h.HandleWS)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.CloseAll()
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialWS(t *testing.T, url string, origin string) (*ws.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := ws.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func TestWebSocketHandler_SendsOutstandingSnapshotOnConnect(t *testing.T) {
	reports := &mockOutstandingReporter{reports: map[int32]*domain.OutstandingReport{
		7: {
			WorkspaceID:  7,
			GrandTotal:   decimal.RequireFromString("1250"),
			ProjectCount: 2,
			GeneratedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
	}}
	hub, url := startWSServer(t, &mockJWTValidator{workspaceID: 7}, reports)

	conn, _, err := dialWS(t, url+"?token=valid-jwt", testConsoleOrigin)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt struct {
		Type    string                 `json:"type"`
		Entity  string                 `json:"entity"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&evt))

	assert.Equal(t, "outstanding.snapshot", evt.Type)
	assert.Equal(t, "outstanding", evt.Entity)
	assert.Equal(t, "1250.00", evt.Payload["grandTotal"])
	assert.Equal(t, float64(2), evt.Payload["projectCount"])
	assert.Equal(t, "2026-03-02T09:00:00Z", evt.Payload["generatedAt"])
	assert.Equal(t, 1, hub.ClientCount(7))
	assert.Equal(t, []int32{7}, reports.Calls())
}

func TestWebSocketHandler_ChangeEventsFollowSnapshot(t *testing.T) {
	hub, url := startWSServer(t, &mockJWTValidator{workspaceID: 3}, &mockOutstandingReporter{})

	conn, _, err := dialWS(t, url+"?token=valid-jwt", "")
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var snapshot websocket.Event
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "outstanding.snapshot", snapshot.Type)
	assert.Equal(t, "0.00", snapshot.Payload.(map[string]interface{})["grandTotal"])

	hub.Broadcast(3, websocket.OutstandingRefreshed(map[string]interface{}{"grandTotal": "40.00"}))

	var refreshed websocket.Event
	require.NoError(t, conn.ReadJSON(&refreshed))
	assert.Equal(t, "outstanding.refreshed", refreshed.Type)
	assert.Equal(t, "40.00", refreshed.Payload.(map[string]interface{})["grandTotal"])
}

func TestWebSocketHandler_ReportFailureKeepsConnection(t *testing.T) {
	reports := &mockOutstandingReporter{err: errors.New("connection refused")}
	hub, url := startWSServer(t, &mockJWTValidator{workspaceID: 5}, reports)

	conn, _, err := dialWS(t, url+"?token=valid-jwt", testConsoleOrigin)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(5, websocket.InvoicesSynced(map[string]interface{}{"count": 1}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt websocket.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "invoice.synced", evt.Type)
}

func TestWebSocketHandler_NilReporterSkipsSnapshot(t *testing.T) {
	hub, url := startWSServer(t, &mockJWTValidator{workspaceID: 9}, nil)

	_, _, err := dialWS(t, url+"?token=valid-jwt", "")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return hub.ClientCount(9) == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RejectsBeforeUpgrade(t *testing.T) {
	tests := []struct {
		name       string
		validator  *mockJWTValidator
		query      string
		origin     string
		wantStatus int
	}{
		{"missing token", &mockJWTValidator{workspaceID: 1}, "", testConsoleOrigin, http.StatusUnauthorized},
		{"invalid token", &mockJWTValidator{err: errors.New("token expired")}, "?token=stale", testConsoleOrigin, http.StatusUnauthorized},
		{"foreign origin", &mockJWTValidator{workspaceID: 1}, "?token=valid-jwt", "https://evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &mockOutstandingReporter{}
			hub, url := startWSServer(t, tt.validator, reports)

			_, resp, err := dialWS(t, url+tt.query, tt.origin)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, 0, hub.ClientCount(1))
			assert.Empty(t, reports.Calls())
		})
	}
}

func TestWebSocketHandler_UnauthorizedIsProblemJSON(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{err: errors.New("bad signature")}, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws?token=forged", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.HandleWS(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	p := decodeProblem(t, rec.Body.Bytes())
	assert.Equal(t, ErrorTypeUnauthorized, p.Type)
	assert.Equal(t, "Invalid or expired token", p.Detail)
}
