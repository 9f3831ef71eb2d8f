package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// snapshotTimeout bounds the report computed for a newly connected client
const snapshotTimeout = 5 * time.Second

// JWTValidator validates the query-string token and resolves the caller's workspace
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (workspaceID int32, err error)
}

// OutstandingReporter computes a workspace's current outstanding report
type OutstandingReporter interface {
	GetReport(ctx context.Context, workspaceID int32) (*domain.OutstandingReport, error)
}

// WebSocketHandler serves the receivables event stream
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	reports        OutstandingReporter
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. reports may be nil, in which case
// clients get no snapshot on connect and wait for the next change event.
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, reports OutstandingReporter, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		reports:        reports,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin allows same-origin requests (no Origin header) and the console origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS godoc
// @Summary      Receivables event stream
// @Description  Upgrades to a WebSocket. The first message is an outstanding.snapshot with the
// @Description  workspace's current grand total; invoice.synced and outstanding.refreshed follow.
// @Tags         websocket
// @Param        token  query  string  true  "Auth0 access token"
// @Success      101
// @Failure      401  {object}  ProblemDetails
// @Router       /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return NewUnauthorizedError(c, "Missing token query parameter")
	}

	workspaceID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return NewUnauthorizedError(c, "Invalid or expired token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the handshake error response
		log.Warn().Err(err).Int32("workspace_id", workspaceID).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, workspaceID, h.hub)
	h.hub.Register(client)

	// Registered before the snapshot is computed so no change event is missed in between
	h.sendSnapshot(c.Request().Context(), client)

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

func (h *WebSocketHandler) sendSnapshot(ctx context.Context, client *websocket.Client) {
	if h.reports == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	report, err := h.reports.GetReport(ctx, client.WorkspaceID())
	if err != nil {
		// Client stays connected; it will reconcile on the next outstanding.refreshed
		log.Warn().Err(err).Int32("workspace_id", client.WorkspaceID()).Msg("Failed to build outstanding snapshot")
		return
	}

	data, err := websocket.OutstandingSnapshot(outstandingFingerprint(report)).ToJSON()
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", client.WorkspaceID()).Msg("Failed to serialize outstanding snapshot")
		return
	}
	if err := client.Send(data); err != nil {
		log.Warn().Err(err).Str("client_id", client.ID()).Msg("Failed to queue outstanding snapshot")
	}
}

// outstandingFingerprint is the part of a report clients compare to decide whether to refetch
func outstandingFingerprint(report *domain.OutstandingReport) map[string]interface{} {
	return map[string]interface{}{
		"grandTotal":   report.GrandTotal.StringFixed(2),
		"projectCount": report.ProjectCount,
		"generatedAt":  report.GeneratedAt.Format(time.RFC3339),
	}
}
