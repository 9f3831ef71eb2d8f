package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrSendBufferFull is returned when a client is not draining its queue
	ErrSendBufferFull = errors.New("client send buffer full")
)

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub tracks connected clients per workspace. It is safe for concurrent use.
type Hub struct {
	rooms map[int32]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client to its workspace room
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.WorkspaceID()]
	if !ok {
		room = make(map[string]ClientInterface)
		h.rooms[client.WorkspaceID()] = room
	}
	room[client.ID()] = client

	log.Debug().
		Int32("workspace_id", client.WorkspaceID()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client; unknown clients are ignored
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.WorkspaceID()]
	if !ok {
		return
	}
	if _, exists := room[client.ID()]; !exists {
		return
	}
	delete(room, client.ID())
	if len(room) == 0 {
		delete(h.rooms, client.WorkspaceID())
	}

	log.Debug().
		Int32("workspace_id", client.WorkspaceID()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every client in a workspace without holding the lock during sends
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	recipients := h.snapshot(workspaceID)
	if len(recipients) == 0 {
		return
	}

	for _, client := range recipients {
		go func(c ClientInterface) {
			err := c.Send(data)
			if err == nil {
				return
			}
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("client_id", c.ID()).
				Msg("Failed to send to client")
			// slow clients are dropped so they reconnect and refetch
			if errors.Is(err, ErrSendBufferFull) {
				h.Unregister(c)
				c.Close()
			}
		}(client)
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(recipients)).
		Msg("Broadcast event")
}

func (h *Hub) snapshot(workspaceID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[workspaceID]
	out := make([]ClientInterface, 0, len(room))
	for _, c := range room {
		out = append(out, c)
	}
	return out
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[workspaceID])
}

// CloseAll disconnects every client, used on server shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[int32]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for _, room := range rooms {
		for _, c := range room {
			if err := c.Close(); err != nil {
				log.Debug().Err(err).Str("client_id", c.ID()).Msg("Error closing WebSocket client")
			}
			closed++
		}
	}
	log.Info().Int("client_count", closed).Msg("Closed all WebSocket clients")
}
