package websocket

// EventPublisher pushes events to the clients of one workspace
type EventPublisher interface {
	// Publish sends an event to every console connected to the workspace.
	// It must not block on slow clients.
	Publish(workspaceID int32, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the workspace room
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher discards events; used by the CLI and when realtime is disabled
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}
