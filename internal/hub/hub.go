// Package hub tracks live client connections, their generation stop flags,
// and fans structural change events out to every connected client.
package hub

import (
	"log"
	"sync"
)

// Event is a structural change notification pushed to connected clients.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Role           string `json:"role,omitempty"`
	Summary        string `json:"summary,omitempty"`
}

func ConversationCreated(conversationID string) Event {
	return Event{Type: "conversation_created", ConversationID: conversationID}
}

func ConversationDeleted(conversationID string) Event {
	return Event{Type: "conversation_deleted", ConversationID: conversationID}
}

func MessageAdded(conversationID, messageID string) Event {
	return Event{Type: "message_added", ConversationID: conversationID, MessageID: messageID}
}

func MessageEdited(messageID, content, role string) Event {
	return Event{Type: "message_edited", MessageID: messageID, Content: content, Role: role}
}

func SummaryUpdated(conversationID, summary string) Event {
	return Event{Type: "summary_updated", ConversationID: conversationID, Summary: summary}
}

// Conn is one client's notification channel. The WebSocket handler provides
// the real implementation; tests substitute fakes.
type Conn interface {
	Send(Event) error
}

// Hub maps client ids to their connections and to a per-client "generation
// still wanted" flag. All methods are safe for concurrent use.
type Hub struct {
	mu         sync.Mutex
	conns      map[string]Conn
	generating map[string]bool
}

func New() *Hub {
	return &Hub{
		conns:      make(map[string]Conn),
		generating: make(map[string]bool),
	}
}

// Register records a client's connection and resets its generation flag.
func (h *Hub) Register(clientID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[clientID] = conn
	h.generating[clientID] = false
}

// Unregister drops both entries for the client. Idempotent.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, clientID)
	delete(h.generating, clientID)
}

// SetGenerating flips the client's generation flag. Unknown clients are a
// no-op: a flag must never outlive its registration.
func (h *Hub) SetGenerating(clientID string, generating bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[clientID]; !ok {
		return
	}
	h.generating[clientID] = generating
}

// ShouldStop reports whether generation for the client must stop. Unknown
// clients stop: generation never runs unbounded for a client that never
// registered or already disconnected.
func (h *Hub) ShouldStop(clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.generating[clientID]
}

// Broadcast sends the event to every registered connection. Best effort: a
// failed send is logged and skipped, and does not unregister the client.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	conns := make(map[string]Conn, len(h.conns))
	for id, c := range h.conns {
		conns[id] = c
	}
	h.mu.Unlock()

	for id, c := range conns {
		if err := c.Send(ev); err != nil {
			log.Printf("hub: broadcast to client=%s failed type=%s err=%v", id, ev.Type, err)
		}
	}
}
