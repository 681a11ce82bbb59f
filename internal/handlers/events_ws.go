package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/noblinks/noblinks/internal/middleware"
)

// Alert event types pushed over the events websocket
const (
	EventAlertCreated       = "alert_created"
	EventAlertStatusChanged = "alert_status_changed"
	EventAlertDeleted       = "alert_deleted"
)

// Event is one message on the events feed
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// eventsClient is one connected UI subscriber
type eventsClient struct {
	conn  *websocket.Conn
	orgID string
}

// EventsHub pushes alert lifecycle events to connected UI clients over a
// websocket. Events are scoped: a client only receives events for its own
// organization.
type EventsHub struct {
	upgrader websocket.Upgrader
	jwtAuth  *middleware.JWTAuthMiddleware
	mu       sync.Mutex
	clients  map[*eventsClient]bool
}

// NewEventsHub creates a new events hub
func NewEventsHub(jwtAuth *middleware.JWTAuthMiddleware) *EventsHub {
	return &EventsHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin access is controlled by the token check below;
			// browsers cannot set Authorization headers on websockets.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		jwtAuth: jwtAuth,
		clients: make(map[*eventsClient]bool),
	}
}

// HandleWS handles GET /api/events?token=. The JWT travels as a query
// parameter because websocket clients cannot send an Authorization header.
func (h *EventsHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtAuth.ValidateToken(token)
	if err != nil {
		log.Printf("EventsHub: invalid token from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("EventsHub: upgrade failed: %v", err)
		return
	}

	client := &eventsClient{conn: conn, orgID: claims.OrganizationID}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Printf("EventsHub: client connected (org %s)", client.orgID)

	// Drain incoming frames so pings and close messages are processed;
	// the feed is one-way.
	go func() {
		defer h.remove(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastToOrg sends an event to every connected client of the given
// organization. Delivery is best effort: a failed write drops the client.
func (h *EventsHub) BroadcastToOrg(orgID, eventType string, data interface{}) {
	if h == nil {
		return
	}
	event := Event{Type: eventType, Data: data, Timestamp: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.orgID != orgID {
			continue
		}
		if err := client.conn.WriteJSON(event); err != nil {
			log.Printf("EventsHub: dropping client (org %s): %v", client.orgID, err)
			client.conn.Close()
			delete(h.clients, client)
		}
	}
}

// remove unregisters and closes a client
func (h *EventsHub) remove(client *eventsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		client.conn.Close()
		delete(h.clients, client)
	}
}
