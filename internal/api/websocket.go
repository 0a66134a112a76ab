package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"trivia-arena/internal/game"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		// Log rejected origin for security monitoring
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection, its source IP and the match it
// subscribed to
type wsClient struct {
	conn    *websocket.Conn
	ip      string
	matchID string
}

// wsMessage is one outbound message addressed to a match's subscribers
type wsMessage struct {
	matchID string
	payload []byte
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// Clients subscribe to a single match, receive that match's traffic and may
// send input envelopes back over the same socket.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan wsMessage
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// Inbound input envelopes are queued on the registry
	registry *game.Registry

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a new hub with connection limiting. Inbound input
// envelopes are routed to the registry's match queues.
func NewWebSocketHub(registry *game.Registry) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan wsMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		registry:   registry,
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("📱 Client connected from %s to match %s (%d total)", client.ip, client.matchID, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				// Release the connection slot for this IP
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn, client := range h.clients {
				if client.matchID != message.matchID {
					continue
				}
				err := conn.WriteMessage(websocket.TextMessage, message.payload)
				if err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if c, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(c.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast sends a message to every client subscribed to the match
func (h *WebSocketHub) Broadcast(matchID, event string, data interface{}) error {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- wsMessage{matchID: matchID, payload: jsonBytes}:
	default:
		// Channel full, skip (backpressure)
	}
	return nil
}

// BroadcastFunc returns a per-match broadcast closure for the simulation
func (h *WebSocketHub) BroadcastFunc(matchID string) func(event string, data any) error {
	return func(event string, data any) error {
		return h.Broadcast(matchID, event, data)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MatchClientCount returns the number of clients subscribed to one match
func (h *WebSocketHub) MatchClientCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, c := range h.clients {
		if c.matchID == matchID {
			count++
		}
	}
	return count
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection.
// The match id comes from the route.
func (h *WebSocketHub) HandleWebSocket(matchID string, w http.ResponseWriter, r *http.Request) {
	// Get client IP for rate limiting
	ip := GetClientIP(r)

	// Check total connection limit
	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	// Check per-IP connection limit
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	// Upgrade to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip) // Release the slot we reserved
		return
	}

	// Register the connection
	client := &wsClient{conn: conn, ip: ip, matchID: matchID}
	h.register <- client

	// Read loop routes client input envelopes to the match queues
	go func() {
		defer func() {
			h.unregister <- conn
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			h.routeInput(matchID, raw)
		}
	}()
}

// wsInputEnvelope is one inbound client frame: t selects the input kind and
// d carries the kind-specific payload.
type wsInputEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d"`
}

// routeInput queues an inbound envelope on its match. Malformed frames and
// unknown kinds are dropped silently, like the HTTP input endpoints.
func (h *WebSocketHub) routeInput(matchID string, raw []byte) {
	if h.registry == nil {
		return
	}

	var env wsInputEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.T {
	case "move":
		var d struct {
			PlayerID string  `json:"playerId"`
			X        float64 `json:"x"`
			Y        float64 `json:"y"`
			DX       float64 `json:"dx"`
			DY       float64 `json:"dy"`
			Seq      uint32  `json:"seq"`
			ClientTS int64   `json:"clientTs"`
		}
		if err := json.Unmarshal(env.D, &d); err != nil {
			return
		}
		h.registry.QueueMovement(matchID, game.MovementInput{
			PlayerID: d.PlayerID,
			X:        d.X,
			Y:        d.Y,
			DX:       d.DX,
			DY:       d.DY,
			Seq:      d.Seq,
			ClientTS: time.UnixMilli(d.ClientTS),
		})

	case "fire":
		var d struct {
			PlayerID string  `json:"playerId"`
			X        float64 `json:"x"`
			Y        float64 `json:"y"`
			DirX     float64 `json:"dirX"`
			DirY     float64 `json:"dirY"`
			ClientTS int64   `json:"clientTs"`
		}
		if err := json.Unmarshal(env.D, &d); err != nil {
			return
		}
		h.registry.QueueFire(matchID, game.FireInput{
			PlayerID: d.PlayerID,
			X:        d.X,
			Y:        d.Y,
			DirX:     d.DirX,
			DirY:     d.DirY,
			ClientTS: time.UnixMilli(d.ClientTS),
		})
	}
}
