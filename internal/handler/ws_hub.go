package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	RaceID string `json:"race_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	RaceID string `json:"race_id"`
}

// WSConn wraps a WebSocket connection with its subscriptions.
type WSConn struct {
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub manages WebSocket connections and race-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	races       map[string]map[*WSConn]bool // raceID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		races:       make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for raceID, conns := range h.races {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.races, raceID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a race channel.
func (h *Hub) Subscribe(c *WSConn, raceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.races[raceID] == nil {
		h.races[raceID] = make(map[*WSConn]bool)
	}
	h.races[raceID][c] = true
}

// Unsubscribe removes a connection from a race channel.
func (h *Hub) Unsubscribe(c *WSConn, raceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.races[raceID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.races, raceID)
		}
	}
}

// BroadcastToRace sends an event to all connections subscribed to a race.
func (h *Hub) BroadcastToRace(raceID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("raceId", raceID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.races[raceID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("connId", c.id).Str("raceId", raceID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// RaceSubscriberCount returns the number of connections subscribed to a race.
func (h *Hub) RaceSubscriberCount(raceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.races[raceID])
}
