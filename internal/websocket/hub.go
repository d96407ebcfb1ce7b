// Package websocket pushes sync and connectivity status events to
// connected listeners so the field UI can reflect queue state live.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
)

// Event types pushed to listeners.
const (
	EventConnectivity = "CONNECTIVITY"
	EventQueueDepth   = "QUEUE_DEPTH"
	EventSyncResult   = "SYNC_RESULT"
	EventDrainResult  = "DRAIN_RESULT"
)

// StatusEvent is the message shape broadcast to every listener.
type StatusEvent struct {
	Type       string    `json:"type"`
	Online     *bool     `json:"online,omitempty"`
	QueueDepth *int64    `json:"queueDepth,omitempty"`
	ReportID   string    `json:"reportId,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	Synced     int       `json:"synced,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hub maintains the set of active listeners and fans events out.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			logging.L().Infow("📱 Status listener connected", "client", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			logging.L().Infow("📴 Status listener disconnected", "client", client.ID)

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop rather than block.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast fans an event out to every connected listener.
func (h *Hub) Broadcast(event StatusEvent) {
	event.Timestamp = time.Now().UTC()
	msg, err := json.Marshal(event)
	if err != nil {
		logging.L().Errorw("Failed to marshal status event", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// Nobody draining the hub yet; a dropped status event is fine.
	}
}

// BroadcastConnectivity announces an online/offline transition.
func (h *Hub) BroadcastConnectivity(online bool) {
	h.Broadcast(StatusEvent{Type: EventConnectivity, Online: &online})
}

// BroadcastQueueDepth announces the current offline-queue depth.
func (h *Hub) BroadcastQueueDepth(depth int64) {
	h.Broadcast(StatusEvent{Type: EventQueueDepth, QueueDepth: &depth})
}

// BroadcastSyncResult announces the outcome of a single draft sync.
func (h *Hub) BroadcastSyncResult(reportID string, success bool, message string) {
	h.Broadcast(StatusEvent{Type: EventSyncResult, ReportID: reportID, Success: &success, Message: message})
}

// BroadcastDrainResult announces the outcome of a queue drain pass.
func (h *Hub) BroadcastDrainResult(synced, failed int) {
	h.Broadcast(StatusEvent{Type: EventDrainResult, Synced: synced, Failed: failed})
}
