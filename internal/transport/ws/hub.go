package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"studyhall/internal/model"
)

// Hub fans engine output events out to the WebSocket subscribers of
// each channel. It implements engine.Emitter; slow or full consumers
// are dropped rather than allowed to stall the engine.
type Hub struct {
	log *zap.Logger

	// channelID -> connections
	conns map[string]map[*Connection]bool
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan model.OutputEvent
}

// Connection represents one WebSocket subscriber to a channel's
// event stream.
type Connection struct {
	ChannelID string
	UserID    string
	Send      chan []byte
	Hub       *Hub
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		log:        log,
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan model.OutputEvent, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.ChannelID] == nil {
				h.conns[conn.ChannelID] = make(map[*Connection]bool)
			}
			h.conns[conn.ChannelID][conn] = true
			h.mu.Unlock()
			h.log.Info("subscriber connected",
				zap.String("channel_id", conn.ChannelID),
				zap.String("user_id", conn.UserID),
			)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.ChannelID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, conn.ChannelID)
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[ev.ChannelID] {
				select {
				case conn.Send <- data:
				default:
					// Buffer full; drop the event for this subscriber.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Emit implements engine.Emitter.
func (h *Hub) Emit(ev model.OutputEvent) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("broadcast buffer full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("channel_id", ev.ChannelID),
		)
	}
}

// Register adds a connection to its channel's subscriber set.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Subscribers returns the number of live connections for a channel.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[channelID])
}
