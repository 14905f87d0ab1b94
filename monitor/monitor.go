// Package monitor exposes live search progress over WebSocket. It is purely
// observational: publishes never block, and a slow or dead subscriber is
// dropped rather than ever stalling an island's evolution loop.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wildfauve/travelling-salesman/observability"
)

// Update is one progress snapshot from an island.
type Update struct {
	Island       int     `json:"island"`
	Generation   int     `json:"generation"`
	BestDistance float64 `json:"best_distance"`
}

const (
	updateBuffer    = 256
	clientSendQueue = 32
	writeTimeout    = 5 * time.Second
)

// Hub fans island progress out to WebSocket subscribers on /ws.
type Hub struct {
	addr     string
	upgrader websocket.Upgrader
	updates  chan Update
	server   *http.Server
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	done    chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub that will listen on addr once started.
func NewHub(addr string, logger zerolog.Logger) *Hub {
	return &Hub{
		addr:    addr,
		updates: make(chan Update, updateBuffer),
		clients: make(map[*client]struct{}),
		done:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.With().Str("component", "monitor").Logger(),
	}
}

// ObserveGeneration implements island.Observer. It never blocks; when the
// update buffer is full the snapshot is simply dropped.
func (h *Hub) ObserveGeneration(island, generation int, bestDistance float64) {
	select {
	case h.updates <- Update{Island: island, Generation: generation, BestDistance: bestDistance}:
	default:
	}
}

// Start launches the HTTP server and the broadcast loop.
func (h *Hub) Start() {
	observability.RegisterMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	h.server = &http.Server{Addr: h.addr, Handler: mux}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.log.Error().Err(err).Msg("monitor server error")
		}
	}()
	go h.broadcastLoop()

	h.log.Info().Str("addr", h.addr).Msg("monitor listening")
}

// Stop shuts the server down and disconnects every subscriber.
func (h *Hub) Stop(ctx context.Context) error {
	close(h.done)

	h.mu.Lock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendQueue)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) broadcastLoop() {
	for {
		select {
		case update := <-h.updates:
			payload, err := json.Marshal(update)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// Slow subscriber, disconnect it.
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readPump discards inbound frames and removes the client once the
// connection dies.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
