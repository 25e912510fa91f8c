// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
)

// hub fans tracker events out to websocket subscribers. Slow clients
// are disconnected rather than buffered without bound.
type hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]chan analytics.Event
	upgrader websocket.Upgrader
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	log      log.Logger
}

func newHub(logger log.Logger) *hub {
	return &hub{
		clients: make(map[*websocket.Conn]chan analytics.Event),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		quit: make(chan struct{}),
		done: make(chan struct{}),
		log:  logger,
	}
}

func (h *hub) handleUpgrade(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	out := make(chan analytics.Event, 256)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()

	h.log.Debug("websocket client connected", "remote", conn.RemoteAddr())

	go h.writeLoop(conn, out)
	go h.readLoop(conn)
}

// pump consumes the tracker's event stream until the hub is stopped or
// the stream is closed
func (h *hub) pump(events <-chan analytics.Event) {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.mu.Lock()
			for conn, out := range h.clients {
				select {
				case out <- ev:
				default:
					delete(h.clients, conn)
					close(out)
				}
			}
			h.mu.Unlock()
		}
	}
}

// stop ends the pump and drops every connected client
func (h *hub) stop() {
	h.stopOnce.Do(func() { close(h.quit) })

	h.mu.Lock()
	for conn, out := range h.clients {
		delete(h.clients, conn)
		close(out)
		conn.Close()
	}
	h.mu.Unlock()
}

func (h *hub) writeLoop(conn *websocket.Conn, out <-chan analytics.Event) {
	defer conn.Close()
	for ev := range out {
		if err := conn.WriteJSON(ev); err != nil {
			h.drop(conn)
			return
		}
	}
}

// readLoop drains control frames and detects disconnects
func (h *hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			conn.Close()
			return
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if out, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(out)
	}
	h.mu.Unlock()
}
