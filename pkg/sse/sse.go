package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type client struct {
	ch   chan string
	done chan struct{}
}

// Hub fans events out to every connected client.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*client
	nextID    int
	keepalive time.Duration
	retryMs   int
}

func NewHub(keepalive time.Duration) *Hub {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &Hub{clients: make(map[string]*client), keepalive: keepalive, retryMs: 5000}
}

func (h *Hub) add() (string, *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := fmt.Sprintf("c%d", h.nextID)
	c := &client{ch: make(chan string, 64), done: make(chan struct{})}
	h.clients[id] = c
	return id, c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		close(c.done)
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

// Broadcast sends a JSON-encoded event to every client. Slow clients are skipped.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.ch <- msg:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve streams events to one client until it disconnects.
func (h *Hub) Serve(c *gin.Context) {
	id, cl := h.add()
	defer h.remove(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteString(fmt.Sprintf("retry: %d\n\n", h.retryMs))
	c.Writer.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-cl.ch:
			if !ok {
				return false
			}
			_, _ = io.WriteString(w, msg)
			return true
		case <-keepalive.C:
			_, _ = io.WriteString(w, ": keepalive\n\n")
			return true
		case <-cl.done:
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
