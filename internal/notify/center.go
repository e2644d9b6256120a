// Package notify implements the notification delivery center: it owns the
// pending-request set and hands fired notifications to a push provider.
package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"glarm/pkg/errors"
)

// Payload is the user-visible content of a notification.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// Trigger is a circular-region condition. Entry-only in practice; exit
// notifications are kept off by the scheduler.
type Trigger struct {
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Radius        float64 `json:"radius"` // meters
	NotifyOnEntry bool    `json:"notifyOnEntry"`
	NotifyOnExit  bool    `json:"notifyOnExit"`
	Repeats       bool    `json:"repeats"`
}

// Request is one registered notification, keyed by identifier.
type Request struct {
	ID      string    `json:"id"`
	Payload Payload   `json:"payload"`
	Trigger Trigger   `json:"trigger"`
	AddedAt time.Time `json:"addedAt"`
}

// Center is the delivery-service contract the alarm workflow consumes.
type Center interface {
	// PendingIdentifiers returns a snapshot of pending request ids.
	PendingIdentifiers(ctx context.Context) (map[string]struct{}, error)

	// PendingRequests returns a snapshot of the full pending set.
	PendingRequests(ctx context.Context) ([]Request, error)

	// Add registers a request. The caller handles de-duplication policy.
	Add(ctx context.Context, req Request) error

	// Remove drops pending requests by identifier. Fire-and-forget: missing
	// identifiers are not an error.
	Remove(ctx context.Context, ids ...string)

	// Fire delivers the pending request to the push provider. Non-repeating
	// requests are consumed; repeating ones stay pending.
	Fire(ctx context.Context, id string) error
}

type memoryCenter struct {
	mu       sync.RWMutex
	pending  map[string]Request
	provider Provider
}

// NewCenter builds an in-process delivery center. A nil provider drops
// fired notifications silently.
func NewCenter(provider Provider) Center {
	return &memoryCenter{
		pending:  make(map[string]Request),
		provider: provider,
	}
}

func (c *memoryCenter) PendingIdentifiers(_ context.Context) (map[string]struct{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make(map[string]struct{}, len(c.pending))
	for id := range c.pending {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (c *memoryCenter) PendingRequests(_ context.Context) ([]Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reqs := make([]Request, 0, len(c.pending))
	for _, req := range c.pending {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].AddedAt.Before(reqs[j].AddedAt) })
	return reqs, nil
}

func (c *memoryCenter) Add(_ context.Context, req Request) error {
	if req.ID == "" {
		return errors.WithCode(errors.CodeInvalidArgument, "request identifier is empty")
	}
	if req.AddedAt.IsZero() {
		req.AddedAt = time.Now()
	}
	c.mu.Lock()
	c.pending[req.ID] = req
	c.mu.Unlock()
	return nil
}

func (c *memoryCenter) Remove(_ context.Context, ids ...string) {
	c.mu.Lock()
	for _, id := range ids {
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *memoryCenter) Fire(ctx context.Context, id string) error {
	c.mu.Lock()
	req, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		return errors.WithCodef(errors.CodeNotFound, "no pending request %s", id)
	}
	if !req.Trigger.Repeats {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if c.provider == nil {
		return nil
	}
	return c.provider.Deliver(ctx, req)
}
