// Package authz gates scheduling on the location and notification
// capabilities. Each Request call gets its own completion; concurrent
// requesters are never collapsed onto a single callback.
package authz

import (
	"context"
	"sync"
)

type Capability string

const (
	CapabilityLocation      Capability = "location"
	CapabilityNotifications Capability = "notifications"
)

type Status string

const (
	StatusAuthorized   Status = "authorized"
	StatusDenied       Status = "denied"
	StatusUndetermined Status = "undetermined"
)

// Prompter resolves an undetermined capability, e.g. by showing the
// platform permission prompt. Resolution happens at most once per request.
type Prompter interface {
	Prompt(ctx context.Context, capability Capability) (Status, error)
}

// AutoPrompter grants or denies per capability without user interaction.
// Service deployments have no interactive prompt to show.
type AutoPrompter struct {
	Grant map[Capability]bool
}

func (p AutoPrompter) Prompt(_ context.Context, capability Capability) (Status, error) {
	if p.Grant[capability] {
		return StatusAuthorized, nil
	}
	return StatusDenied, nil
}

type pendingPrompt struct {
	done   chan struct{}
	status Status
	err    error
}

// Gate tracks capability status and serializes prompting: one prompt in
// flight per capability, every concurrent caller observes its result.
type Gate struct {
	mu       sync.Mutex
	status   map[Capability]Status
	inflight map[Capability]*pendingPrompt
	prompter Prompter
}

func NewGate(prompter Prompter) *Gate {
	return &Gate{
		status:   make(map[Capability]Status),
		inflight: make(map[Capability]*pendingPrompt),
		prompter: prompter,
	}
}

// Status reports the current state without prompting.
func (g *Gate) Status(capability Capability) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.status[capability]; ok {
		return s
	}
	return StatusUndetermined
}

// SetStatus overrides the stored state, e.g. after the user changed the
// setting externally.
func (g *Gate) SetStatus(capability Capability, status Status) {
	g.mu.Lock()
	g.status[capability] = status
	g.mu.Unlock()
}

// Request resolves the capability, prompting if undetermined. A denied
// result is returned to the caller, never retried here: the caller owns the
// recovery affordance.
func (g *Gate) Request(ctx context.Context, capability Capability) (Status, error) {
	g.mu.Lock()
	if s, ok := g.status[capability]; ok && s != StatusUndetermined {
		g.mu.Unlock()
		return s, nil
	}

	if p, ok := g.inflight[capability]; ok {
		// another caller is prompting; wait for its completion
		g.mu.Unlock()
		select {
		case <-p.done:
			return p.status, p.err
		case <-ctx.Done():
			return StatusUndetermined, ctx.Err()
		}
	}

	p := &pendingPrompt{done: make(chan struct{})}
	g.inflight[capability] = p
	g.mu.Unlock()

	status, err := g.prompter.Prompt(ctx, capability)

	g.mu.Lock()
	if err == nil {
		g.status[capability] = status
	}
	delete(g.inflight, capability)
	g.mu.Unlock()

	p.status = status
	p.err = err
	close(p.done)
	return status, err
}
