// Package rpcmanager implements request/response correlation over the
// broker's fire-and-forget publish/subscribe primitives: a caller creates a
// future keyed by correlation id, the mesh's consumer loop resolves it when
// a matching response envelope arrives, and the caller either receives the
// result or times out waiting for it. It is the Go analogue of hamilton's
// RPCManager, which parks an asyncio.Future per correlation id; a
// buffered, capacity-one channel plays the same role here.
package rpcmanager

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
)

// Manager correlates outgoing RPC-style commands with their responses.
type Manager struct {
	mu     sync.Mutex
	events map[string]chan *structpb.Struct
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{events: make(map[string]chan *structpb.Struct)}
}

// CreateFuture registers a new correlation id and returns the channel its
// response will arrive on. It is an error to reuse a correlation id that is
// still outstanding.
func (m *Manager) CreateFuture(correlationID string) (<-chan *structpb.Struct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.events[correlationID]; exists {
		return nil, fmt.Errorf("rpcmanager: correlation id %q already in use", correlationID)
	}
	ch := make(chan *structpb.Struct, 1)
	m.events[correlationID] = ch
	return ch, nil
}

// HandleIncoming resolves the future registered for correlationID, if any.
// It is safe to call for every inbound envelope, matching or not: envelopes
// with no outstanding correlation id are silently ignored.
func (m *Manager) HandleIncoming(correlationID string, payload *structpb.Struct) {
	if correlationID == "" {
		return
	}
	m.mu.Lock()
	ch, ok := m.events[correlationID]
	if ok {
		delete(m.events, correlationID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- payload:
	default:
	}
}

// Cleanup removes any outstanding future for correlationID without
// resolving it, used after a timeout or on shutdown.
func (m *Manager) Cleanup(correlationID string) {
	m.mu.Lock()
	delete(m.events, correlationID)
	m.mu.Unlock()
}

// Wait blocks until the future for correlationID resolves, the context is
// cancelled, or ctx's deadline passes, cleaning up the pending future on
// every exit path.
func (m *Manager) Wait(ctx context.Context, correlationID string, ch <-chan *structpb.Struct) (*structpb.Struct, error) {
	defer m.Cleanup(correlationID)
	select {
	case payload := <-ch:
		return payload, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("rpcmanager: waiting for correlation id %q: %w", correlationID, ctx.Err())
	}
}

// Outstanding reports how many RPC calls are currently awaiting a response,
// used by health checks to surface backlog.
func (m *Manager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
