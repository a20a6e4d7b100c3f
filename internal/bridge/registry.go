package bridge

import (
	"context"
	"slices"
	"sync"
)

// RegistryService is the service name the active Registry is published under.
const RegistryService = "bridge.registry"

// Registry is a concurrent-safe index of active bridges keyed by
// conversation id. At most one bridge per conversation id is registered.
type Registry struct {
	mu      sync.RWMutex
	bridges map[string]*Bridge
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bridges: make(map[string]*Bridge)}
}

// Add registers b. It returns ErrDuplicate if another bridge is already
// registered for the same conversation.
func (r *Registry) Add(b *Bridge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bridges[b.ConversationID()]; exists {
		return ErrDuplicate
	}
	r.bridges[b.ConversationID()] = b
	return nil
}

// Get returns the bridge serving conversationID, or false if none is active.
func (r *Registry) Get(conversationID string) (*Bridge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bridges[conversationID]
	return b, ok
}

// Remove unregisters b. A different bridge registered under the same
// conversation id is left alone.
func (r *Registry) Remove(b *Bridge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.bridges[b.ConversationID()]; ok && cur == b {
		delete(r.bridges, b.ConversationID())
	}
}

// Len returns the number of registered bridges.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bridges)
}

// IDs returns the registered conversation ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.bridges))
	for id := range r.bridges {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Range calls fn for each registered bridge until fn returns false.
// fn must not call back into the registry.
func (r *Registry) Range(fn func(id string, b *Bridge) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, b := range r.bridges {
		if !fn(id, b) {
			return
		}
	}
}

// CountByState returns how many registered bridges are in each state.
func (r *Registry) CountByState() map[State]int {
	counts := make(map[State]int)
	r.Range(func(_ string, b *Bridge) bool {
		counts[b.State()]++
		return true
	})
	return counts
}

// CloseAll closes every registered bridge and waits until they are all
// CLOSED or ctx ends.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	bridges := make([]*Bridge, 0, len(r.bridges))
	for _, b := range r.bridges {
		bridges = append(bridges, b)
	}
	r.mu.RUnlock()

	for _, b := range bridges {
		b.Close()
	}
	for _, b := range bridges {
		select {
		case <-b.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
