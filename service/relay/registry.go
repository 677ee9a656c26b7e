package relay

import (
	"sync"
)

// Registry tracks live connections and is the source of truth for the
// presence count. It is owned by one Server instance, never package-global,
// so independent servers can coexist in-process.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Client)}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	r.byID[c.ConnID] = c
	r.mu.Unlock()
}

// Deregister is idempotent: removing an absent connection is a no-op. It
// reports whether the connection was present.
func (r *Registry) Deregister(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[connID]; !ok {
		return false
	}
	delete(r.byID, connID)
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) ForEach(fn func(*Client)) {
	for _, c := range r.Snapshot() {
		fn(c)
	}
}

// Snapshot returns the current clients without holding the lock during
// delivery.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out
}
