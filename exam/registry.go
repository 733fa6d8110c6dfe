package exam

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	mu       sync.Mutex
	ctrl     *Controller
	lastSeen time.Time
}

// Registry holds one Controller per browser client. Calls on the same
// Controller are serialized; different Controllers never share state.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	lib     Library
	opts    []Option
	now     func() time.Time
}

// NewRegistry creates controllers over lib with opts applied to each.
// A *rand.Rand given through WithRand is shared by all of them, so only
// pass one when a single client drives the registry.
func NewRegistry(lib Library, opts ...Option) *Registry {
	return &Registry{
		entries: map[string]*entry{},
		lib:     lib,
		opts:    opts,
		now:     time.Now,
	}
}

// Create registers a new Controller in the Selecting state and returns its id.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry{ctrl: NewController(r.lib, r.opts...), lastSeen: r.now()}
	return id
}

// With runs fn against the Controller for id while holding its lock.
func (r *Registry) With(id string, fn func(*Controller) error) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		e.lastSeen = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ctrl)
}

// Delete drops the Controller for id. Unknown ids are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Sweep drops controllers not used within idle and returns how many it removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
