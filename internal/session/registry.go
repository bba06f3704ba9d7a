package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"elite-decor-web/internal/metrics"
)

// Registry owns the in-memory session contexts of this process. Durable
// state (tokens) lives in the session repository; a context evicted here is
// rebuilt from it on the next request.
type Registry struct {
	mu       sync.Mutex
	contexts map[string]*Context
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{contexts: map[string]*Context{}, now: time.Now}
}

// WithClock replaces the clock; tests only.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the context for id, creating an unresolved one if this
// process has not seen it yet.
func (r *Registry) Get(id string) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if c, ok := r.contexts[id]; ok {
		c.touch(now)
		return c
	}
	c := newContext(id, now)
	r.contexts[id] = c
	metrics.ActiveSessions.Set(float64(len(r.contexts)))
	return c
}

// Lookup returns an existing context without creating one.
func (r *Registry) Lookup(id string) (*Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contexts[id]
	return c, ok
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	c, ok := r.contexts[id]
	delete(r.contexts, id)
	metrics.ActiveSessions.Set(float64(len(r.contexts)))
	r.mu.Unlock()
	if ok {
		c.close()
	}
}

// Rotate moves a session to a fresh id: old is dropped and torn down, and
// a new unresolved context is registered under id. Callers sign the new
// context in.
func (r *Registry) Rotate(old *Context, id string) *Context {
	r.mu.Lock()
	if current, ok := r.contexts[old.ID]; ok && current == old {
		delete(r.contexts, old.ID)
	}
	fresh := newContext(id, r.now())
	r.contexts[id] = fresh
	metrics.ActiveSessions.Set(float64(len(r.contexts)))
	r.mu.Unlock()

	old.Teardown()
	return fresh
}

// ForEmail returns the contexts currently signed in as email.
func (r *Registry) ForEmail(email string) []*Context {
	r.mu.Lock()
	all := make([]*Context, 0, len(r.contexts))
	for _, c := range r.contexts {
		all = append(all, c)
	}
	r.mu.Unlock()

	var out []*Context
	for _, c := range all {
		if strings.EqualFold(c.Email(), email) {
			out = append(out, c)
		}
	}
	return out
}

// Sweep drops contexts idle for longer than idle and reports how many.
func (r *Registry) Sweep(idle time.Duration) int {
	now := r.now()
	r.mu.Lock()
	var stale []*Context
	for id, c := range r.contexts {
		if c.idleSince(now) > idle {
			stale = append(stale, c)
			delete(r.contexts, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.contexts)))
	r.mu.Unlock()

	for _, c := range stale {
		c.close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}
