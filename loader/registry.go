package loader

import (
	"sync"

	"github.com/google/uuid"
)

// Registry hands out session-scoped stores. The host environment may
// re-execute the entry point on every interaction; keying stores by
// session keeps the cache stable across re-initialization instead of
// silently creating divergent copies per run.
type Registry struct {
	mu      sync.Mutex
	dataDir string
	stores  map[string]*Store
}

// NewRegistry creates a registry whose stores read from dataDir.
func NewRegistry(dataDir string) *Registry {
	return &Registry{
		dataDir: dataDir,
		stores:  make(map[string]*Store),
	}
}

// Store returns the store registered under the session key, creating it
// on first use. An empty key starts a fresh session with a generated
// key; the key is returned so callers can hold on to it.
func (r *Registry) Store(session string) (*Store, string) {
	if session == "" {
		session = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.stores[session]; ok {
		return st, session
	}
	st := NewStore(r.dataDir)
	r.stores[session] = st
	return st, session
}

// Drop removes a session and its cached tables.
func (r *Registry) Drop(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, session)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
