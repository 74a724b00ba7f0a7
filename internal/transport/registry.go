package transport

import (
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AgentWings/chrome-devtools-mcp/internal/server"
)

// Sentinel errors for session registry operations.
var (
	// ErrSessionNotFound indicates a request carried an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates an insert with an already-registered id.
	ErrSessionExists = errors.New("session id already registered")
)

// Session binds an opaque identifier to one server instance and its
// protocol transport adapter.
type Session struct {
	ID        string
	Instance  *server.Instance
	Transport *mcp.StreamableServerTransport
}

// Registry is the sole state shared across HTTP sessions: the id → session
// map. Inserts and removals happen under one lock, so a session is never
// observable half-registered.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Insert registers a session. Ids are unique; inserting a duplicate fails.
func (r *Registry) Insert(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrSessionExists
	}
	r.sessions[s.ID] = s
	return nil
}

// Lookup returns the session registered under id.
func (r *Registry) Lookup(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops the session registered under id, reporting whether it was
// present. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
