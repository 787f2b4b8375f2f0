package conflict

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a session id does not resolve,
// including sessions that aged out.
var ErrSessionNotFound = errors.New("conflict session not found")

// DefaultSessionTTL bounds how long an untouched session survives.
// Operators abandon resolution flows by closing the browser, so
// sessions that see neither retry nor cancel must not pile up.
const DefaultSessionTTL = 30 * time.Minute

type registryEntry struct {
	session *Session
	added   time.Time
}

// Registry holds the live resolution sessions so HTTP handlers can
// address them by opaque id across requests.  Sessions are discarded
// explicitly on cancel or after a successful retry, and lazily once
// they outlive the TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]registryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry returns an empty registry.  A non-positive ttl falls
// back to DefaultSessionTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		sessions: make(map[string]registryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add stores a session and returns its generated id.  Expired
// sessions are swept on the way in.
func (r *Registry) Add(s *Session) (string, error) {
	id, err := randomID(16)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.sweepLocked()
	r.sessions[id] = registryEntry{session: s, added: r.now()}
	r.mu.Unlock()
	return id, nil
}

// Get resolves a session id.  Sessions past the TTL are dropped and
// reported as not found.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.now().Sub(e.added) > r.ttl {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Remove drops a session, discarding all its progress.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// sweepLocked drops every session past the TTL.  Callers must hold
// the mutex.
func (r *Registry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, e := range r.sessions {
		if e.added.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

// randomID returns a hex string built from n bytes of secure random
// data.
func randomID(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
