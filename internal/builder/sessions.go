package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finboard/internal/catalog"
	"finboard/internal/dashboard"
)

const defaultSessionTTL = 2 * time.Hour

// Sessions is a registry of builder canvases keyed by session id. Each canvas
// has a single owner; the registry serializes access so the canvas itself
// needs no locking. Idle sessions are swept on access after the TTL.
type Sessions struct {
	catalog  *catalog.Catalog
	gridCols int
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	canvas   *Canvas
	lastSeen time.Time
}

// NewSessions creates a session registry. ttl <= 0 uses the default.
func NewSessions(cat *catalog.Catalog, gridCols int, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{
		catalog:  cat,
		gridCols: gridCols,
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

// Create starts a new empty editing session and returns its id.
func (s *Sessions) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	id := uuid.NewString()
	s.sessions[id] = &session{
		canvas:   NewCanvas(s.catalog, s.gridCols),
		lastSeen: time.Now(),
	}
	return id
}

// CreateFrom starts a session seeded from an existing blueprint.
func (s *Sessions) CreateFrom(bp dashboard.Blueprint) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	canvas := NewCanvas(s.catalog, s.gridCols)
	canvas.LoadBlueprint(bp)
	id := uuid.NewString()
	s.sessions[id] = &session{canvas: canvas, lastSeen: time.Now()}
	return id
}

// With runs fn against the session's canvas under the registry lock.
func (s *Sessions) With(id string, fn func(*Canvas) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return dashboard.ErrNotFound
	}
	sess.lastSeen = time.Now()
	return fn(sess.canvas)
}

// Discard drops a session, losing any uncommitted edits.
func (s *Sessions) Discard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) sweepLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
