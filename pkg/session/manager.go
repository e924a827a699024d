package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Manager holds independent sessions by id
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *logrus.Entry
}

// NewManager creates a manager. A ttl of zero disables expiry.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      logrus.WithField("component", "session"),
	}
}

// Create starts a new session
func (m *Manager) Create() *Session {
	s := New(uuid.New().String())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.WithField("session_id", s.ID).Info("Session created")
	return s
}

// Get returns a session and marks it active
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// List returns sessions in creation order
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle since before now minus the ttl
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastAccess().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.WithFields(logrus.Fields{"removed": removed, "remaining": len(m.sessions)}).Info("Expired idle sessions")
	}
	return removed
}
