package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	session  Session
	lastSeen time.Time
}

// Manager maps browser session identifiers to their Sessions and discards
// sessions that have been idle longer than the configured timeout.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	idleTimeout   time.Duration
	sweepInterval time.Duration
}

// NewManager creates a Manager from configuration.
func NewManager(cfg *Config) (*Manager, error) {
	idle, sweep, err := cfg.Durations()
	if err != nil {
		return nil, err
	}

	return &Manager{
		sessions:      make(map[string]*entry),
		idleTimeout:   idle,
		sweepInterval: sweep,
	}, nil
}

// Create starts a new empty Session and tracks it.
func (m *Manager) Create() Session {
	s := NewMemorySession()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = &entry{session: s, lastSeen: time.Now()}
	return s
}

// Get returns the Session for id and marks it as recently used.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.session, true
}

// Resolve returns the Session for id, creating a new one when id is unknown
// or expired. The second result reports whether a session was created.
func (m *Manager) Resolve(id string) (Session, bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep discards sessions idle since before now minus the idle timeout and
// returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on the configured interval until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := m.Sweep(t); n > 0 {
				slog.Debug("sessions expired", "removed", n, "remaining", m.Len())
			}
		}
	}
}
