package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/vbind/pkg/metrics"
)

// Manager holds the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	factory Factory
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewManager creates a Manager. collector may be nil.
func NewManager(factory Factory, collector *metrics.Collector, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default().With("component", "live")
	}
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		metrics:  collector,
		logger:   logger,
	}
}

// Create builds and registers a new session.
func (m *Manager) Create() (*Session, error) {
	s, err := newSession(uuid.NewString(), m.factory, time.Now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	active := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionOpened()
	}
	m.logger.Info("session created", "session_id", s.ID, "active_sessions", active)
	return s, nil
}

// Get returns the session with the given ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Close removes the session with the given ID.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	active := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return
	}
	if m.metrics != nil {
		m.metrics.SessionClosed()
	}
	m.logger.Info("session closed", "session_id", id, "active_sessions", active)
}

// Count returns the number of sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions that never attached a websocket (or lost it) and
// have been idle for longer than idle. It returns the number closed.
func (m *Manager) Sweep(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Close(id)
	}
	if len(expired) > 0 {
		m.logger.Info("cleaned up idle sessions", "count", len(expired), "remaining", m.Count())
	}
	return len(expired)
}
