// Package session keeps the browsing sessions of the service. Each session
// owns one aggregator and the two view holders built on it.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
	"github.com/MrSnakeDoc/userbrowser/internal/view/detail"
	"github.com/MrSnakeDoc/userbrowser/internal/view/list"
)

// ErrNotFound is returned for unknown or ended sessions.
var ErrNotFound = errors.New("session not found")

// Session is one browsing context.
type Session struct {
	ID      string
	Created time.Time

	List   *list.Holder
	Detail *detail.Holder

	agg *aggregator.Aggregator

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen reports the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

func (s *Session) close() {
	s.agg.Close()
	s.Detail.Close()
}

// Manager is the session registry.
type Manager struct {
	feed  aggregator.Feed
	store bookmark.Store
	log   logger.Logger
	now   func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty registry. Sessions share feed and store.
func NewManager(feed aggregator.Feed, store bookmark.Store, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		feed:     feed,
		store:    store,
		log:      log.Named("session"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session. The caller starts it.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	log := m.log.With(logger.String("session_id", id))
	now := m.now()

	agg := aggregator.New(m.feed, m.store,
		aggregator.WithLogger(log),
		aggregator.WithDiagnostics(func(d aggregator.Diagnostic) {
			log.Debug("diagnostic", logger.String("op", d.Op), logger.Error(d.Err))
		}),
	)
	s := &Session{
		ID:       id,
		Created:  now,
		List:     list.New(agg),
		Detail:   detail.New(m.store, log),
		agg:      agg,
		lastSeen: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.log.Info("session created", logger.String("session_id", id), logger.Int("active", total))
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// End removes the session and tears its aggregator down.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.close()
	m.log.Info("session ended", logger.String("session_id", id))
	return nil
}

// ReapIdle ends the sessions unused for longer than ttl and returns their IDs.
func (m *Manager) ReapIdle(_ context.Context, ttl time.Duration) []string {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, s := range idle {
		s.close()
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	if len(all) > 0 {
		m.log.Info("sessions closed", logger.Int("count", len(all)))
	}
}
