// path: evochess/internal/session/manager.go
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evochess/internal/engine"
)

// ErrNotFound reports a session id with no live game behind it.
var ErrNotFound = errors.New("game not found")

// Manager owns all live sessions. Safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	logger    *zap.Logger
	engineOpt []engine.Option
}

// NewManager returns an empty session registry. The engine options are
// applied to every game it creates.
func NewManager(logger *zap.Logger, opts ...engine.Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		logger:    logger,
		engineOpt: opts,
	}
}

// Create opens a new game and registers it under a fresh id.
func (m *Manager) Create(params CreateParams) (*Session, error) {
	s, err := newSession(uuid.NewString(), params, m.logger.Named("session"), m.engineOpt...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Info("game created", zap.String("id", s.ID))
	return s, nil
}

// Get looks up a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.logger.Info("game removed", zap.String("id", id))
	}
	return ok
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
