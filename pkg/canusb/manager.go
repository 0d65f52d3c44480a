package canusb

import (
	"fmt"
	"sync"

	"arturo/canusb-go/pkg/internal/logger"
	"arturo/canusb-go/pkg/session"
	"arturo/canusb-go/pkg/transport"
)

// Manager is the root object for adapter operations
// It owns named sessions and provides the main API entry point
type Manager struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
	logger   logger.Logger
}

// NewManager creates a new adapter manager
func NewManager() *Manager {
	return NewManagerWithLogger(logger.GetDefault())
}

// NewManagerWithLogger creates a new adapter manager with custom logger
func NewManagerWithLogger(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Manager{
		sessions: make(map[string]*session.Session),
		logger:   log,
	}
}

// AddSession creates a session over the given transport opener and
// connects it. The manager's logger is used unless cfg carries one.
func (m *Manager) AddSession(id string, opener transport.Opener, cfg session.Config) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session %s already exists", id)
	}

	if cfg.Logger == nil {
		cfg.Logger = m.logger
	}
	s := session.New(opener, cfg)

	if err := s.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect session: %w", err)
	}

	m.sessions[id] = s
	m.logger.Info("Manager: Added session %s", id)

	return s, nil
}

// RemoveSession disconnects a session and removes it
func (m *Manager) RemoveSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session %s not found", id)
	}

	if err := s.Disconnect(); err != nil {
		m.logger.Error("Error disconnecting session %s: %v", id, err)
	}

	delete(m.sessions, id)
	m.logger.Info("Manager: Removed session %s", id)
	return nil
}

// GetSession returns a session by ID
func (m *Manager) GetSession(id string) (*session.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[id]
	return s, exists
}

// Shutdown disconnects all sessions
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Manager: Shutting down")

	for id, s := range m.sessions {
		if err := s.Disconnect(); err != nil {
			m.logger.Error("Error disconnecting session %s: %v", id, err)
		}
	}

	m.sessions = make(map[string]*session.Session)
	m.logger.Info("Manager: Shutdown complete")
	return nil
}

// SessionCount returns the number of sessions
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetLogger sets the logger for the manager
func (m *Manager) SetLogger(log logger.Logger) {
	m.logger = log
}
