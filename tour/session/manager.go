package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/engine"
	"github.com/wricardo/knights-tour/tour/service"
)

// IDLength is the length of generated session IDs
const IDLength = 8

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles tour session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create creates a new session with the given ID and configuration. An empty
// ID gets a generated one.
func (m *Manager) Create(id string, configID string, config *engine.BoardConfig, opts service.CreateOptions) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	if strings.ContainsAny(id, `/\. `) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := service.NewTourEngine(config, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if configID == "" {
		configID = config.Name
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			logrus.WithField("session", id).WithError(err).Warn("failed to persist new session")
		}
	}

	return session, nil
}

// Get retrieves a session by ID (case-insensitive), falling back to persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		session, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		m.sessions[strings.ToLower(id)] = session
		m.mu.Unlock()

		return session, nil
	}

	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, configID string, config *engine.BoardConfig, opts service.CreateOptions) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, configID, config, opts)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, inMemory := m.sessions[lowerID]
	if inMemory {
		delete(m.sessions, lowerID)
		id = session.ID
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration. Persisted copies are kept and reload on the next Get.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Exists reports whether a session is loaded in memory
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// generateSessionID returns the leading hex block of a random UUID
func (m *Manager) generateSessionID() string {
	return uuid.NewString()[:IDLength]
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		if _, exists := m.sessions[strings.ToLower(id)]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			logrus.WithField("session", id).WithError(err).Warn("failed to load persisted session")
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		logrus.WithField("count", loadedCount).Info("loaded persisted sessions from storage")
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	errorCount := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			logrus.WithField("session", session.ID).WithError(err).Warn("failed to save session")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}
