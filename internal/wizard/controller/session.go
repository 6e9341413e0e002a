// internal/wizard/controller/session.go
package controller

import (
	"context"
	"sync"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/common/metrics"
	persistdraft "bursary-portal/internal/wizard/persist-draft"

	"github.com/google/uuid"
)

// Manager keeps one live wizard per session and opens drafts from the backend
// on first use.
type Manager struct {
	mu      sync.Mutex
	backend persistdraft.Backend
	deps    *Dependencies
	live    map[string]*Wizard
}

func NewManager(backend persistdraft.Backend, deps *Dependencies) *Manager {
	return &Manager{
		backend: backend,
		deps:    deps.withDefaults(),
		live:    make(map[string]*Wizard),
	}
}

// Create starts a new session with an empty draft.
func (m *Manager) Create(ctx context.Context) *Wizard {
	return m.open(ctx, uuid.NewString())
}

// Get returns the session's wizard, rehydrating it from storage if it has a
// draft. Unknown ids yield SESSION_NOT_FOUND.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Wizard, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}

	m.mu.Lock()
	w, ok := m.live[sessionID]
	m.mu.Unlock()
	if ok {
		return w, nil
	}

	ids, err := m.backend.Sessions(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("sessions", err)
	}
	for _, id := range ids {
		if id == sessionID {
			return m.open(ctx, sessionID), nil
		}
	}
	return nil, apperrors.NewSessionNotFoundError(sessionID)
}

func (m *Manager) open(ctx context.Context, sessionID string) *Wizard {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.live[sessionID]; ok {
		return w
	}
	w := Open(ctx, sessionID, m.backend.Session(sessionID), m.deps)
	m.live[sessionID] = w
	metrics.ActiveSessions.Set(float64(len(m.live)))
	return w
}

// Close drops the in-memory wizard. The stored draft stays.
func (m *Manager) Close(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.live, sessionID)
	metrics.ActiveSessions.Set(float64(len(m.live)))
}

// Len reports the number of live wizards.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
