package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store for development mode.
type MemoryStore struct {
	sessions map[string]*Session // token hash -> session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *session
	m.sessions[session.TokenHash] = &cp
	return nil
}

func (m *MemoryStore) GetByHash(ctx context.Context, hash string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[hash]
	if !ok {
		return nil, ErrInvalidSession
	}
	cp := *session
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, hash)
	return nil
}

func (m *MemoryStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for hash, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(m.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
