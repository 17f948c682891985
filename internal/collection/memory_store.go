package collection

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory profile store for development mode. The
// version check under the lock gives the same compare-and-swap
// semantics as the Postgres store.
type MemoryStore struct {
	profiles map[string]*Profile
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*Profile)}
}

func copyProfile(p *Profile) *Profile {
	cp := *p
	cp.Unlocked = append([]string(nil), p.Unlocked...)
	cp.Badges = append([]string(nil), p.Badges...)
	return &cp
}

// Get returns the user's profile, or an empty version-0 profile when
// none exists yet.
func (m *MemoryStore) Get(ctx context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return &Profile{UserID: userID}, nil
	}
	return copyProfile(p), nil
}

func (m *MemoryStore) Save(ctx context.Context, profile *Profile, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.profiles[profile.UserID]
	switch {
	case !ok && expectedVersion != 0:
		return ErrVersionConflict
	case ok && current.Version != expectedVersion:
		return ErrVersionConflict
	}

	profile.Version = expectedVersion + 1
	m.profiles[profile.UserID] = copyProfile(profile)
	return nil
}
