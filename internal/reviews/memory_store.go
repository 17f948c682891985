package reviews

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory review store for development mode.
type MemoryStore struct {
	byProduct map[string][]*Review
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory review store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byProduct: make(map[string][]*Review)}
}

func (m *MemoryStore) Create(ctx context.Context, review *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *review
	m.byProduct[review.ProductID] = append(m.byProduct[review.ProductID], &cp)
	return nil
}

func (m *MemoryStore) ListByProduct(ctx context.Context, productID string, limit int) ([]*Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Review
	for _, r := range m.byProduct[productID] {
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
