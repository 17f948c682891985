package orders

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory order store for development mode.
type MemoryStore struct {
	orders map[string]*Order
	byRef  map[string]string // txn ref -> order ID
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*Order),
		byRef:  make(map[string]string),
	}
}

// copyOrder deep-copies so callers never share the stored slice.
func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = make([]LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (m *MemoryStore) Create(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[order.ID] = copyOrder(order)
	if order.TxnRef != "" {
		m.byRef[order.TxnRef] = order.ID
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (m *MemoryStore) GetByTxnRef(ctx context.Context, txnRef string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byRef[txnRef]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(m.orders[id]), nil
}

func (m *MemoryStore) Update(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}
	m.orders[order.ID] = copyOrder(order)
	if order.TxnRef != "" {
		m.byRef[order.TxnRef] = order.ID
	}
	return nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Order
	for _, o := range m.orders {
		if o.UserID == userID {
			result = append(result, copyOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
