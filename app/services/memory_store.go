package services

import (
	"context"
	"sync"
	"time"

	"github.com/buy01/order-service/app/models"
)

// MemoryStore is a mutex-guarded in-memory OrderStore used by tests and
// local experimentation. It mirrors the repository's semantics, including
// the atomic status swap.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*models.Order)}
}

func (m *MemoryStore) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Mirror GORM's auto-timestamps on the caller's struct.
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(order), nil
}

func (m *MemoryStore) FindByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *cloneOrder(order))
		}
	}
	return out, nil
}

func (m *MemoryStore) FindBySeller(_ context.Context, sellerID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Order
	for _, order := range m.orders {
		for _, line := range order.Items {
			if line.SellerID == sellerID {
				out = append(out, *cloneOrder(order))
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return false, nil
	}
	delete(m.orders, id)
	return true, nil
}

func (m *MemoryStore) SwapStatus(_ context.Context, id string, next models.Status) (*models.Order, models.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, "", ErrNotFound
	}

	prev := order.Status
	order.Status = next
	order.UpdatedAt = time.Now()
	return cloneOrder(order), prev, nil
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]models.OrderLine, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}
