package memstore

import (
	"context"
	"sync"
	"time"

	"edpharma/models"
	"edpharma/store"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]models.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return store.ErrAlreadyExists
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id, ownerID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok || (ownerID != "" && o.UserID != ownerID) {
		return nil, store.ErrNotFound
	}
	c := o.Clone()
	return &c, nil
}

func (r *OrderRepository) List(ctx context.Context, q store.OrderQuery) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if q.Matches(&o) {
			out = append(out, o.Clone())
		}
	}
	store.SortOrders(out, q.Sort)
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, at time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	allowed := false
	for _, st := range from {
		if o.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, store.ErrConflict
	}

	o.Status = to
	o.UpdatedAt = at
	r.orders[id] = o
	c := o.Clone()
	return &c, nil
}

func (r *OrderRepository) Stats(ctx context.Context, excludeCancelled bool) (store.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats store.OrderStats
	for _, o := range r.orders {
		stats.Count++
		if excludeCancelled && o.Status == models.StatusCancelled {
			continue
		}
		stats.Revenue += o.Total
	}
	return stats, nil
}
