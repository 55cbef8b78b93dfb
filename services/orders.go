package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

type ListQuery struct {
	Status string
	Search string
	Sort   string
}

type OrderSummary struct {
	Total      int                        `json:"total"`
	ByStatus   map[models.OrderStatus]int `json:"byStatus"`
	TotalSpent float64                    `json:"totalSpent"`
}

// Orders owns the order lifecycle. Every write goes straight to the repository
// and is then announced through the notifier.
type Orders struct {
	repo     store.OrderRepository
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewOrders(repo store.OrderRepository, notifier Notifier, log *logger.Logger) *Orders {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orders{repo: repo, notifier: notifier, logger: log, now: time.Now}
}

// Place persists a freshly built order. Nothing is announced unless the write succeeded.
func (s *Orders) Place(ctx context.Context, order *models.Order) error {
	if order.ID == "" || order.UserID == "" || len(order.Items) == 0 {
		return fmt.Errorf("refusing to persist incomplete order %q", order.ID)
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to persist order", "order_id", order.ID, "error", err)
		return storageError("persist order", err)
	}

	s.logger.Info("Order placed", "order_id", order.ID, "user_id", order.UserID, "total", order.Total)
	if err := s.notifier.OrderCreated(ctx, order.Clone()); err != nil {
		s.logger.Warn("Failed to announce order", "order_id", order.ID, "error", err)
	}
	return nil
}

func (s *Orders) List(ctx context.Context, p models.Principal, q ListQuery) ([]models.Order, error) {
	query, err := toOrderQuery(q)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		query.OwnerID = p.ID
	}

	orders, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	return orders, nil
}

func toOrderQuery(q ListQuery) (store.OrderQuery, error) {
	var query store.OrderQuery
	if q.Status != "" && q.Status != "all" {
		st, err := models.ParseOrderStatus(q.Status)
		if err != nil {
			return query, newValidationError("status", "Unknown order status")
		}
		query.Status = st
	}
	sort, ok := store.ParseSortOrder(q.Sort)
	if !ok {
		return query, newValidationError("sort", "Sort must be newest, oldest, highest or lowest")
	}
	query.Sort = sort
	query.Search = q.Search
	return query, nil
}

// Get hides foreign orders behind ErrNotFound; only admins read across owners.
func (s *Orders) Get(ctx context.Context, p models.Principal, id string) (*models.Order, error) {
	order, err := s.repo.Get(ctx, id, ownerScope(p))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("get order", err)
	}
	return order, nil
}

func ownerScope(p models.Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.ID
}

// SetStatus is the admin transition. The write is conditional on the status
// that was checked, so a concurrent change surfaces as ErrInvalidTransition.
func (s *Orders) SetStatus(ctx context.Context, p models.Principal, id string, to models.OrderStatus) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := models.ParseOrderStatus(string(to)); err != nil {
		return nil, newValidationError("status", "Unknown order status")
	}

	current, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, current, []models.OrderStatus{current.Status}, to)
}

// Cancel is open to the owner and to admins while the order is processing or pending.
func (s *Orders) Cancel(ctx context.Context, p models.Principal, id string) (*models.Order, error) {
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsCancellable() {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, current, models.CancellableStatuses, models.StatusCancelled)
}

func (s *Orders) transition(ctx context.Context, current *models.Order, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	updated, err := s.repo.UpdateStatus(ctx, current.ID, from, to, s.now().UTC())
	switch {
	case errors.Is(err, store.ErrConflict):
		return nil, ErrInvalidTransition
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, storageError("update order status", err)
	}

	s.logger.Info("Order status changed", "order_id", updated.ID, "from", current.Status, "to", updated.Status)
	if err := s.notifier.OrderStatusChanged(ctx, updated.Clone(), current.Status); err != nil {
		s.logger.Warn("Failed to announce status change", "order_id", updated.ID, "error", err)
	}
	return updated, nil
}

// Summary backs the orders page header. Cancelled orders do not count towards the amount spent.
func (s *Orders) Summary(ctx context.Context, p models.Principal) (OrderSummary, error) {
	orders, err := s.repo.List(ctx, store.OrderQuery{OwnerID: p.ID})
	if err != nil {
		return OrderSummary{}, storageError("list orders", err)
	}

	summary := OrderSummary{ByStatus: map[models.OrderStatus]int{
		models.StatusProcessing: 0,
		models.StatusPending:    0,
		models.StatusShipped:    0,
		models.StatusDelivered:  0,
		models.StatusCancelled:  0,
	}}
	for _, o := range orders {
		summary.Total++
		summary.ByStatus[o.Status]++
		if o.Status != models.StatusCancelled {
			summary.TotalSpent += o.Total
		}
	}
	summary.TotalSpent = roundCents(summary.TotalSpent)
	return summary, nil
}
