package services

import (
	"context"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

// RevenuePolicy decides whether cancelled orders count towards revenue.
type RevenuePolicy int

const (
	ExcludeCancelled RevenuePolicy = iota
	IncludeCancelled
)

func (p RevenuePolicy) String() string {
	if p == IncludeCancelled {
		return "include_cancelled"
	}
	return "exclude_cancelled"
}

type AdminStats struct {
	TotalUsers   int64   `json:"totalUsers"`
	TotalOrders  int64   `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// Admin is a read-only view across every principal. Order mutations go
// through Orders under the same transition rules as everyone else.
type Admin struct {
	identity *Identity
	orders   *Orders
	repo     store.OrderRepository
	policy   RevenuePolicy
	logger   *logger.Logger
}

func NewAdmin(identity *Identity, orders *Orders, repo store.OrderRepository, policy RevenuePolicy, log *logger.Logger) *Admin {
	return &Admin{identity: identity, orders: orders, repo: repo, policy: policy, logger: log}
}

func (a *Admin) Stats(ctx context.Context, p models.Principal) (AdminStats, error) {
	if !p.IsAdmin() {
		return AdminStats{}, ErrForbidden
	}

	users, err := a.identity.CountUsers(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	stats, err := a.repo.Stats(ctx, a.policy == ExcludeCancelled)
	if err != nil {
		return AdminStats{}, storageError("order stats", err)
	}

	return AdminStats{
		TotalUsers:   users,
		TotalOrders:  stats.Count,
		TotalRevenue: roundCents(stats.Revenue),
	}, nil
}

func (a *Admin) Users(ctx context.Context, p models.Principal) ([]models.UserSummary, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return a.identity.ListUsers(ctx)
}

func (a *Admin) Orders(ctx context.Context, p models.Principal, q ListQuery) ([]models.Order, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return a.orders.List(ctx, p, q)
}

func (a *Admin) Order(ctx context.Context, p models.Principal, id string) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return a.orders.Get(ctx, p, id)
}
