// Package store defines the persistence boundary of the storefront.
//
// Every repository scopes reads by owner where ownership applies: an empty
// owner id means "all owners" and is only ever passed by admin code paths.
package store

import (
	"context"
	"time"

	"edpharma/models"
)

type UserRepository interface {
	// Create assigns an id when empty; ErrAlreadyExists if the email or phone is taken.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByIdentifier matches the email (case-insensitive) or the phone.
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch, at time.Time) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartRepository interface {
	// Load returns an empty slice for an owner without a cart.
	Load(ctx context.Context, ownerID string) ([]models.CartLine, error)
	// Save replaces the owner's whole line list.
	Save(ctx context.Context, ownerID string, lines []models.CartLine) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// Get returns ErrNotFound when the order is missing or not owned by ownerID.
	Get(ctx context.Context, id, ownerID string) (*models.Order, error)
	List(ctx context.Context, q OrderQuery) ([]models.Order, error)
	// UpdateStatus moves the order to `to` only if its current status is one of `from`.
	// It returns ErrNotFound for a missing order and ErrConflict when the guard fails.
	UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, at time.Time) (*models.Order, error)
	Stats(ctx context.Context, excludeCancelled bool) (OrderStats, error)
}

type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type OrderStats struct {
	Count   int64
	Revenue float64
}
