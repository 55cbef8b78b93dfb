package services

import (
	"context"
	"errors"
	"fmt"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

// ProductCatalog resolves products so prices and prescription flags never come from the client.
type ProductCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type CartSummary struct {
	Items     []models.CartLine `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
}

// Cart is the per-principal line store. Every mutation writes the full line
// list back; concurrent writers for one owner resolve as last write wins.
type Cart struct {
	repo    store.CartRepository
	catalog ProductCatalog
	pricing Pricing
	logger  *logger.Logger
}

func NewCart(repo store.CartRepository, catalog ProductCatalog, pricing Pricing, log *logger.Logger) *Cart {
	return &Cart{repo: repo, catalog: catalog, pricing: pricing, logger: log}
}

func (c *Cart) Lines(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	lines, err := c.repo.Load(ctx, ownerID)
	if err != nil {
		return nil, storageError("load cart", err)
	}
	return lines, nil
}

func (c *Cart) Summary(ctx context.Context, ownerID string) (CartSummary, error) {
	lines, err := c.Lines(ctx, ownerID)
	if err != nil {
		return CartSummary{}, err
	}
	return c.summarize(lines), nil
}

func (c *Cart) summarize(lines []models.CartLine) CartSummary {
	return CartSummary{
		Items:     lines,
		Subtotal:  c.pricing.Subtotal(lines),
		ItemCount: models.ItemCount(lines),
	}
}

// AddItem increments an existing line or appends a new one. qty is clamped to at least 1
// and a line never exceeds models.MaxLineQuantity.
func (c *Cart) AddItem(ctx context.Context, ownerID, productID string, qty int) (CartSummary, error) {
	if qty < 1 {
		qty = 1
	}
	if qty > models.MaxLineQuantity {
		return CartSummary{}, errQuantityTooLarge()
	}
	product, err := c.product(ctx, productID)
	if err != nil {
		return CartSummary{}, err
	}

	lines, err := c.Lines(ctx, ownerID)
	if err != nil {
		return CartSummary{}, err
	}

	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			if lines[i].Quantity > models.MaxLineQuantity-qty {
				return CartSummary{}, errQuantityTooLarge()
			}
			lines[i].Quantity += qty
			lines[i].UnitPrice = product.PriceFor(lines[i].Quantity)
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, models.NewCartLine(*product, qty))
	}
	return c.save(ctx, ownerID, lines)
}

// RemoveItem is a no-op when the product is not in the cart.
func (c *Cart) RemoveItem(ctx context.Context, ownerID, productID string) (CartSummary, error) {
	lines, err := c.Lines(ctx, ownerID)
	if err != nil {
		return CartSummary{}, err
	}

	kept := lines[:0:0]
	for _, l := range lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(lines) {
		return c.summarize(lines), nil
	}
	return c.save(ctx, ownerID, kept)
}

// SetQuantity sets the exact quantity; qty <= 0 removes the line.
func (c *Cart) SetQuantity(ctx context.Context, ownerID, productID string, qty int) (CartSummary, error) {
	if qty <= 0 {
		return c.RemoveItem(ctx, ownerID, productID)
	}
	if qty > models.MaxLineQuantity {
		return CartSummary{}, errQuantityTooLarge()
	}

	lines, err := c.Lines(ctx, ownerID)
	if err != nil {
		return CartSummary{}, err
	}

	idx := -1
	for i := range lines {
		if lines[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CartSummary{}, ErrNotFound
	}

	lines[idx].Quantity = qty
	product, err := c.product(ctx, productID)
	switch {
	case err == nil:
		lines[idx].UnitPrice = product.PriceFor(qty)
	case errors.Is(err, ErrNotFound):
		// Delisted product: keep the price the line already carries.
	default:
		return CartSummary{}, err
	}
	return c.save(ctx, ownerID, lines)
}

// RemoveOrdered takes the ordered quantities out of the live cart. Lines added
// or topped up after the snapshot was taken stay in the cart.
func (c *Cart) RemoveOrdered(ctx context.Context, ownerID string, ordered []models.CartLine) (CartSummary, error) {
	lines, err := c.Lines(ctx, ownerID)
	if err != nil {
		return CartSummary{}, err
	}

	taken := make(map[string]int, len(ordered))
	for _, l := range ordered {
		taken[l.ProductID] += l.Quantity
	}

	kept := lines[:0:0]
	for _, l := range lines {
		l.Quantity -= taken[l.ProductID]
		if l.Quantity < 1 {
			continue
		}
		if taken[l.ProductID] > 0 {
			if product, err := c.product(ctx, l.ProductID); err == nil {
				l.UnitPrice = product.PriceFor(l.Quantity)
			}
		}
		kept = append(kept, l)
	}
	return c.save(ctx, ownerID, kept)
}

func (c *Cart) Clear(ctx context.Context, ownerID string) error {
	if err := c.repo.Save(ctx, ownerID, nil); err != nil {
		return storageError("clear cart", err)
	}
	return nil
}

func errQuantityTooLarge() error {
	return newValidationError("quantity", fmt.Sprintf("Quantity cannot exceed %d", models.MaxLineQuantity))
}

func (c *Cart) save(ctx context.Context, ownerID string, lines []models.CartLine) (CartSummary, error) {
	if err := c.repo.Save(ctx, ownerID, lines); err != nil {
		c.logger.Error("Failed to save cart", "owner_id", ownerID, "error", err)
		return CartSummary{}, storageError("save cart", err)
	}
	return c.summarize(lines), nil
}

func (c *Cart) product(ctx context.Context, id string) (*models.Product, error) {
	p, err := c.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find product", err)
	}
	return p, nil
}
