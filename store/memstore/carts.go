package memstore

import (
	"context"
	"sync"

	"edpharma/models"
)

type CartRepository struct {
	mu    sync.RWMutex
	carts map[string][]models.CartLine
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string][]models.CartLine)}
}

func (r *CartRepository) Load(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := models.CloneLines(r.carts[ownerID])
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

func (r *CartRepository) Save(ctx context.Context, ownerID string, lines []models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(lines) == 0 {
		delete(r.carts, ownerID)
		return nil
	}
	r.carts[ownerID] = models.CloneLines(lines)
	return nil
}
