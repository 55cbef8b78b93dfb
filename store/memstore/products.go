package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"edpharma/models"
	"edpharma/store"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewProductRepository(seed ...models.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[string]models.Product)}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, ok := r.products[product.ID]; ok {
		return store.ErrAlreadyExists
	}
	r.products[product.ID] = *product
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch, at time.Time) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = at
	r.products[id] = p
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
