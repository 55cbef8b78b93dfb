// Package memstore keeps every repository in process memory. It backs tests
// and CART_BACKEND=memory runs; nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"edpharma/models"
	"edpharma/store"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsLocked(user.Email, user.Phone) {
		return store.ErrAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := r.users[user.ID]; ok {
		return store.ErrAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email := models.NormalizeEmail(identifier)
	phone := strings.TrimSpace(identifier)
	for _, u := range r.users {
		if (u.Email != "" && u.Email == email) || (u.Phone != "" && u.Phone == phone) {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.existsLocked(email, phone), nil
}

func (r *UserRepository) existsLocked(email, phone string) bool {
	for _, u := range r.users {
		if email != "" && u.Email == email {
			return true
		}
		if phone != "" && u.Phone == phone {
			return true
		}
	}
	return false
}

// List returns users newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
