package memstore

import (
	"context"
	"sync"
	"time"
)

type TokenRevocationRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenRevocationRepository() *TokenRevocationRepository {
	return &TokenRevocationRepository{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *TokenRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = until
	return nil
}

// IsRevoked also drops expired entries, standing in for the Mongo TTL index.
func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if r.now().After(until) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
