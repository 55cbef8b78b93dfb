// Package redisstore keeps carts in Redis as one JSON value per owner.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"edpharma/models"
)

const keyPrefix = "cart:"

type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository stores carts that expire ttl after their last change; zero keeps them forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func cartKey(ownerID string) string {
	return keyPrefix + ownerID
}

func (r *CartRepository) Load(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	raw, err := r.client.Get(ctx, cartKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := []models.CartLine{}
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

func (r *CartRepository) Save(ctx context.Context, ownerID string, lines []models.CartLine) error {
	if len(lines) == 0 {
		if err := r.client.Del(ctx, cartKey(ownerID)).Err(); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(ownerID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
