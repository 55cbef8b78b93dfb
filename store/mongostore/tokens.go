package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenRevocationRepository records logged-out token ids. A TTL index on
// expiresAt removes entries once the token would have expired anyway.
type TokenRevocationRepository struct {
	collection *mongo.Collection
}

func NewTokenRevocationRepository(collection *mongo.Collection) *TokenRevocationRepository {
	return &TokenRevocationRepository{collection: collection}
}

func (r *TokenRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": tokenID},
		bson.M{"$set": bson.M{"expiresAt": until}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	// The TTL monitor runs about once a minute, so check expiry explicitly.
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"_id":       tokenID,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}
