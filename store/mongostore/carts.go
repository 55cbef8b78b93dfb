package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edpharma/models"
)

// cartDocument holds one owner's whole cart.
type cartDocument struct {
	OwnerID   string            `bson:"_id"`
	Lines     []models.CartLine `bson:"lines"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(collection *mongo.Collection) *CartRepository {
	return &CartRepository{collection: collection}
}

func (r *CartRepository) Load(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []models.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if doc.Lines == nil {
		doc.Lines = []models.CartLine{}
	}
	return doc.Lines, nil
}

func (r *CartRepository) Save(ctx context.Context, ownerID string, lines []models.CartLine) error {
	if len(lines) == 0 {
		if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": ownerID}); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	}

	doc := cartDocument{OwnerID: ownerID, Lines: lines, UpdatedAt: time.Now().UTC()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ownerID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
