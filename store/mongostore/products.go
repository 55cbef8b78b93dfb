package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edpharma/models"
	"edpharma/store"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{collection: collection}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch, at time.Time) (*models.Product, error) {
	set := bson.M{"updatedAt": at}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Brand != nil {
		set["brand"] = *patch.Brand
	}
	if patch.Dosage != nil {
		set["dosage"] = *patch.Dosage
	}
	if patch.PackSize != nil {
		set["packSize"] = *patch.PackSize
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Pricing != nil {
		set["pricing"] = *patch.Pricing
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.RequiresPrescription != nil {
		set["requiresPrescription"] = *patch.RequiresPrescription
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
