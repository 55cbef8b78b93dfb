// Package mongostore implements the store repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

type OrderRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewOrderRepository(collection *mongo.Collection, log *logger.Logger) *OrderRepository {
	return &OrderRepository{collection: collection, logger: log}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id, ownerID string) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if ownerID != "" {
		filter["userId"] = ownerID
	}

	var order models.Order
	if err := r.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, q store.OrderQuery) ([]models.Order, error) {
	opts := options.Find().SetSort(sortDocument(q.Sort))
	cursor, err := r.collection.Find(ctx, orderFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func orderFilter(q store.OrderQuery) bson.M {
	filter := bson.M{}
	if q.OwnerID != "" {
		filter["userId"] = q.OwnerID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"_id": pattern},
			bson.M{"items.name": pattern},
		}
	}
	return filter
}

func sortDocument(by store.SortOrder) bson.D {
	switch by {
	case store.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case store.SortHighest:
		return bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}
	case store.SortLowest:
		return bson.D{{Key: "total", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, at time.Time) (*models.Order, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == nil {
		r.logger.Debug("Order status updated", "order_id", id, "status", to)
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Nothing matched: tell a missing order apart from a failed status guard.
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrConflict
}

func (r *OrderRepository) Stats(ctx context.Context, excludeCancelled bool) (store.OrderStats, error) {
	var stats store.OrderStats

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, fmt.Errorf("failed to count orders: %w", err)
	}
	stats.Count = count

	match := bson.M{}
	if excludeCancelled {
		match["status"] = bson.M{"$ne": models.StatusCancelled}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return stats, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(result) > 0 {
		stats.Revenue = result[0].Revenue
	}
	return stats, nil
}
