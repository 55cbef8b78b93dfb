package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edpharma/logger"
)

const (
	UserCollection         = "users"
	ProductCollection      = "products"
	OrderCollection        = "orders"
	CartCollection         = "carts"
	RevokedTokenCollection = "revoked_tokens"
)

type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, dbName string, log *logger.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Connected to MongoDB", "db", dbName)
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness,
// owner-scoped listing and token expiry.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UserCollection: {
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
			},
			{
				Keys: bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"phone": bson.M{"$type": "string"}}),
			},
		},
		OrderCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		RevokedTokenCollection: {
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := m.DB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
