package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	itemsCollection = "items"
	logCollection   = "stock_log"
	labsCollection  = "labs"
)

// Store owns the MongoDB connection and hands out the collection-scoped
// repositories.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Items returns the item repository.
func (s *Store) Items() *ItemRepository {
	return &ItemRepository{coll: s.collection(itemsCollection)}
}

// Ledger returns the append-only audit log repository.
func (s *Store) Ledger() *LedgerLogRepository {
	return &LedgerLogRepository{coll: s.collection(logCollection)}
}

// Labs returns the lab repository.
func (s *Store) Labs() *LabRepository {
	return &LabRepository{coll: s.collection(labsCollection)}
}

// EnsureIndexes creates the indexes the repositories rely on: the unique
// catalog identity per lab backing move upserts, and the history sort key.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection(itemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "lab_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create items catalog index: %w", err)
	}

	_, err = s.collection(logCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "item_id", Value: 1},
			{Key: "occurred_at", Value: -1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{{Key: "move_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create stock log indexes: %w", err)
	}

	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}
