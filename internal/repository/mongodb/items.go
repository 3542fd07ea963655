package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/labstack-dev/labledger/internal/domain/models"
	"github.com/labstack-dev/labledger/internal/service/ledger"
)

// ItemRepository implements ledger.ItemStore and alerts.ItemFinder on a
// MongoDB collection.
type ItemRepository struct {
	coll *mongo.Collection
}

// Get fetches one item by id.
func (r *ItemRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	return &item, nil
}

// Insert creates a new item. A duplicate on the per-lab catalog identity
// index maps to ErrVersionConflict so a racing find-or-create re-resolves.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	_, err := r.coll.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return nil
}

// UpdateVersioned replaces the item document only while its stored version
// still equals expectedVersion. The replacement carries the bumped version,
// so a matched write is the committed new state.
func (r *ItemRepository) UpdateVersioned(ctx context.Context, item *models.Item, expectedVersion int64) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": item.ID, "version": expectedVersion}, item)
	if err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Predicate failed: distinguish a lost race from a deleted item.
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": item.ID})
	if err != nil {
		return fmt.Errorf("check item %s: %w", item.ID, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return ledger.ErrVersionConflict
}

// FindByCatalogIdentity resolves the holding of the same logical item in the
// given lab.
func (r *ItemRepository) FindByCatalogIdentity(ctx context.Context, labID, name string, itemType models.ItemType) (*models.Item, error) {
	var item models.Item
	err := r.coll.FindOne(ctx, bson.M{"lab_id": labID, "name": name, "type": itemType}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item %s in lab %s: %w", name, labID, err)
	}
	return &item, nil
}

// FindLowStock returns items at or under their configured threshold.
func (r *ItemRepository) FindLowStock(ctx context.Context, labID string) ([]models.Item, error) {
	filter := bson.M{
		"minimum_quantity": bson.M{"$exists": true, "$ne": nil},
		"$expr":            bson.M{"$lte": bson.A{"$quantity", "$minimum_quantity"}},
	}
	if labID != "" {
		filter["lab_id"] = labID
	}
	return r.find(ctx, filter, bson.D{{Key: "quantity", Value: 1}, {Key: "name", Value: 1}})
}

// FindExpiring returns items whose expiry date is set and not after cutoff.
func (r *ItemRepository) FindExpiring(ctx context.Context, labID string, cutoff time.Time) ([]models.Item, error) {
	filter := bson.M{"expiry_date": bson.M{"$lte": cutoff}}
	if labID != "" {
		filter["lab_id"] = labID
	}
	return r.find(ctx, filter, bson.D{{Key: "expiry_date", Value: 1}})
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Item, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	items := make([]models.Item, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
