package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/labstack-dev/labledger/internal/domain/models"
)

// LedgerLogRepository implements ledger.LedgerLog on a MongoDB collection.
// The collection is append-only: nothing here updates or deletes.
type LedgerLogRepository struct {
	coll *mongo.Collection
}

// Append inserts one audit entry.
func (r *LedgerLogRepository) Append(ctx context.Context, entry *models.StockLogEntry) error {
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("append stock log entry: %w", err)
	}
	return nil
}

// ListByItem returns entries for one item, newest first. With a cursor the
// query filters strictly below the (occurred_at, id) anchor, which stays
// stable under concurrent appends; without one it falls back to skip/limit.
func (r *LedgerLogRepository) ListByItem(ctx context.Context, itemID string, query models.HistoryQuery) ([]models.StockLogEntry, error) {
	filter := bson.M{"item_id": itemID}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(query.Limit))

	if query.Before != nil {
		filter["$or"] = bson.A{
			bson.M{"occurred_at": bson.M{"$lt": query.Before}},
			bson.M{"occurred_at": query.Before, "_id": bson.M{"$lt": query.BeforeID}},
		}
	} else {
		opts.SetSkip(query.Skip())
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list stock log for item %s: %w", itemID, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	entries := make([]models.StockLogEntry, 0, query.Limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode stock log entries: %w", err)
	}
	return entries, nil
}

// CountByMove counts entries for one move correlation id and operation.
func (r *LedgerLogRepository) CountByMove(ctx context.Context, moveID string, op models.StockOperation) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"move_id": moveID, "operation": op})
	if err != nil {
		return 0, fmt.Errorf("count move entries %s: %w", moveID, err)
	}
	return n, nil
}
