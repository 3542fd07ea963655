package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LabRepository implements ledger.LabStore on a MongoDB collection.
type LabRepository struct {
	coll *mongo.Collection
}

// Exists reports whether a lab with the given id is registered.
func (r *LabRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("check lab %s: %w", id, err)
	}
	return n > 0, nil
}
