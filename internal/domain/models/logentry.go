package models

import "time"

// StockOperation enumerates the mutation kinds the ledger records.
type StockOperation string

const (
	OpAdd    StockOperation = "add"
	OpRemove StockOperation = "remove"
	OpMove   StockOperation = "move"
	OpAdjust StockOperation = "adjust"
	// OpMoveFailed marks the compensating entry written when the credit half
	// of a move could not be applied and the debit was reversed.
	OpMoveFailed StockOperation = "move_failed"
)

// StockLogEntry is the immutable audit record of one committed quantity
// change. Entries are append-only: never updated, never deleted.
//
// ResultingQuantity is the item's quantity immediately after the entry, so
// history can be read without replaying deltas. For a move, two entries share
// one MoveID, each balancing its own item's history independently.
type StockLogEntry struct {
	ID                string         `bson:"_id" json:"id"`
	ItemID            string         `bson:"item_id" json:"item_id"`
	Operation         StockOperation `bson:"operation" json:"operation"`
	QuantityDelta     int64          `bson:"quantity_delta" json:"quantity_delta"`
	ResultingQuantity int64          `bson:"resulting_quantity" json:"resulting_quantity"`
	Reason            string         `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes             string         `bson:"notes,omitempty" json:"notes,omitempty"`
	MoveID            string         `bson:"move_id,omitempty" json:"move_id,omitempty"`
	ActorID           string         `bson:"actor_id" json:"actor_id"`
	OccurredAt        time.Time      `bson:"occurred_at" json:"occurred_at"`
}
