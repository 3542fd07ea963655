package models

import "time"

// ItemType classifies how a stock holding is consumed.
type ItemType string

const (
	ItemConsumable    ItemType = "consumable"
	ItemNonConsumable ItemType = "non_consumable"
	ItemFixed         ItemType = "fixed"
)

// Item is a stock holding of one item type in one lab. Quantity is mutated
// only through the ledger; Version increases by one on every committed
// mutation and backs the optimistic-concurrency predicate.
type Item struct {
	ID              string     `bson:"_id" json:"id"`
	Name            string     `bson:"name" json:"name"`
	Type            ItemType   `bson:"type" json:"type"`
	LabID           string     `bson:"lab_id" json:"lab_id"`
	Quantity        int64      `bson:"quantity" json:"quantity"`
	MinimumQuantity *int64     `bson:"minimum_quantity,omitempty" json:"minimum_quantity,omitempty"`
	Unit            string     `bson:"unit,omitempty" json:"unit,omitempty"`
	ExpiryDate      *time.Time `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	UnitCost        *float64   `bson:"unit_cost,omitempty" json:"unit_cost,omitempty"`
	Supplier        string     `bson:"supplier,omitempty" json:"supplier,omitempty"`
	BatchNumber     string     `bson:"batch_number,omitempty" json:"batch_number,omitempty"`
	Version         int64      `bson:"version" json:"version"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}

// BelowMinimum reports whether the holding has dropped to or under its
// configured threshold. Items without a threshold never alert.
func (i *Item) BelowMinimum() bool {
	return i.MinimumQuantity != nil && i.Quantity <= *i.MinimumQuantity
}

// Lab is the minimal lab record the ledger needs: move targets must resolve
// to an existing lab. Full lab CRUD lives outside this service.
type Lab struct {
	ID         string `bson:"_id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
}
