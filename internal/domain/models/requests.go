package models

import "time"

// AddStockRequest receives new stock into a holding. Batch metadata is
// optional; when an ExpiryDate is supplied the earliest expiry across
// batches wins on the item record.
type AddStockRequest struct {
	ItemID      string     `json:"-"`
	Quantity    int64      `json:"quantity" binding:"required"`
	Reason      string     `json:"reason,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	UnitCost    *float64   `json:"unit_cost,omitempty"`
	Supplier    string     `json:"supplier,omitempty"`
	BatchNumber string     `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	ActorID     string     `json:"-"`
}

// RemoveStockRequest withdraws stock. Reason is mandatory for the audit
// trail; withdrawal is all-or-nothing against the current quantity.
type RemoveStockRequest struct {
	ItemID   string `json:"-"`
	Quantity int64  `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Notes    string `json:"notes,omitempty"`
	ActorID  string `json:"-"`
}

// MoveStockRequest transfers quantity from the source item's lab to the
// target lab. SourceLabID is an optional stale-location guard: when set it
// must match the source item's current lab.
type MoveStockRequest struct {
	ItemID      string `json:"-"`
	TargetLabID string `json:"target_lab_id" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required"`
	SourceLabID string `json:"source_lab_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ActorID     string `json:"-"`
}

// AdjustStockRequest sets the quantity to an absolute value after a physical
// count. A zero delta still commits and still logs.
type AdjustStockRequest struct {
	ItemID      string `json:"-"`
	NewQuantity int64  `json:"new_quantity" binding:"min=0"`
	Reason      string `json:"reason" binding:"required"`
	Notes       string `json:"notes,omitempty"`
	ActorID     string `json:"-"`
}

// StockOperationResult is returned on every successful mutation: the item
// snapshot after commit plus the log entries the operation produced (two for
// a move, one otherwise).
type StockOperationResult struct {
	Item       Item            `json:"item"`
	LogEntries []StockLogEntry `json:"log_entries"`
}

// MoveResult extends the operation result with both sides of a transfer.
type MoveResult struct {
	Source      Item            `json:"source"`
	Destination Item            `json:"destination"`
	MoveID      string          `json:"move_id"`
	LogEntries  []StockLogEntry `json:"log_entries"`
}
