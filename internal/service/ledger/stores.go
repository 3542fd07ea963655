package ledger

import (
	"context"
	"errors"

	"github.com/labstack-dev/labledger/internal/domain/models"
)

// Sentinels the store implementations translate their driver errors into.
// Anything else coming back from a store is treated as storage failure.
var (
	// ErrNotFound reports that the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict reports that a versioned write lost the race: the
	// document's version no longer matches the one the caller read.
	ErrVersionConflict = errors.New("version conflict")
)

// ItemStore is the durable holder of current Item records. It knows nothing
// about ledger semantics; the engine owns all invariants.
type ItemStore interface {
	Get(ctx context.Context, id string) (*models.Item, error)
	// Insert creates a new item record. Returns ErrVersionConflict when a
	// holding with the same catalog identity already exists in the lab, so a
	// racing find-or-create can re-resolve.
	Insert(ctx context.Context, item *models.Item) error
	// UpdateVersioned writes the item only while its stored version still
	// equals expectedVersion, bumping the version by one on success. Returns
	// ErrVersionConflict when the predicate fails, ErrNotFound when the item
	// is gone.
	UpdateVersioned(ctx context.Context, item *models.Item, expectedVersion int64) error
	// FindByCatalogIdentity resolves the holding of the same logical item in
	// a given lab, used to upsert the destination side of a move. Returns
	// ErrNotFound when the lab holds no such item.
	FindByCatalogIdentity(ctx context.Context, labID, name string, itemType models.ItemType) (*models.Item, error)
}

// LedgerLog is the append-only audit store.
type LedgerLog interface {
	Append(ctx context.Context, entry *models.StockLogEntry) error
	// ListByItem returns entries for one item ordered by occurred_at
	// descending, id descending as tiebreak.
	ListByItem(ctx context.Context, itemID string, query models.HistoryQuery) ([]models.StockLogEntry, error)
	// CountByMove counts entries carrying the move correlation id with the
	// given operation, backing idempotent move compensation.
	CountByMove(ctx context.Context, moveID string, op models.StockOperation) (int64, error)
}

// LabStore resolves move targets.
type LabStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}
