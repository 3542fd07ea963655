package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/domain/models"
	"github.com/labstack-dev/labledger/internal/metrics"
)

// maxCommitAttempts bounds the optimistic-concurrency retry loop before the
// operation surfaces ConcurrentModification.
const maxCommitAttempts = 5

// Service is the stock ledger engine. Every quantity mutation goes through
// it: the engine reads the item, computes the new state, commits with a
// versioned write, and appends the audit entry. It holds no mutable state of
// its own beyond the store handles.
type Service struct {
	items  ItemStore
	log    LedgerLog
	labs   LabStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the ledger engine.
func NewService(items ItemStore, log LedgerLog, labs LabStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		items:  items,
		log:    log,
		labs:   labs,
		logger: logger,
		now:    time.Now,
	}
}

// AddStock receives quantity into an item. When the request carries batch
// metadata, unit cost / supplier / batch number overwrite the item's fields
// and the earliest expiry date across batches wins, keeping alerting
// conservative.
func (s *Service) AddStock(ctx context.Context, req models.AddStockRequest) (*models.StockOperationResult, error) {
	if req.Quantity <= 0 {
		return nil, opFailed(models.OpAdd, invalidQuantity("quantity", req.Quantity))
	}

	result, err := s.commit(ctx, req.ItemID, func(item *models.Item) (*models.Item, error) {
		updated := *item
		updated.Quantity = item.Quantity + req.Quantity
		if req.UnitCost != nil {
			updated.UnitCost = req.UnitCost
		}
		if req.Supplier != "" {
			updated.Supplier = req.Supplier
		}
		if req.BatchNumber != "" {
			updated.BatchNumber = req.BatchNumber
		}
		if req.ExpiryDate != nil && (item.ExpiryDate == nil || req.ExpiryDate.Before(*item.ExpiryDate)) {
			updated.ExpiryDate = req.ExpiryDate
		}
		return &updated, nil
	}, logSpec{op: models.OpAdd, delta: req.Quantity, reason: req.Reason, notes: req.Notes, actorID: req.ActorID})
	if err != nil {
		return nil, opFailed(models.OpAdd, err)
	}

	metrics.Operations.WithLabelValues(string(models.OpAdd), "success").Inc()
	return result, nil
}

// RemoveStock withdraws quantity. The withdrawal is all-or-nothing: when the
// item holds less than requested nothing is written and no entry is logged.
func (s *Service) RemoveStock(ctx context.Context, req models.RemoveStockRequest) (*models.StockOperationResult, error) {
	if req.Quantity <= 0 {
		return nil, opFailed(models.OpRemove, invalidQuantity("quantity", req.Quantity))
	}

	result, err := s.commit(ctx, req.ItemID, func(item *models.Item) (*models.Item, error) {
		if req.Quantity > item.Quantity {
			return nil, insufficientStock(item.ID, req.Quantity)
		}
		updated := *item
		updated.Quantity = item.Quantity - req.Quantity
		return &updated, nil
	}, logSpec{op: models.OpRemove, delta: -req.Quantity, reason: req.Reason, notes: req.Notes, actorID: req.ActorID})
	if err != nil {
		return nil, opFailed(models.OpRemove, err)
	}

	metrics.Operations.WithLabelValues(string(models.OpRemove), "success").Inc()
	return result, nil
}

// AdjustStock sets the quantity to an absolute value after a physical count.
// A zero delta still commits and still produces an entry: "verified, no
// change" is a legitimate audit event.
func (s *Service) AdjustStock(ctx context.Context, req models.AdjustStockRequest) (*models.StockOperationResult, error) {
	if req.NewQuantity < 0 {
		return nil, opFailed(models.OpAdjust, invalidQuantity("new_quantity", req.NewQuantity))
	}

	var delta int64
	result, err := s.commit(ctx, req.ItemID, func(item *models.Item) (*models.Item, error) {
		delta = req.NewQuantity - item.Quantity
		updated := *item
		updated.Quantity = req.NewQuantity
		return &updated, nil
	}, logSpec{op: models.OpAdjust, deltaFn: func() int64 { return delta }, reason: req.Reason, notes: req.Notes, actorID: req.ActorID})
	if err != nil {
		return nil, opFailed(models.OpAdjust, err)
	}

	metrics.Operations.WithLabelValues(string(models.OpAdjust), "success").Inc()
	return result, nil
}

// logSpec describes the audit entry a commit produces. deltaFn defers the
// delta to commit time for adjust, whose delta depends on the read state.
type logSpec struct {
	op      models.StockOperation
	delta   int64
	deltaFn func() int64
	reason  string
	notes   string
	moveID  string
	actorID string
}

// commit runs the read-mutate-write loop for a single item: read, apply the
// mutation, write conditioned on the version read, retry on conflict up to
// maxCommitAttempts, then append the audit entry for the committed state.
func (s *Service) commit(ctx context.Context, itemID string, mutate func(*models.Item) (*models.Item, error), spec logSpec) (*models.StockOperationResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, storageUnavailable(err)
		}

		item, err := s.items.Get(ctx, itemID)
		if errors.Is(err, ErrNotFound) {
			return nil, itemNotFound(itemID)
		}
		if err != nil {
			return nil, storageUnavailable(err)
		}

		updated, err := mutate(item)
		if err != nil {
			return nil, err
		}
		updated.Version = item.Version + 1
		updated.UpdatedAt = s.now().UTC()

		err = s.items.UpdateVersioned(ctx, updated, item.Version)
		if errors.Is(err, ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
			s.logger.Debug("versioned write lost race, retrying",
				zap.String("item_id", itemID),
				zap.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return nil, itemNotFound(itemID)
		}
		if err != nil {
			return nil, storageUnavailable(err)
		}

		delta := spec.delta
		if spec.deltaFn != nil {
			delta = spec.deltaFn()
		}
		entry, err := s.append(ctx, updated, spec, delta)
		if err != nil {
			// The quantity change committed but its audit entry did not.
			// Reverse the change so no mutation is observable without its
			// entry, then surface the storage failure.
			s.revert(ctx, item, updated)
			return nil, err
		}

		return &models.StockOperationResult{
			Item:       *updated,
			LogEntries: []models.StockLogEntry{*entry},
		}, nil
	}

	return nil, concurrentModification(itemID)
}

func (s *Service) append(ctx context.Context, item *models.Item, spec logSpec, delta int64) (*models.StockLogEntry, error) {
	entry := &models.StockLogEntry{
		ID:                uuid.NewString(),
		ItemID:            item.ID,
		Operation:         spec.op,
		QuantityDelta:     delta,
		ResultingQuantity: item.Quantity,
		Reason:            spec.reason,
		Notes:             spec.notes,
		MoveID:            spec.moveID,
		ActorID:           spec.actorID,
		OccurredAt:        item.UpdatedAt,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		return nil, storageUnavailable(err)
	}
	return entry, nil
}

// revert restores the pre-mutation state after a failed audit append. Best
// effort: a concurrent writer may have moved the item on, in which case the
// inconsistency is logged for operator attention rather than fought over.
func (s *Service) revert(ctx context.Context, before, after *models.Item) {
	restored := *before
	restored.Version = after.Version + 1
	restored.UpdatedAt = s.now().UTC()
	if err := s.items.UpdateVersioned(ctx, &restored, after.Version); err != nil {
		s.logger.Error("failed reverting uncommitted mutation",
			zap.String("item_id", before.ID),
			zap.Error(err))
	}
}

func opFailed(op models.StockOperation, err error) error {
	outcome := "error"
	if kind := KindOf(err); kind != "" {
		outcome = string(kind)
	}
	metrics.Operations.WithLabelValues(string(op), outcome).Inc()
	return err
}
