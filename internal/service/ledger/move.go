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

// MoveStock transfers quantity from the source item's lab to the target lab.
// The store gives us single-document atomicity, so the transfer runs as a
// saga: debit the source, credit (or create) the destination, and on a
// failed credit reverse the debit with a compensating entry so stock is
// never silently destroyed. Both halves' entries share one MoveID; the
// conservation invariant holds at every externally observable point except
// the window between debit and credit, which either closes or compensates.
func (s *Service) MoveStock(ctx context.Context, req models.MoveStockRequest) (*models.MoveResult, error) {
	if req.Quantity <= 0 {
		return nil, opFailed(models.OpMove, invalidQuantity("quantity", req.Quantity))
	}

	ok, err := s.labs.Exists(ctx, req.TargetLabID)
	if err != nil {
		return nil, opFailed(models.OpMove, storageUnavailable(err))
	}
	if !ok {
		return nil, opFailed(models.OpMove, labNotFound(req.TargetLabID))
	}

	moveID := uuid.NewString()

	debit, err := s.commit(ctx, req.ItemID, func(item *models.Item) (*models.Item, error) {
		if req.SourceLabID != "" && req.SourceLabID != item.LabID {
			return nil, staleLocation(req.SourceLabID, item.LabID)
		}
		if req.Quantity > item.Quantity {
			return nil, insufficientStock(item.ID, req.Quantity)
		}
		updated := *item
		updated.Quantity = item.Quantity - req.Quantity
		return &updated, nil
	}, logSpec{op: models.OpMove, delta: -req.Quantity, reason: req.Reason, notes: req.Notes, moveID: moveID, actorID: req.ActorID})
	if err != nil {
		return nil, opFailed(models.OpMove, err)
	}

	source := debit.Item
	credit, err := s.creditDestination(ctx, &source, req, moveID)
	if err != nil {
		s.compensate(ctx, req, moveID)
		return nil, opFailed(models.OpMove, err)
	}

	metrics.Operations.WithLabelValues(string(models.OpMove), "success").Inc()
	return &models.MoveResult{
		Source:      source,
		Destination: credit.Item,
		MoveID:      moveID,
		LogEntries:  append(debit.LogEntries, credit.LogEntries...),
	}, nil
}

// creditDestination applies the positive half of a move: increment the
// holding of the same catalog item in the target lab, or create one carrying
// the source's catalog fields. A concurrent move may create the destination
// between our lookup and insert, so the find-or-create loop retries on a
// colliding insert.
func (s *Service) creditDestination(ctx context.Context, source *models.Item, req models.MoveStockRequest, moveID string) (*models.StockOperationResult, error) {
	spec := logSpec{op: models.OpMove, delta: req.Quantity, reason: req.Reason, notes: req.Notes, moveID: moveID, actorID: req.ActorID}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		dest, err := s.items.FindByCatalogIdentity(ctx, req.TargetLabID, source.Name, source.Type)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, storageUnavailable(err)
		}

		if err == nil {
			result, err := s.commit(ctx, dest.ID, func(item *models.Item) (*models.Item, error) {
				updated := *item
				updated.Quantity = item.Quantity + req.Quantity
				if source.ExpiryDate != nil && (item.ExpiryDate == nil || source.ExpiryDate.Before(*item.ExpiryDate)) {
					updated.ExpiryDate = source.ExpiryDate
				}
				return &updated, nil
			}, spec)
			if KindOf(err) == KindItemNotFound {
				// Deleted between lookup and write; fall through to create.
				continue
			}
			return result, err
		}

		created := newDestinationItem(source, req, s.now().UTC())
		if err := s.items.Insert(ctx, created); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				// Lost a create race with a concurrent move; re-resolve.
				metrics.VersionConflicts.Inc()
				continue
			}
			return nil, storageUnavailable(err)
		}

		entry, err := s.append(ctx, created, spec, req.Quantity)
		if err != nil {
			// The destination was created but its entry did not commit.
			// Empty it so no credited quantity is observable without an
			// audit record; the caller then compensates the debit.
			emptied := *created
			emptied.Quantity = 0
			emptied.Version = created.Version + 1
			emptied.UpdatedAt = s.now().UTC()
			if uerr := s.items.UpdateVersioned(ctx, &emptied, created.Version); uerr != nil {
				s.logger.Error("failed emptying unlogged destination",
					zap.String("item_id", created.ID), zap.Error(uerr))
			}
			return nil, err
		}
		return &models.StockOperationResult{Item: *created, LogEntries: []models.StockLogEntry{*entry}}, nil
	}

	return nil, concurrentModification(req.ItemID)
}

// newDestinationItem builds the holding created in the target lab when none
// exists yet, carrying over the source's catalog fields.
func newDestinationItem(source *models.Item, req models.MoveStockRequest, now time.Time) *models.Item {
	return &models.Item{
		ID:              uuid.NewString(),
		Name:            source.Name,
		Type:            source.Type,
		LabID:           req.TargetLabID,
		Quantity:        req.Quantity,
		MinimumQuantity: source.MinimumQuantity,
		Unit:            source.Unit,
		ExpiryDate:      source.ExpiryDate,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// compensate reverses a debited move whose credit failed, logging a
// move_failed entry tagged with the move id. Idempotent under retry: when a
// compensating entry for this move already exists nothing is reversed again.
func (s *Service) compensate(ctx context.Context, req models.MoveStockRequest, moveID string) {
	n, err := s.log.CountByMove(ctx, moveID, models.OpMoveFailed)
	if err != nil {
		s.logger.Error("failed checking prior compensation",
			zap.String("move_id", moveID), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}

	reason := "move failed, debit reversed"
	_, err = s.commit(ctx, req.ItemID, func(item *models.Item) (*models.Item, error) {
		updated := *item
		updated.Quantity = item.Quantity + req.Quantity
		return &updated, nil
	}, logSpec{op: models.OpMoveFailed, delta: req.Quantity, reason: reason, moveID: moveID, actorID: req.ActorID})
	if err != nil {
		s.logger.Error("move compensation failed, stock requires manual reconciliation",
			zap.String("move_id", moveID),
			zap.String("item_id", req.ItemID),
			zap.Error(err))
		return
	}

	metrics.MoveCompensations.Inc()
	s.logger.Warn("move compensated",
		zap.String("move_id", moveID),
		zap.String("item_id", req.ItemID),
		zap.Int64("quantity", req.Quantity))
}
