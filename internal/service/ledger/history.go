package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/labstack-dev/labledger/internal/domain/models"
)

const (
	readRetryAttempts = 3
	readRetryBase     = 100 * time.Millisecond
)

// GetHistory returns the item's audit entries ordered by occurred_at
// descending. Pagination is cursor-backed in the store on the
// (occurred_at, id) pair so concurrent appends never skip or duplicate
// entries across pages.
func (s *Service) GetHistory(ctx context.Context, itemID string, query models.HistoryQuery) ([]models.StockLogEntry, error) {
	query = query.Normalize()

	if _, err := s.items.Get(ctx, itemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, itemNotFound(itemID)
		}
		return nil, storageUnavailable(err)
	}

	var entries []models.StockLogEntry
	err := withReadRetry(ctx, func() error {
		var err error
		entries, err = s.log.ListByItem(ctx, itemID, query)
		return err
	})
	if err != nil {
		return nil, storageUnavailable(err)
	}
	return entries, nil
}

// withReadRetry retries an idempotent read on transient store failure with a
// linear backoff. Mutations never go through here: a failed write is
// surfaced immediately rather than blindly replayed.
func withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= readRetryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == readRetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * readRetryBase):
		}
	}
	return err
}
