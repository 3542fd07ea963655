package alerts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/domain/models"
)

// ItemFinder is the read-only item query surface the scanner needs.
type ItemFinder interface {
	// FindLowStock returns items with a minimum_quantity set whose quantity
	// is at or under it, optionally scoped to one lab (empty = all labs).
	FindLowStock(ctx context.Context, labID string) ([]models.Item, error)
	// FindExpiring returns items whose expiry_date is set and not after
	// cutoff, optionally scoped to one lab.
	FindExpiring(ctx context.Context, labID string, cutoff time.Time) ([]models.Item, error)
}

// StockStatus buckets a low-stock projection row.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusLowStock   StockStatus = "low_stock"
)

// ExpiryStatus buckets an expiry projection row.
type ExpiryStatus string

const (
	StatusExpired      ExpiryStatus = "expired"
	StatusExpiringSoon ExpiryStatus = "expiring_soon"
)

// LowStockAlert is one row of the low-stock projection.
type LowStockAlert struct {
	Item   models.Item `json:"item"`
	Status StockStatus `json:"status"`
}

// ExpiryAlert is one row of the expiry projection. DaysLeft is negative for
// items already past their expiry date.
type ExpiryAlert struct {
	Item     models.Item  `json:"item"`
	Status   ExpiryStatus `json:"status"`
	DaysLeft int          `json:"days_left"`
}

// Scanner derives alert projections from current item state. Pure reads: it
// never mutates the store and holds no subscription state, so every call
// reflects the store at query time.
type Scanner struct {
	items  ItemFinder
	logger *zap.Logger
	now    func() time.Time
}

// NewScanner wires an alert scanner.
func NewScanner(items ItemFinder, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{items: items, logger: logger, now: time.Now}
}

// LowStock returns all items at or under their configured threshold,
// optionally filtered by lab. Items without a threshold never appear.
func (s *Scanner) LowStock(ctx context.Context, labID string) ([]LowStockAlert, error) {
	items, err := s.items.FindLowStock(ctx, labID)
	if err != nil {
		return nil, err
	}

	out := make([]LowStockAlert, 0, len(items))
	for _, item := range items {
		status := StatusLowStock
		if item.Quantity == 0 {
			status = StatusOutOfStock
		}
		out = append(out, LowStockAlert{Item: item, Status: status})
	}
	return out, nil
}

// Expiring returns items whose expiry date falls within the window. The
// default convention includes items already past expiry (they expire "at day
// zero"); upcomingOnly narrows the projection to not-yet-expired items.
func (s *Scanner) Expiring(ctx context.Context, labID string, withinDays int, upcomingOnly bool) ([]ExpiryAlert, error) {
	if withinDays < 0 {
		withinDays = 0
	}
	now := s.now().UTC()
	cutoff := now.AddDate(0, 0, withinDays)

	items, err := s.items.FindExpiring(ctx, labID, cutoff)
	if err != nil {
		return nil, err
	}

	out := make([]ExpiryAlert, 0, len(items))
	for _, item := range items {
		if item.ExpiryDate == nil {
			continue
		}
		daysLeft := int(item.ExpiryDate.Sub(now).Hours() / 24)
		status := StatusExpiringSoon
		if item.ExpiryDate.Before(now) {
			if upcomingOnly {
				continue
			}
			status = StatusExpired
			if daysLeft > 0 {
				daysLeft = 0
			}
		}
		out = append(out, ExpiryAlert{Item: item, Status: status, DaysLeft: daysLeft})
	}
	return out, nil
}
