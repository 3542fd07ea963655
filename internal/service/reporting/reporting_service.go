package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/repository/sheets"
	"github.com/labstack-dev/labledger/internal/service/alerts"
)

const (
	dateLayout         = "2006-01-02"
	lowStockWriteRange = "LowStock!A:F"
	expiringWriteRange = "Expiring!A:G"
)

// Service exports alert snapshots as spreadsheet rows for the lab managers
// who live in Sheets rather than dashboards.
type Service struct {
	repo   sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(repository sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger, now: time.Now}
}

// ExportLowStock appends one row per low-stock item to the report sheet.
func (s *Service) ExportLowStock(ctx context.Context, rows []alerts.LowStockAlert) error {
	if len(rows) == 0 {
		return nil
	}

	scannedAt := s.now().UTC().Format(dateLayout)
	values := make([][]interface{}, 0, len(rows))
	for _, alert := range rows {
		minimum := int64(0)
		if alert.Item.MinimumQuantity != nil {
			minimum = *alert.Item.MinimumQuantity
		}
		values = append(values, []interface{}{
			scannedAt,
			alert.Item.LabID,
			alert.Item.Name,
			alert.Item.Quantity,
			minimum,
			string(alert.Status),
		})
	}

	if err := s.repo.AppendRows(ctx, lowStockWriteRange, values); err != nil {
		return fmt.Errorf("export low stock report: %w", err)
	}

	s.logger.Info("low stock report exported", zap.Int("rows", len(values)))
	return nil
}

// ExportExpiring appends one row per expiring item to the report sheet.
func (s *Service) ExportExpiring(ctx context.Context, rows []alerts.ExpiryAlert) error {
	if len(rows) == 0 {
		return nil
	}

	scannedAt := s.now().UTC().Format(dateLayout)
	values := make([][]interface{}, 0, len(rows))
	for _, alert := range rows {
		expiry := ""
		if alert.Item.ExpiryDate != nil {
			expiry = alert.Item.ExpiryDate.Format(dateLayout)
		}
		values = append(values, []interface{}{
			scannedAt,
			alert.Item.LabID,
			alert.Item.Name,
			alert.Item.Quantity,
			expiry,
			alert.DaysLeft,
			string(alert.Status),
		})
	}

	if err := s.repo.AppendRows(ctx, expiringWriteRange, values); err != nil {
		return fmt.Errorf("export expiring report: %w", err)
	}

	s.logger.Info("expiring report exported", zap.Int("rows", len(values)))
	return nil
}
