package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/labstack-dev/labledger/internal/domain/models"
	"github.com/labstack-dev/labledger/internal/service/alerts"
)

type capturingRepo struct {
	ranges []string
	rows   [][]interface{}
}

func (r *capturingRepo) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	r.ranges = append(r.ranges, sheetRange)
	r.rows = append(r.rows, rows...)
	return nil
}

func newTestReporting(repo *capturingRepo) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportLowStock(t *testing.T) {
	repo := &capturingRepo{}
	svc := newTestReporting(repo)

	minimum := int64(5)
	err := svc.ExportLowStock(context.Background(), []alerts.LowStockAlert{
		{Item: models.Item{ID: "a", Name: "gloves", LabID: "lab-1", Quantity: 2, MinimumQuantity: &minimum}, Status: alerts.StatusLowStock},
	})
	if err != nil {
		t.Fatalf("ExportLowStock: %v", err)
	}

	if len(repo.ranges) != 1 || repo.ranges[0] != lowStockWriteRange {
		t.Fatalf("ranges = %v, want [%s]", repo.ranges, lowStockWriteRange)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
	row := repo.rows[0]
	if row[0] != "2026-08-15" || row[1] != "lab-1" || row[2] != "gloves" {
		t.Errorf("row = %v", row)
	}
	if row[3] != int64(2) || row[4] != int64(5) || row[5] != "low_stock" {
		t.Errorf("row tail = %v", row[3:])
	}
}

func TestExportExpiring(t *testing.T) {
	repo := &capturingRepo{}
	svc := newTestReporting(repo)

	expiry := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	err := svc.ExportExpiring(context.Background(), []alerts.ExpiryAlert{
		{Item: models.Item{ID: "b", Name: "media", LabID: "lab-2", Quantity: 4, ExpiryDate: &expiry}, Status: alerts.StatusExpiringSoon, DaysLeft: 5},
	})
	if err != nil {
		t.Fatalf("ExportExpiring: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
	row := repo.rows[0]
	if row[4] != "2026-08-20" || row[5] != 5 || row[6] != "expiring_soon" {
		t.Errorf("row = %v", row)
	}
}

func TestExportSkipsEmptySnapshots(t *testing.T) {
	repo := &capturingRepo{}
	svc := newTestReporting(repo)

	if err := svc.ExportLowStock(context.Background(), nil); err != nil {
		t.Fatalf("ExportLowStock: %v", err)
	}
	if err := svc.ExportExpiring(context.Background(), nil); err != nil {
		t.Fatalf("ExportExpiring: %v", err)
	}
	if len(repo.ranges) != 0 {
		t.Errorf("ranges = %v, want no writes", repo.ranges)
	}
}
