package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/config"
	"github.com/labstack-dev/labledger/internal/service/alerts"
	"github.com/labstack-dev/labledger/internal/service/reporting"
	"github.com/labstack-dev/labledger/pkg/clients/webhook"
)

// Scheduler runs the periodic alert scan and fans the results out to the
// configured sinks. Both sinks are optional; a scan with neither configured
// only logs.
type Scheduler struct {
	cron         *cron.Cron
	scanner      *alerts.Scanner
	reportingSvc *reporting.Service
	webhook      webhook.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. reportingSvc and wh may be
// nil when the corresponding sink is not configured.
func NewScheduler(cfg config.Config, scanner *alerts.Scanner, reportingSvc *reporting.Service, wh webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		scanner:      scanner,
		reportingSvc: reportingSvc,
		webhook:      wh,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the alert scan job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Alerts.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Alerts.CronSchedule, s.runAlertScan); err != nil {
		s.logger.Error("failed to schedule alert scan", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runAlertScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lowStock, err := s.scanner.LowStock(ctx, "")
	if err != nil {
		s.logger.Error("low stock scan failed", zap.Error(err))
		return
	}

	expiring, err := s.scanner.Expiring(ctx, "", s.cfg.Alerts.ExpiryWindow, false)
	if err != nil {
		s.logger.Error("expiry scan failed", zap.Error(err))
		return
	}

	s.logger.Info("alert scan completed",
		zap.Int("low_stock", len(lowStock)),
		zap.Int("expiring", len(expiring)))

	if len(lowStock) == 0 && len(expiring) == 0 {
		return
	}

	if s.webhook != nil {
		if err := s.webhook.SendAlertDigest(ctx, buildDigest(lowStock, expiring)); err != nil {
			s.logger.Error("failed delivering alert digest", zap.Error(err))
		}
	}

	if s.reportingSvc != nil {
		if err := s.reportingSvc.ExportLowStock(ctx, lowStock); err != nil {
			s.logger.Error("failed exporting low stock report", zap.Error(err))
		}
		if err := s.reportingSvc.ExportExpiring(ctx, expiring); err != nil {
			s.logger.Error("failed exporting expiring report", zap.Error(err))
		}
	}
}

func buildDigest(lowStock []alerts.LowStockAlert, expiring []alerts.ExpiryAlert) webhook.AlertDigest {
	digest := webhook.AlertDigest{
		ScannedAt:     time.Now().UTC(),
		LowStockCount: len(lowStock),
		ExpiringCount: len(expiring),
	}

	for _, alert := range lowStock {
		minimum := int64(0)
		if alert.Item.MinimumQuantity != nil {
			minimum = *alert.Item.MinimumQuantity
		}
		digest.Lines = append(digest.Lines, webhook.AlertDigestLine{
			ItemID:   alert.Item.ID,
			ItemName: alert.Item.Name,
			LabID:    alert.Item.LabID,
			Status:   string(alert.Status),
			Detail:   fmt.Sprintf("%d on hand, minimum %d", alert.Item.Quantity, minimum),
		})
	}

	for _, alert := range expiring {
		digest.Lines = append(digest.Lines, webhook.AlertDigestLine{
			ItemID:   alert.Item.ID,
			ItemName: alert.Item.Name,
			LabID:    alert.Item.LabID,
			Status:   string(alert.Status),
			Detail:   fmt.Sprintf("%d days left", alert.DaysLeft),
		})
	}

	return digest
}
