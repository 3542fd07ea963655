package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/labstack-dev/labledger/internal/config"
	"github.com/labstack-dev/labledger/internal/repository/mongodb"
	"github.com/labstack-dev/labledger/internal/repository/sheets"
	"github.com/labstack-dev/labledger/internal/scheduler"
	"github.com/labstack-dev/labledger/internal/server/handlers"
	"github.com/labstack-dev/labledger/internal/server/router"
	alertsvc "github.com/labstack-dev/labledger/internal/service/alerts"
	ledgersvc "github.com/labstack-dev/labledger/internal/service/ledger"
	reportingsvc "github.com/labstack-dev/labledger/internal/service/reporting"
	"github.com/labstack-dev/labledger/pkg/clients/webhook"
	"github.com/labstack-dev/labledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	store, err := mongodb.NewStore(bootCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(bootCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	items := store.Items()
	ledgerSvc := ledgersvc.NewService(items, store.Ledger(), store.Labs(), baseLogger.Named("svc.ledger"))
	scanner := alertsvc.NewScanner(items, baseLogger.Named("svc.alerts"))

	var reportingSvc *reportingsvc.Service
	if cfg.SheetsEnabled() {
		sheetsRepo, err := sheets.NewReportSheetRepository(bootCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingSvc = reportingsvc.NewService(sheetsRepo, baseLogger.Named("svc.reporting"))
		baseLogger.Info("sheets report export enabled")
	} else {
		baseLogger.Warn("sheets report export disabled, no spreadsheet configured")
	}

	var alertSink webhook.Client
	if cfg.WebhookEnabled() {
		alertSink = webhook.NewClient(cfg.Webhook)
		baseLogger.Info("alert webhook delivery enabled")
	} else {
		baseLogger.Warn("alert webhook delivery disabled, no url configured")
	}

	stockHandler := handlers.NewStockHandler(ledgerSvc, baseLogger.Named("handlers.stock"))
	alertsHandler := handlers.NewAlertsHandler(scanner, cfg.Alerts.ExpiryWindow, baseLogger.Named("handlers.alerts"))
	engine := router.New(stockHandler, alertsHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, scanner, reportingSvc, alertSink, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
