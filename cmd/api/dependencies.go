package main

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/handler"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/service"

	"github.com/FACorreiaa/invoice-converter/pkg/config"
	"github.com/FACorreiaa/invoice-converter/pkg/cron"
	"github.com/FACorreiaa/invoice-converter/pkg/observability"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Metrics *observability.Metrics
	Archive storage.Storage

	// Services
	ConvertService *service.ConvertService
	Scheduler      *cron.Scheduler

	// Handlers
	InvoiceHandler *handler.InvoiceHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewMetrics()
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage opens the upload archive when archiving is enabled
func (d *Dependencies) initStorage() error {
	if !d.Config.Storage.ArchiveEnabled {
		return nil
	}

	archive, err := storage.NewLocalStorage(d.Config.Storage.ArchivePath)
	if err != nil {
		return err
	}
	d.Archive = archive

	d.Logger.Info("upload archive ready", slog.String("path", d.Config.Storage.ArchivePath))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.ConvertService = service.NewConvertService(parser.NewPDFParser(), d.Logger).
		WithMetrics(d.Metrics).
		WithCurrency(d.Config.Parser.Currency).
		WithClassifierOptions(parser.WithPendingOrderExpiry(d.Config.Parser.PendingOrderMaxLines))

	if d.Archive != nil {
		d.ConvertService.WithArchive(d.Archive)

		d.Scheduler = cron.NewScheduler(
			d.Archive,
			d.Config.Storage.PruneSchedule,
			d.Config.Storage.Retention(),
			d.Logger,
		).WithMetrics(d.Metrics)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.InvoiceHandler = handler.NewInvoiceHandler(d.ConvertService, d.Config.Server.MaxUploadBytes(), d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
