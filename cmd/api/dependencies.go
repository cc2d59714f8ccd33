package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/extractor"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/handler"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/repository"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"
	"github.com/FACorreiaa/quote-ingest/pkg/config"
	"github.com/FACorreiaa/quote-ingest/pkg/cron"
	"github.com/FACorreiaa/quote-ingest/pkg/db"
	"github.com/FACorreiaa/quote-ingest/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Repositories
	QuoteRepo repository.QuoteRepository

	// Services
	Extractor    extractor.TextExtractor
	QuoteService *service.QuoteService
	FileStorage  storage.Storage
	Sweeper      *service.InboxSweeper
	Scheduler    *cron.Scheduler

	// Handlers
	QuoteHandler *handler.QuoteHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if cfg.Database.Enabled {
		if err := deps.initDatabase(); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		deps.QuoteRepo = repository.NewPostgresQuoteRepository(deps.DB.Pool)
	} else {
		logger.Warn("database disabled, imports will be rejected")
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initServices() error {
	switch d.Config.Parser.Extractor {
	case config.ExtractorPdftotext:
		d.Extractor = extractor.NewPdftotextExtractor(d.Config.Parser.PdftotextBin, d.Logger)
	default:
		d.Extractor = extractor.NewPDFExtractor(d.Logger, d.Config.Parser.MaxPages)
	}

	d.QuoteService = service.NewQuoteService(d.Extractor, d.Logger)
	if d.QuoteRepo != nil {
		d.QuoteService.WithRepository(d.QuoteRepo)
	}
	if d.Config.Observability.MetricsEnabled {
		d.QuoteService.WithMetrics(service.NewMetrics(d.Registry))
	}

	fileStorage, err := storage.New(&storage.Config{
		Type:      storage.StorageType(d.Config.Storage.Type),
		LocalPath: d.Config.Storage.LocalPath,
	})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	if dir := d.Config.Storage.InboxDir; dir != "" {
		d.Sweeper = service.NewInboxSweeper(d.QuoteService, dir, d.Logger).WithArchive(d.FileStorage)
		d.Scheduler = cron.NewScheduler(d.Sweeper, d.Config.Schedule.InboxSweep, d.Logger)
	}

	d.Logger.Info("services initialized",
		slog.String("extractor", d.Config.Parser.Extractor),
		slog.Bool("persistence", d.QuoteRepo != nil),
		slog.Bool("inbox", d.Sweeper != nil),
	)
	return nil
}

func (d *Dependencies) initHandlers() {
	d.QuoteHandler = handler.NewQuoteHandler(d.QuoteService, d.Logger).
		WithStorage(d.FileStorage).
		WithMaxUploadBytes(d.Config.Server.MaxUploadBytes)
	if d.DB != nil {
		d.QuoteHandler.WithHealthCheck(d.DB.Health)
	}
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		select {
		case <-d.Scheduler.Stop().Done():
		case <-ctx.Done():
			d.Logger.Warn("inbox sweep did not finish before shutdown")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
