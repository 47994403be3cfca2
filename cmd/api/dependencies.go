// Package api wires the dashboard's components together and builds the HTTP
// router. cmd/dashboard runs it as a process.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/categorization"
	importhandler "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/handler"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/service"
	insightshandler "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/insights/handler"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
	transactionshandler "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions/handler"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/config"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/cron"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/middleware"
	"github.com/FACorreiaa/smart-finance-dashboard/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Persistence
	Repo   transactions.Repository
	closer func() error

	// Services
	Store         *transactions.Store
	Categorizer   *categorization.Categorizer
	SearchIndex   *categorization.SearchIndex
	Parser        *parser.Parser
	Inbox         storage.Inbox
	ImportService *importservice.ImportService
	Scheduler     *cron.Scheduler

	// Handlers
	ImportHandler       *importhandler.ImportHandler
	InsightsHandler     *insightshandler.InsightsHandler
	TransactionsHandler *transactionshandler.TransactionsHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if err := deps.initRepository(); err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRepository opens the configured persistence backend.
func (d *Dependencies) initRepository() error {
	switch d.Config.Storage.Backend {
	case config.StorageSQLite:
		repo, err := transactions.NewSQLiteRepository(d.Config.Storage.Path)
		if err != nil {
			return err
		}
		d.Repo, d.closer = repo, repo.Close
	case config.StorageJSON:
		repo, err := transactions.NewJSONFileRepository(d.Config.Storage.Path)
		if err != nil {
			return err
		}
		d.Repo = repo
	default:
		d.Repo = transactions.NewMemoryRepository(transactions.State{})
	}

	d.Logger.Info("repository initialized",
		slog.String("backend", d.Config.Storage.Backend),
		slog.String("path", d.Config.Storage.Path),
	)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	d.Store = transactions.NewStore(d.Repo, d.Logger)
	if err := d.Store.Load(ctx); err != nil {
		return err
	}

	d.Categorizer = categorization.NewCategorizer(nil)
	if n, err := d.Store.Backfill(ctx, d.Categorizer.Categorize); err != nil {
		d.Logger.Warn("failed to backfill categories", slog.Any("error", err))
	} else if n > 0 {
		d.Logger.Info("categories backfilled", slog.Int("transactions", n))
	}

	index, err := categorization.NewSearchIndex()
	if err != nil {
		return err
	}
	d.SearchIndex = index

	d.Parser = parser.NewParser(d.Categorizer, d.Logger)

	policy, err := transactions.ParsePolicy(d.Config.Import.Policy)
	if err != nil {
		return err
	}
	d.ImportService = importservice.NewImportService(d.Parser, d.Store, d.Logger).
		WithWorkers(d.Config.Import.Workers).
		WithDefaultPolicy(policy)

	if d.Config.Observability.MetricsEnabled {
		d.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.ImportService.WithMetrics(importservice.NewMetrics(d.Registry))
	}

	if d.Config.Import.Dir != "" {
		inbox, err := storage.NewLocalInbox(d.Config.Import.Dir)
		if err != nil {
			return fmt.Errorf("failed to init statement folder: %w", err)
		}
		d.Inbox = inbox
		d.ImportService.WithInbox(inbox)

		if d.Config.Import.ScanSchedule != "" {
			d.Scheduler = cron.NewScheduler(d.ImportService, d.Config.Import.ScanSchedule, "", d.Logger)
		}
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	maxUpload := int64(d.Config.Import.MaxUploadMB) << 20
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.Inbox, maxUpload, d.Logger)
	d.InsightsHandler = insightshandler.NewInsightsHandler(d.Store, d.Logger)
	d.TransactionsHandler = transactionshandler.NewTransactionsHandler(d.Store, d.Categorizer, d.SearchIndex, d.Logger)

	d.Logger.Info("handlers initialized")
}

// ScanOnStart runs one folder scan when configured to. A folder with no
// readable statement is logged and ignored.
func (d *Dependencies) ScanOnStart(ctx context.Context) error {
	if !d.Config.Import.ScanOnStart || d.Inbox == nil {
		return nil
	}
	report, err := d.ImportService.ScanInbox(ctx, "")
	if errors.Is(err, importservice.ErrNothingImported) {
		d.Logger.Warn("startup scan read no statement file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("startup scan failed: %w", err)
	}
	d.Logger.Info("startup scan completed",
		slog.Int("files", len(report.Files)),
		slog.Int("imported", report.Imported),
	)
	return nil
}

// Router builds the HTTP handler with every route and middleware.
func (d *Dependencies) Router() http.Handler {
	mux := http.NewServeMux()
	d.ImportHandler.Register(mux)
	d.InsightsHandler.Register(mux)
	d.TransactionsHandler.Register(mux)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"transactions": d.Store.Len(),
		})
	})
	if d.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	return middleware.Chain(mux,
		middleware.Recovery(d.Logger),
		middleware.Logger(d.Logger),
		middleware.CORS(d.Config.Server.AllowedOrigins),
		middleware.RateLimit(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst),
	)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
		d.SearchIndex = nil
	}
	if d.closer != nil {
		if err := d.closer(); err != nil {
			d.Logger.Warn("failed to close repository", slog.Any("error", err))
		}
		d.closer = nil
	}
	d.Logger.Info("cleanup completed")
}
