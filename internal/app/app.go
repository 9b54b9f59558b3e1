package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/config"
	"github.com/kirinyoku/tourdesk/internal/docstore"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/jobs"
	"github.com/kirinyoku/tourdesk/internal/observability"
	"github.com/kirinyoku/tourdesk/internal/postgres"
	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/kirinyoku/tourdesk/internal/redis"
	postgresrepo "github.com/kirinyoku/tourdesk/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/service"
	"github.com/kirinyoku/tourdesk/internal/sheets"
	httpgin "github.com/kirinyoku/tourdesk/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	worker     *jobs.Worker
	queue      *jobs.Client
	pubsub     *redisrepo.DocumentsPubSub
	// syncSheets triggers one export as soon as the worker starts.
	syncSheets bool
	closers    []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()

	// Initialize dependencies
	pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.PostgresDSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pgxPool); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	closers := []func(){pgxPool.Close, func() { _ = rdb.Close() }}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	drafts := redisrepo.NewDraftStore(rdb, cfg.Quote.DraftTTL)
	pubsub := redisrepo.NewDocumentsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(
		rdb,
		redis.KeyRateLimit("assistant"),
		cfg.Assistant.RateLimit,
		cfg.Assistant.RateLimitWindow,
	)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 24*time.Hour)

	// Integrations are optional and degrade to "not configured"
	drive, err := docstore.New(ctx, docstore.Config{
		CredentialsJSON: cfg.Google.CredentialsJSON,
		FolderID:        cfg.Google.DriveFolderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize drive: %w", err)
	}
	if !drive.Configured() {
		logger.Warn("drive not configured, issued documents will stay local")
	}

	sheet, err := sheets.New(ctx, sheets.Config{
		CredentialsJSON: cfg.Google.CredentialsJSON,
		SpreadsheetID:   cfg.Google.SheetsID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets: %w", err)
	}

	asst, err := assistant.New(ctx, assistant.Config{APIKey: cfg.Assistant.APIKey, Model: cfg.Assistant.Model})
	switch {
	case errors.Is(err, assistant.ErrNotConfigured):
		logger.Warn("assistant not configured")
		asst = nil
	case err != nil:
		return nil, fmt.Errorf("failed to initialize assistant: %w", err)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	queue := jobs.NewClient(redisOpts)
	closers = append(closers, func() { _ = queue.Close() })

	metrics := observability.NewMetrics(nil)

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:     store,
		Cache:     cache,
		Drafts:    drafts,
		PubSub:    pubsub,
		Limiter:   limiter,
		Drive:     drive,
		Sheets:    sheet,
		Assistant: asst,
		Queue:     queue,
		Metrics:   metrics,
		Logger:    logger,
	}, service.Config{
		DefaultCurrency: cfg.Quote.DefaultCurrency,
		CatalogCacheTTL: cfg.Quote.CatalogCacheTTL,
		Issuer:          quote.IssuerConfig{UploadTimeout: cfg.Quote.UploadTimeout},
		Policy: quote.StaticPolicy{
			Invoice:   domain.DocumentStatus(cfg.Quote.InvoiceStatus),
			Quotation: domain.DocumentStatus(cfg.Quote.QuotationStatus),
		},
	})

	// Background jobs
	var cron []jobs.CronRegistration
	if sheet.Configured() && cfg.Jobs.SheetsSyncCron != "" {
		task, err := jobs.NewSheetsSyncTask(time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to build sheets sync task: %w", err)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.Jobs.SheetsSyncCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Jobs.Concurrency,
		Logger:      logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDocumentSync, Handler: jobs.NewDocumentSyncJob(drive, services.Registry, logger, metrics).Handle},
			{Type: jobs.TaskSheetsSync, Handler: jobs.NewSheetsSyncJob(services.Export, logger, metrics).Handle},
		},
		Cron: cron,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker: %w", err)
	}

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger, httpgin.RouterConfig{
		Production: cfg.Server.Production,
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:     worker,
		queue:      queue,
		pubsub:     pubsub,
		syncSheets: len(cron) > 0,
		closers:    closers,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.syncSheets {
		if err := a.queue.EnqueueSheetsSync(ctx); err != nil {
			a.logger.Warn("failed to schedule initial sheets sync", "error", err)
		}
	}

	// Job worker
	g.Go(func() error {
		a.logger.Info("job worker started", "concurrency", a.cfg.Jobs.Concurrency)
		if err := a.worker.Run(gCtx); err != nil {
			return fmt.Errorf("job worker: %w", err)
		}
		return nil
	})

	// Document change feed
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(_ context.Context, gigID, documentID string) {
			a.logger.Debug("document changed", "gig_id", gigID, "document_id", documentID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("documents subscription: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
