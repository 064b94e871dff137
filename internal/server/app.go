// Package server wires the marketplace backend together: it opens the
// database, applies migrations, builds the services and runs the HTTP API,
// the gRPC health endpoint and the session purge scheduler until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/auth"
	"github.com/businessinrwanda/marketplace/internal/server/cache"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/httpapi"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
	"github.com/businessinrwanda/marketplace/internal/server/scheduler"
	"github.com/businessinrwanda/marketplace/internal/server/services"

	gs "github.com/businessinrwanda/marketplace/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

// runner is anything the app supervises until ctx ends.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	closer func() error

	http      *http.Server
	health    runner
	scheduler runner
}

// openDB is a seam for tests.
var openDB = OpenDB

// OpenDB opens a pgx-backed pool for dsn and checks it is reachable.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewLogger(cfg *config.Config) *logging.SlogLogger {
	format := "json"
	if cfg.IsDevelopment() {
		format = "text"
	}
	return logging.New(os.Stdout, format, cfg.LogLevel)
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg)

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	claimCache, closeCache, err := newClaimCache(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessions := services.NewSessionService(db, rm,
		auth.NewJWTVerifier(cfg.IdentitySecret, cfg.IdentityIssuer, cfg.IdentityAudience), cfg, logger)

	api := httpapi.NewServer(httpapi.Deps{
		Config:        cfg,
		Logger:        logger,
		Sessions:      sessions,
		Opportunities: services.NewOpportunityService(db, rm),
		Claims:        services.NewClaimService(db, rm, claimCache, cfg, logger),
		Moderation:    services.NewModerationService(db, rm, logger),
		Companies:     services.NewCompanyService(db, rm),
		Categories:    services.NewCategoryService(db, rm),
		Uploads:       services.NewUploadService(cfg),
		Ping:          db.PingContext,
	})

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		closer: func() error { return errors.Join(closeCache(), db.Close()) },
		http: &http.Server{
			Addr:              cfg.EndpointAddrHTTP,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		health:    gs.NewHealthServer(cfg.EndpointAddrGRPC, logger, db.PingContext),
		scheduler: scheduler.New(sessions, cfg.SessionPurgeSchedule, logger),
	}, nil
}

// newClaimCache connects to Redis when configured. Without a URL claims are
// always read from the database.
func newClaimCache(ctx context.Context, cfg *config.Config, l logging.Logger) (cache.ClaimCache, func() error, error) {
	if cfg.RedisURL == "" {
		l.Warn(ctx, "redis url not set, claim cache disabled")
		return cache.Nop{}, func() error { return nil }, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis init error: %w", err)
	}
	return cache.NewRedisClaimCache(rdb, cfg.ClaimCacheTTL), rdb.Close, nil
}

func (app *App) serveHTTP(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "http server listening", "addr", app.http.Addr)
		errCh <- app.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Run blocks until a termination signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Environment)
	defer func() {
		if err := app.closer(); err != nil {
			app.logger.Error(context.Background(), "close resources", "err", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.serveHTTP(ctx) })
	g.Go(func() error { return app.health.Run(ctx) })
	g.Go(func() error { return app.scheduler.Run(ctx) })

	err := g.Wait()
	app.logger.Info(context.Background(), "app stopped")
	return err
}
