package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/paramsearch/internal/config"
	dbRedis "github.com/kailas-cloud/paramsearch/internal/db/redis"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/paramsearch/internal/logger"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
	"github.com/kailas-cloud/paramsearch/internal/repository/schemacache"
	searchrepo "github.com/kailas-cloud/paramsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/paramsearch/internal/transport/chi"
	batchuc "github.com/kailas-cloud/paramsearch/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/paramsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/paramsearch/internal/usecase/search"
	"github.com/kailas-cloud/paramsearch/internal/version"
)

// healthProbeTimeout bounds each Redis call made by /health.
const healthProbeTimeout = 2 * time.Second

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting paramsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Get().Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("indexes", cfg.IndexNames()),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Database.Addrs,
		Username:    cfg.Database.Username,
		Password:    cfg.Database.Password,
		DB:          cfg.Database.DB,
		DialTimeout: time.Duration(cfg.Database.DialTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	compilerOpts, err := cfg.CompilerOptions(logger.Named("compiler"))
	if err != nil {
		logger.Fatal("Failed to configure compiler", zap.Error(err))
	}
	compiler := query.NewCompiler(compilerOpts...)

	repo := searchrepo.New(store, cfg.Database.KeyPrefix)

	// Pass a nil interface (not a typed nil pointer) when discovery is off.
	var schemas searchuc.SchemaSource
	switch {
	case !cfg.Search.Discovery:
	case cfg.SchemaTTL() > 0:
		schemas = schemacache.New(repo, cfg.SchemaTTL(), metrics.SchemaCacheTotal, logger)
	default:
		schemas = repo
	}

	searchSvc := searchuc.New(
		compiler,
		searchuc.NewInstrumentedExecutor(repo, logger),
		schemas,
		searchuc.Config{
			Globalize:     *cfg.Search.Globalize,
			Escape:        *cfg.Search.Escape,
			DefaultLocale: cfg.Search.DefaultLocale,
			Schemas:       cfg.Schemas(),
		},
		logger,
	)
	batchSvc := batchuc.New(searchSvc, logger).
		WithMaxBatchSize(cfg.Search.MaxBatchSize).
		WithConcurrency(cfg.Search.BatchConcurrency)
	healthSvc := healthuc.New(store, repo, cfg.IndexNames()).WithProbeTimeout(healthProbeTimeout)

	server := chiTransport.NewServer(searchSvc, batchSvc, healthSvc, chiTransport.Options{
		DefaultPerPage: cfg.Search.DefaultPerPage,
		MaxPerPage:     cfg.Search.MaxPerPage,
		DefaultLocale:  cfg.Search.DefaultLocale,
		Locales:        cfg.Search.Locales,
		Metrics:        *cfg.Metrics.Enabled,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped gracefully")
}
