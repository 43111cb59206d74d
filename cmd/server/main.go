package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scamwatch/scamwatch/internal/api"
	"github.com/scamwatch/scamwatch/internal/config"
	"github.com/scamwatch/scamwatch/internal/dashboard"
	"github.com/scamwatch/scamwatch/internal/db"
	"github.com/scamwatch/scamwatch/internal/logic/ratelimit"
	"github.com/scamwatch/scamwatch/internal/observability"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"github.com/scamwatch/scamwatch/internal/upstream"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.OTLPEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	// Redis is an optional shared payload cache; the dashboard runs without it.
	var store *db.RedisStore
	if cfg.RedisAddr != "" {
		var err error
		store, err = db.InitRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer store.Close()
	}

	source := upstream.NewClient(cfg.DataSourceURL, cfg.RequestTimeout, cfg.CacheTTL, store, logger, metricsRegistry)
	reporter := reporting.NewClient(cfg.ReportSinkURL, cfg.RequestTimeout, logger, metricsRegistry)

	rateLimiter := ratelimit.NewSubmissionLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, metricsRegistry)

	controller := dashboard.NewController(source, reporter, rateLimiter, store, logger, metricsRegistry)

	// Initial load failures are not fatal; the collection stays empty and the
	// operator can retry through /api/refresh.
	loadCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	if err := controller.Load(loadCtx); err != nil {
		logger.Error("initial load failed", zap.Error(err))
	}
	cancel()

	srvDeps := api.NewServer(logger, controller, store, metricsRegistry, cfg)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      srvDeps.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Dashboard server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	if cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(cfg.RefreshInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					refreshCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
					if err := controller.Refresh(refreshCtx); err != nil {
						logger.Error("auto refresh", zap.Error(err))
					}
					cancel()
				case <-ctx.Done():
					ticker.Stop()
					return
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
