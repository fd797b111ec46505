package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cafeteria-service/internal/cafe"
	"cafeteria-service/internal/config"
	"cafeteria-service/internal/pool"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cafeteria-service stopped", "err", err)
		os.Exit(1)
	}
}

// run owns the pool: it is closed on every return path, including a failed
// Open, and only after the HTTP server has drained.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Global.LogLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p, err := pool.New(pool.Config{
		ConnString:     cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		AcquireTimeout: cfg.Database.AcquireTimeout,
	}, pool.WithLogger(logger), pool.WithMetrics(pool.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Open(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	if cfg.Database.AutoMigrate {
		err := p.With(ctx, func(l *pool.Lease) error {
			return cafe.AutoMigrate(ctx, l)
		})
		if err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: cafe.NewRouter(p, logger, reg,
			cafe.WithCORS(cfg.HTTP.CORSOrigin),
			cafe.WithBodyLimit(cfg.HTTP.MaxBodyBytes),
			cafe.WithRateLimit(cfg.HTTP.RateLimit),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cafeteria-service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Global.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Global.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
