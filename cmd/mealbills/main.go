package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"mealbills/internal/cli"
	apphttp "mealbills/internal/http"
	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
	"mealbills/internal/middleware/security"
	"mealbills/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg, false)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	m := metrics.New()

	// a nil *amqp.Client must not end up inside a non-nil interface
	var (
		publisher services.EventPublisher
		queue     services.ExportQueue
	)
	if res.AMQP != nil {
		publisher, queue = res.AMQP, res.AMQP
	}

	consumers := services.NewConsumerService(res.Store, publisher)
	if n, err := consumers.EnsureSeeded(ctx, cfg.SeedConsumers); err != nil {
		logger.Error("Failed to seed consumers", applog.FieldError, err)
		os.Exit(1)
	} else if n > 0 {
		logger.Info("Seeded consumers", "created", n)
	}

	clientIP, err := security.NewClientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		logger.Error("Invalid trusted proxies", applog.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Bills:              services.NewBillService(res.Store, publisher, m),
		Consumers:          consumers,
		Summary:            services.NewSummaryService(res.Store, m),
		Exports:            services.NewExportService(res.Store, queue),
		Ready:              res.Store,
		Metrics:            m,
		Logger:             logger,
		ClientIP:           clientIP,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting mealbills server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp", res.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server shutdown error", applog.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
