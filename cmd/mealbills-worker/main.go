package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mealbills/internal/cli"
	"mealbills/internal/export"
	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
	"mealbills/internal/services"
	"mealbills/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting mealbills-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to run the export worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg, true)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	var uploader worker.Uploader
	if cfg.SheetsEnabled() {
		creds, err := export.LoadCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Error("Failed to load Google credentials", applog.FieldError, err)
			os.Exit(1)
		}
		sheets, err := export.NewSheetsWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, creds)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		uploader = sheets
		logger.Info("Google Sheets upload enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets disabled, exports are written to disk only", "dir", cfg.ExportDir)
	}

	// the worker only reads, so no queue is needed for enqueueing
	reports := services.NewExportService(res.Store, nil)
	m := metrics.New()
	exportWorker := worker.NewExportWorker(reports, cfg.ExportDir, uploader, m, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := res.AMQP.ConsumeExportRequests(gctx, exportWorker.HandleExportRequest)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", m.Handler())
		metricsSrv := &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Serving worker metrics", "port", cfg.WorkerMetricsPort)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer shutdownCancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
