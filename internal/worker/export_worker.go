// Package worker processes export jobs delivered over AMQP.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mealbills/internal/amqp"
	"mealbills/internal/core"
	"mealbills/internal/export"
	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
)

// Export job outcomes recorded in metrics.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// ReportBuilder selects bills and reduces them to a report.
// *services.ExportService implements it.
type ReportBuilder interface {
	BuildReport(ctx context.Context, f core.BillFilter) (export.Report, export.Meta, error)
}

// Uploader pushes a report grid to a remote sheet.
type Uploader interface {
	Upload(ctx context.Context, rows [][]string) (string, error)
}

// ExportWorker writes requested reports to disk and, when configured,
// uploads them to Google Sheets.
type ExportWorker struct {
	reports  ReportBuilder
	dir      string
	uploader Uploader
	metrics  *metrics.Metrics
	logger   *applog.Logger
}

// NewExportWorker accepts a nil uploader, in which case reports are only
// written to dir.
func NewExportWorker(reports ReportBuilder, dir string, uploader Uploader, m *metrics.Metrics, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		reports:  reports,
		dir:      dir,
		uploader: uploader,
		metrics:  m,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleExportRequest processes one export job. A request that can never
// succeed returns nil so it is acked and dropped; other failures are
// returned so the message is requeued.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, req *amqp.ExportRequest) error {
	logger := w.logger.With(applog.FieldJobID, req.ID)
	logger.InfoContext(ctx, "Processing export request",
		applog.FieldConsumer, req.ConsumerName,
		applog.FieldStartDate, req.StartDate,
		applog.FieldEndDate, req.EndDate)

	if !plainName(req.ID) {
		logger.WarnContext(ctx, "Dropping export request with unusable job id")
		w.metrics.ExportJob(OutcomeRejected)
		return nil
	}

	f, err := core.NewBillFilter(req.ConsumerName, "", req.StartDate, req.EndDate)
	if err != nil {
		logger.WarnContext(ctx, "Dropping invalid export request", applog.FieldError, err)
		w.metrics.ExportJob(OutcomeRejected)
		return nil
	}

	report, meta, err := w.reports.BuildReport(ctx, f)
	if err != nil {
		w.metrics.ExportJob(OutcomeFailed)
		return fmt.Errorf("build report: %w", err)
	}

	path, err := w.writeFile(report, meta, req.ID)
	if err != nil {
		w.metrics.ExportJob(OutcomeFailed)
		return err
	}

	if w.uploader != nil {
		rng, err := w.uploader.Upload(ctx, export.Rows(report, meta))
		if err != nil {
			w.metrics.ExportJob(OutcomeFailed)
			return fmt.Errorf("upload report: %w", err)
		}
		logger.InfoContext(ctx, "Report uploaded to Google Sheets", "range", rng)
	}

	w.metrics.ExportJob(OutcomeSucceeded)
	logger.InfoContext(ctx, "Export completed",
		"path", path,
		applog.FieldCount, report.BillCount,
		applog.FieldAmountCents, report.GrandTotal.Cents)
	return nil
}

// writeFile writes through a temp file so readers never see a partial report.
func (w *ExportWorker) writeFile(report export.Report, meta export.Meta, jobID string) (string, error) {
	if !plainName(jobID) {
		return "", fmt.Errorf("job id %q is not a plain file name", jobID)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := strings.TrimSuffix(export.FileName(meta.GeneratedAt), ".csv") + "-" + jobID + ".csv"
	path := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteCSV(tmp, report, meta); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move report into place: %w", err)
	}
	return path, nil
}

// plainName reports whether id can be used as a file name inside the
// export directory without reaching outside it.
func plainName(id string) bool {
	return id != "" && id != "." && id != ".." && filepath.Base(id) == id && !strings.ContainsAny(id, `/\`)
}
