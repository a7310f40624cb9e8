package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealbills/internal/amqp"
	"mealbills/internal/core"
	"mealbills/internal/export"
	applog "mealbills/internal/log"
	"mealbills/internal/storage"
)

// ErrExportQueueUnavailable is returned by Enqueue when messaging is off.
var ErrExportQueueUnavailable = errors.New("export queue not configured")

// ExportService builds bill reports and queues them for the worker.
type ExportService struct {
	store storage.BillStore
	queue ExportQueue
	now   func() time.Time
}

// NewExportService accepts a nil queue; Enqueue then fails with
// ErrExportQueueUnavailable.
func NewExportService(store storage.BillStore, queue ExportQueue) *ExportService {
	return &ExportService{store: store, queue: queue, now: time.Now}
}

// BuildReport fetches the bills selected by f and reduces them into a
// report stamped with the current time.
func (s *ExportService) BuildReport(ctx context.Context, f core.BillFilter) (export.Report, export.Meta, error) {
	bills, err := s.store.ListBills(ctx, f)
	if err != nil {
		return export.Report{}, export.Meta{}, storeErr(applog.OpExport, "Failed to export bills", err)
	}
	meta := export.Meta{GeneratedAt: s.now(), From: f.From, Until: f.Until}
	if f.ConsumerName != nil {
		meta.ConsumerName = *f.ConsumerName
	}
	return export.Build(bills), meta, nil
}

// Enqueue validates the selection and hands it to the export worker.
func (s *ExportService) Enqueue(ctx context.Context, consumerName, startDate, endDate string) (*amqp.ExportRequest, error) {
	f, err := core.NewBillFilter(consumerName, "", startDate, endDate)
	if err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, ErrExportQueueUnavailable
	}

	req := amqp.NewExportRequest(deref(f.ConsumerName), dateString(f.From), dateString(f.Until))
	if err := s.queue.PublishExportRequest(ctx, req); err != nil {
		return nil, core.Unexpected("Failed to enqueue export", fmt.Errorf("publish job %s: %w", req.ID, err))
	}
	applog.FromContext(ctx).InfoContext(ctx, "Export queued", applog.FieldJobID, req.ID)
	return req, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateString(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
