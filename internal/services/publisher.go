// Package services holds the use cases behind the HTTP API: validation and
// conflict pre-checks, store access, metrics and change notifications.
package services

import (
	"context"
	"fmt"

	"mealbills/internal/amqp"
	"mealbills/internal/core"
	applog "mealbills/internal/log"
)

// EventPublisher sends change notifications. *amqp.Client implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.ChangeEvent) error
}

// ExportQueue accepts export jobs. *amqp.Client implements it.
type ExportQueue interface {
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
}

// publishEvent is best-effort: the mutation already committed, so a
// messaging failure is logged and swallowed.
func publishEvent(ctx context.Context, pub EventPublisher, eventType, id, consumerID string) {
	logger := applog.FromContext(ctx)
	if pub == nil {
		logger.DebugContext(ctx, "AMQP publisher not configured, skipping change event", "type", eventType)
		return
	}
	if err := pub.PublishEvent(ctx, amqp.NewChangeEvent(eventType, id, consumerID)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish change event",
			"type", eventType,
			"id", id,
			applog.FieldError, err,
			applog.FieldOperation, applog.OpPublish)
	}
}

// storeErr keeps classified errors as they are and turns anything else
// into an unexpected error carrying the client-facing msg. The caller
// that finally handles the error logs it.
func storeErr(op, msg string, err error) error {
	if core.KindOf(err) != core.KindUnexpected {
		return err
	}
	return core.Unexpected(msg, fmt.Errorf("%s: %w", op, err))
}
