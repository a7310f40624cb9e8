package backend

import (
	"context"
	"errors"
	"fmt"

	"mealbills/internal/amqp"
	applog "mealbills/internal/log"
	"mealbills/internal/storage"
	"mealbills/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend opens the store and, when configured, the AMQP client.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	client, err := f.createAMQP(ctx, config)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Result{
		Store:   store,
		AMQP:    client,
		Cleanup: cleanup(store, client),
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return store, nil
	case MemoryBackend:
		f.logger.WarnContext(ctx, "Initialized memory backend, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createAMQP(ctx context.Context, config Config) (*amqp.Client, error) {
	if config.AMQP.URL == "" {
		f.logger.InfoContext(ctx, "AMQP disabled, change events and export jobs are off")
		return nil, nil
	}
	client, err := amqp.NewClient(config.AMQP, f.logger)
	if err != nil {
		if config.RequireAMQP {
			return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without messaging", applog.FieldError, err)
		return nil, nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQP.Exchange,
		"events_queue", config.AMQP.EventsQueue,
		"export_queue", config.AMQP.ExportQueue)
	return client, nil
}

func cleanup(store storage.Store, client *amqp.Client) CleanupFunc {
	return func() error {
		var errs []error
		if client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		return errors.Join(errs...)
	}
}
