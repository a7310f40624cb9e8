package backend

import (
	"errors"
	"fmt"

	"mealbills/internal/amqp"
	"mealbills/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQP: amqp.Config{
			URL:         appConfig.AMQPURL,
			Exchange:    appConfig.AMQPExchange,
			EventsQueue: appConfig.AMQPEventsQueue,
			ExportQueue: appConfig.AMQPExportQueue,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	if c.RequireAMQP && c.AMQP.URL == "" {
		return errors.New("AMQP URL is required")
	}
	return nil
}
