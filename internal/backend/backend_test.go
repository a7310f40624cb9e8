package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"mealbills/internal/config"
	applog "mealbills/internal/log"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:     "sqlite",
		SQLiteDBPath:    "./x.db",
		AMQPURL:         "amqp://localhost",
		AMQPExchange:    "mealbills",
		AMQPEventsQueue: "bill_events",
		AMQPExportQueue: "export_jobs",
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.AMQP.ExportQueue != "export_jobs" || got.SQLiteDBPath != "./x.db" {
		t.Fatalf("unexpected backend config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"unknown type", Config{Type: "sheets"}, "invalid backend type"},
		{"worker without broker", Config{Type: MemoryBackend, RequireAMQP: true}, "AMQP URL is required"},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.wantErr == "" && err != nil {
			t.Fatalf("%q unexpected error %v", tt.name, err)
		}
		if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
			t.Fatalf("%q expected error containing %q, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(quietLogger())

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "mealbills.db")},
	} {
		res, err := f.CreateBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("%s: CreateBackend: %v", cfg.Type, err)
		}
		if res.AMQP != nil {
			t.Fatalf("%s: expected no AMQP client without URL", cfg.Type)
		}
		if err := res.Store.Ping(ctx); err != nil {
			t.Fatalf("%s: Ping: %v", cfg.Type, err)
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("%s: Cleanup: %v", cfg.Type, err)
		}
	}
}
