package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q expected %v, got %v", in, want, got)
		}
	}
}

func TestNewJSONLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf, Component: ComponentStorage})
	logger.Info("opened", FieldCount, 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentStorage {
		t.Fatalf("expected component %q, got %v", ComponentStorage, entry[FieldComponent])
	}
	if entry[FieldCount] != float64(3) {
		t.Fatalf("expected count 3, got %v", entry[FieldCount])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: FormatText, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatPretty, Output: &buf})
	logger.Info("pretty line")
	if !strings.Contains(buf.String(), "pretty line") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestNewContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf}).With(FieldRequestID, "req_abc")

	ctx := NewContext(context.Background(), logger)
	FromContext(ctx).Info("inside")

	if !strings.Contains(buf.String(), `"request_id":"req_abc"`) {
		t.Fatalf("expected request id in log, got %q", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
}
