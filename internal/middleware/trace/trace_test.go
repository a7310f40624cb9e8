package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "mealbills/internal/log"
)

func newTestLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelDebug, Format: applog.FormatJSON, Output: buf})
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	m := NewMiddleware(newTestLogger(&buf), func(*http.Request) string { return "10.0.0.1" })
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bills/x", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated request id, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if !strings.Contains(out, `"status_code":404`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("expected warn completion log with 404, got %s", out)
	}
	if !strings.Contains(out, `"client_ip":"10.0.0.1"`) {
		t.Fatalf("expected client ip in log, got %s", out)
	}
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	m := NewMiddleware(newTestLogger(&buf), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-123" {
		t.Fatalf("expected upstream id, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id with spaces" {
		t.Fatalf("expected invalid id to be replaced")
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
}
