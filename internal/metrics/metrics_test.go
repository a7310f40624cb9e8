package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/bills", 200, time.Millisecond)
	m.BillCreated("LUNCH")
	m.ObserveSummary("monthly", time.Millisecond)
	m.RateLimited()
	m.SuspiciousRequest()
	m.ExportJob("ok")
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.BillCreated("LUNCH")
	m.BillCreated("LUNCH")
	m.BillCreated("DINNER")
	m.RateLimited()

	if got := testutil.ToFloat64(m.billsCreated.WithLabelValues("LUNCH")); got != 2 {
		t.Fatalf("expected 2 lunch bills, got %v", got)
	}
	if got := testutil.ToFloat64(m.rateLimited); got != 1 {
		t.Fatalf("expected 1 rate limited request, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "GET /bills", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mealbills_http_requests_total") {
		t.Fatalf("expected http counter in output")
	}
}
