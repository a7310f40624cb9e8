// Package http exposes the bill and consumer API over JSON.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
	"mealbills/internal/middleware/ratelimit"
	"mealbills/internal/middleware/security"
	"mealbills/internal/middleware/trace"
	"mealbills/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to its services. Metrics, Ready and ClientIP
// may be nil.
type Options struct {
	Bills              *services.BillService
	Consumers          *services.ConsumerService
	Summary            *services.SummaryService
	Exports            *services.ExportService
	Ready              Pinger
	Metrics            *metrics.Metrics
	Logger             *applog.Logger
	ClientIP           *security.ClientIPExtractor
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	bills     *services.BillService
	consumers *services.ConsumerService
	summary   *services.SummaryService
	exports   *services.ExportService
	ready     Pinger
	metrics   *metrics.Metrics
	validate  *validator.Validate
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer registers the routes and middleware chain and returns a
// ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	clientIP := opts.ClientIP
	if clientIP == nil {
		clientIP = security.MustClientIPExtractor(security.DefaultTrustedProxies)
	}

	s := &Server{
		bills:     opts.Bills,
		consumers: opts.Consumers,
		summary:   opts.Summary,
		exports:   opts.Exports,
		ready:     opts.Ready,
		metrics:   opts.Metrics,
		validate:  newValidator(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.route(mux, "GET /bills", s.handleListBills)
	s.route(mux, "POST /bills", s.handleCreateBill)
	s.route(mux, "GET /bills/summary", s.handleSummary)
	s.route(mux, "GET /bills/stats", s.handleStats)
	s.route(mux, "GET /bills/export", s.handleExportCSV)
	s.route(mux, "GET /bills/{id}", s.handleGetBill)
	s.route(mux, "PUT /bills/{id}", s.handleUpdateBill)
	s.route(mux, "DELETE /bills/{id}", s.handleDeleteBill)

	s.route(mux, "GET /consumers", s.handleListConsumers)
	s.route(mux, "POST /consumers", s.handleCreateConsumer)
	s.route(mux, "GET /consumers/{id}", s.handleGetConsumer)
	s.route(mux, "PUT /consumers/{id}", s.handleUpdateConsumer)
	s.route(mux, "DELETE /consumers/{id}", s.handleDeleteConsumer)

	s.route(mux, "POST /exports", s.handleEnqueueExport)

	extract := clientIP.Extract
	var handler http.Handler = mux
	handler = s.limiter.Middleware(extract, ratelimit.MutatingOnly, s.rateLimited)(handler)
	handler = security.NewDetector(extract, s.metrics.SuspiciousRequest).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger, extract).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// route registers h under pattern and records its metrics under the
// pattern's path, so /bills/{id} is one series.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		s.metrics.ObserveHTTP(method, path, sw.status, time.Since(start))
	}))
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, errorBody{Error: "Too many requests. Please try again later."})
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// statusWriter captures the status code for metrics.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
