package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPExtractor(t *testing.T) {
	e := MustClientIPExtractor(DefaultTrustedProxies)

	cases := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct public peer ignores headers", "203.0.113.9:5555", "1.2.3.4", "", "203.0.113.9"},
		{"trusted proxy forwards first xff", "10.0.0.2:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"trusted proxy falls back to x-real-ip", "127.0.0.1:80", "garbage", "198.51.100.8", "198.51.100.8"},
		{"trusted proxy without headers", "192.168.1.10:80", "", "", "192.168.1.10"},
		{"unparseable remote", "not-an-ip", "", "", "not-an-ip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			if got := e.Extract(r); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNewClientIPExtractorRejectsBadCIDR(t *testing.T) {
	if _, err := NewClientIPExtractor([]string{"10.0.0.0/33"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsSuspicious(t *testing.T) {
	cases := []struct {
		method string
		target string
		agent  string
		want   bool
	}{
		{http.MethodGet, "/bills?consumerName=Hamad", "Mozilla/5.0", false},
		{http.MethodGet, "/.env", "", true},
		{http.MethodGet, "/bills?file=../../etc/passwd", "", true},
		{http.MethodGet, "/bills", "sqlmap/1.7", true},
		{"TRACE", "/bills", "", true},
	}
	for i, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.target, nil)
		if tc.agent != "" {
			r.Header.Set("User-Agent", tc.agent)
		}
		if got := IsSuspicious(r); got != tc.want {
			t.Fatalf("case %d (%s %s) expected %v, got %v", i, tc.method, tc.target, tc.want, got)
		}
	}
}

func TestDetectorCountsButServes(t *testing.T) {
	hits := 0
	d := NewDetector(nil, func() { hits++ })
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if rec.Code != http.StatusTeapot || hits != 1 {
		t.Fatalf("expected request served and counted, got code=%d hits=%d", rec.Code, hits)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bills", nil))
	if hits != 1 {
		t.Fatalf("expected clean request not counted, got %d", hits)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bills", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS over TLS")
	}
}
