package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// DefaultTrustedProxies are loopback and RFC 1918 networks.
var DefaultTrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// ClientIPExtractor resolves the client address of a request. Forwarding
// headers are honoured only when the direct peer is a trusted proxy.
type ClientIPExtractor struct {
	trustedProxies []*net.IPNet
}

// NewClientIPExtractor parses the trusted proxy CIDRs.
func NewClientIPExtractor(cidrs []string) (*ClientIPExtractor, error) {
	e := &ClientIPExtractor{}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %s: %w", cidr, err)
		}
		e.trustedProxies = append(e.trustedProxies, network)
	}
	return e, nil
}

// MustClientIPExtractor is NewClientIPExtractor for static input.
func MustClientIPExtractor(cidrs []string) *ClientIPExtractor {
	e, err := NewClientIPExtractor(cidrs)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the best-known client IP for r.
func (e *ClientIPExtractor) Extract(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !e.isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return directIP
}

func (e *ClientIPExtractor) isTrustedProxy(ip net.IP) bool {
	for _, network := range e.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
