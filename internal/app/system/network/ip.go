// Package network provides request address helpers for log fields.
package network

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the address a request came from. Behind a reverse
// proxy the first X-Forwarded-For entry wins, then X-Real-IP; otherwise
// RemoteAddr without its port (IPv6 brackets removed).
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
