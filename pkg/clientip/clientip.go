// Package clientip extracts the requester's IP address from an HTTP
// request. The value is informational (session records, logs), not a
// security control: forwarded headers are spoofable and are only trusted
// because the deployment sits behind a proxy the operator controls.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Lookup order: the leftmost X-Forwarded-For hop, then X-Real-IP, then the
// transport-level peer address.
var headers = []string{"X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the best-guess client address, or "" when nothing in
// the request parses as an IP.
func FromRequest(r *http.Request) string {
	for _, h := range headers {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}

		// X-Forwarded-For may carry the whole proxy chain; the original
		// client is the first entry.
		first, _, _ := strings.Cut(value, ",")
		if ip := parse(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		return parse(r.RemoteAddr)
	}
	return parse(host)
}

func parse(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
