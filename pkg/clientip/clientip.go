package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request.
// Only r.RemoteAddr is trusted; forwarding headers are client-controlled.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// Key builds a rate-limit bucket key such as "ratelimit:login:10.0.0.1".
func Key(scope string, r *http.Request) string {
	ip := RealClientIP(r)
	if ip == "" {
		ip = "unknown"
	}
	return "ratelimit:" + scope + ":" + ip
}
