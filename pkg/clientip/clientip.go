package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when RemoteAddr carries no usable address.
const Unknown = "unknown"

// RealClientIP returns the canonical client IP of r, used as the key for
// rate limiting and the admin login audit.
//
// It reads r.RemoteAddr only. Behind the router, chi's RealIP middleware has
// already replaced RemoteAddr with X-Real-IP / X-Forwarded-For when present,
// so the value may be "ip:port", a bare IP or a bracketed IPv6 address.
// IPv4-mapped IPv6 addresses collapse to their IPv4 form so that one client
// never owns two limiter buckets.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	if addr == "" {
		return Unknown
	}

	// Zone identifiers (fe80::1%eth0) are kept verbatim.
	if ip := net.ParseIP(addr); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
		return ip.String()
	}
	return addr
}
