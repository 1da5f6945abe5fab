package middleware

import (
	"net"
	"net/http"
	"strings"
)

const (
	SessionHeader = "X-Session-ID"
	RunIDHeader   = "X-Run-ID"
)

// SessionID identifies the caller for request counting. The header wins;
// otherwise the remote host is used so one client shares one counter.
func SessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
