package middleware

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc resolves the client identifier a request is rate limited under
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc prefers keyHeader when set and present, then the first
// X-Forwarded-For hop when trustXFF is on, then the remote host
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		remote := strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
			return host
		}
		if remote != "" {
			return remote
		}
		return "unknown"
	}
}
