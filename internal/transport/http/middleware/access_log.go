package middleware

import (
	"net/http"
	"time"

	"github.com/baechuer/docvault/internal/logger"
)

// AccessLog writes one line per request with status, size and latency.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		l := logger.WithCtx(r.Context())
		ev := l.Info()
		switch {
		case sw.status >= 500:
			ev = l.Error()
		case sw.status >= 400:
			ev = l.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int("bytes", sw.bytes).
			Dur("latency", time.Since(start)).
			Str("remote_ip", clientIP(r, false)).
			Str("forwarded_for", r.Header.Get("X-Forwarded-For")).
			Msg("http request")
	})
}
