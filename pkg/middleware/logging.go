// Package middleware holds the HTTP middleware that wraps the whole mux,
// as opposed to the per-route auth and org-scope middleware.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RequestLogger logs one line per request: method, path, status, response
// size, duration, and the organization segment of /api/orgs/{oid} paths.
// It wraps the mux from the outside, so it cannot read the claims the auth
// middleware sets later; the org is taken from the URL instead. A nil
// logger disables logging entirely.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if org := orgFromPath(r.URL.Path); org != "" {
				fields = append(fields, zap.String("org_id", org))
			}
			logger.Debug("HTTP request", fields...)
		})
	}
}

// orgFromPath returns the {oid} segment of /api/orgs/{oid}/... paths, or ""
// for everything else (health, auth, static).
func orgFromPath(path string) string {
	const prefix = "/api/orgs/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// statusRecorder captures the status code and body size written by the
// handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
