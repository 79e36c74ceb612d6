package api

import (
	"net/http"
	"strings"
	"time"

	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const correlationHeader = "X-Correlation-ID"

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// correlationMiddleware reuses the caller's correlation id or mints one, and
// attaches it with a request-scoped logger to the context.
func correlationMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(correlationHeader))
			if id == "" || len(id) > 128 {
				id = "MULTI-DROP-" + uuid.NewString()
			}
			w.Header().Set(correlationHeader, id)

			ctx := obs.WithRequestID(r.Context(), id)
			ctx = logging.WithContext(ctx, log.With(zap.String("req_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loggingMiddleware logs end-to-end request duration and response size for basic observability.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r)

		logging.FromContext(r.Context()).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	})
}
