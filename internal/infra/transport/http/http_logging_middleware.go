package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// statusRecorder wraps http.ResponseWriter to capture response metrics.
type statusRecorder struct {
	http.ResponseWriter

	status    int
	bytesSent int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
	w.status = code
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesSent += n

	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}

	return n, nil
}

// LoggingMiddleware logs each request at DEBUG and its response at a level picked from the status:
// ERROR for 5xx, WARN for 4xx, INFO otherwise.
func LoggingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	//nolint:varnamelen
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		log.DebugContext(r.Context(), "request", slog.Group("http",
			"uri", r.RequestURI,
			"method", r.Method,
		))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK, bytesSent: 0}

		next.ServeHTTP(rec, r)

		var level logging.Level

		switch {
		case rec.status >= http.StatusInternalServerError:
			level = logging.LevelError
		case rec.status >= http.StatusBadRequest:
			level = logging.LevelWarn
		default:
			level = logging.LevelInfo
		}

		log.Log(r.Context(), level, "response", slog.Group("http",
			"uri", r.RequestURI,
			"method", r.Method,
			"status", rec.status,
			"bytes_sent", rec.bytesSent,
			"duration", time.Since(started).String(),
		))
	})
}
