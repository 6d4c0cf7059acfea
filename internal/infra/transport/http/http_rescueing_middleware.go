package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// ErrPanic is what a client sees as the cause of a recovered handler panic.
var ErrPanic = errors.New("panic")

// RescueingMiddleware recovers from handler panics, logs the stack and answers with a 500 Result.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if p := recover(); p != nil {
				log.ErrorContext(ctx, "request panic", slog.Group("http",
					"uri", r.RequestURI,
					"method", r.Method,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))

				_ = WriteError(w, ErrPanic)
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}
