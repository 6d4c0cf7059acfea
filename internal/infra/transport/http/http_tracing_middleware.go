package http

import (
	"net/http"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/util/encoding"
)

const TraceIDHeader = "X-Request-ID"

// TracingMiddleware puts a trace id into the request context and echoes it in the response.
// It reuses the X-Request-ID header when the client sent one.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)
		if traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(context_.WithTraceID(r.Context(), traceID)))
	})
}

func getTraceID(r *http.Request) string {
	if traceID := r.Header.Get(TraceIDHeader); traceID != "" {
		return traceID
	}

	traceID, err := encoding.NewID("")
	if err != nil {
		return ""
	}

	return traceID
}
