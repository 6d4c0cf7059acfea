package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT"        default:"5s"`
	// WriteTimeout must leave room for the simulated checkout delay
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" default:"15s"`

	// ShutdownGrace bounds how long in-flight requests may finish after ctx ends
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" default:"10s"`
}

// HTTPTransport defines the interface for HTTP handlers that can serve requests.
type HTTPTransport interface {
	http.Handler
}

// Route is a pattern understood by http.ServeMux together with its handler.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

// Router is implemented by transports that contribute routes to a shared mux.
type Router interface {
	Routes() []Route
}

// NewMux registers the routes of every router on a fresh ServeMux.
func NewMux(routers ...Router) *http.ServeMux {
	mux := http.NewServeMux()

	for _, router := range routers {
		for _, route := range router.Routes() {
			mux.HandleFunc(route.Pattern, route.Handler)
		}
	}

	return mux
}

// WithMiddlewares wraps handler with the standard middleware chain.
// Tracing runs first so that every later log line carries the trace id.
func WithMiddlewares(handler http.Handler, log logging.Logger) http.Handler {
	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = TracingMiddleware(handler)

	return handler
}

// ListenAndServe serves handler until ctx ends, then shuts the server down gracefully.
func ListenAndServe(ctx context.Context, handler HTTPTransport, cfg HTTPTransportConfig) (err error) {
	log := logging.GetLogger("infra.transport.http")

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return Serve(ctx, sock, handler, cfg, log)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, sock net.Listener, handler HTTPTransport, cfg HTTPTransportConfig, log logging.Logger) error {
	//nolint:exhaustruct
	server := &http.Server{
		Handler:           WithMiddlewares(handler, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

		if err := server.Serve(sock); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownGrace)
		defer cancel()

		log.InfoContext(ctx, "shutting down", "grace", cfg.ShutdownGrace.String())

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	})

	//nolint:wrapcheck
	return group.Wait()
}
