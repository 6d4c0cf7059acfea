package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestErrorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantErrors []string
	}{
		{
			name:       "validation lists every message",
			err:        fmt.Errorf("validate: %w", domain.NewValidationError("First name is required", "City is required")),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "First name is required. City is required",
			wantErrors: []string{"First name is required", "City is required"},
		},
		{
			name:       "duplicate email",
			err:        fmt.Errorf("register: %w", domain.ErrDuplicateEmail),
			wantStatus: http.StatusConflict,
			wantMsg:    "An account with this email already exists.",
		},
		{
			name:       "invalid credentials stay generic",
			err:        domain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials. Please check your email/phone and password.",
		},
		{
			name:       "joined storage error keeps domain tag",
			err:        errors.Join(domain.ErrUserNotFound, errors.New("no rows")),
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found",
		},
		{
			name:       "unknown error hides its text",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, result := http_.ErrorResult(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantMsg, result.Message)
			assert.Equal(t, tt.wantErrors, result.Errors)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "", wantErr: domain.ErrNoAuthToken},
		{header: "Bearer ", wantErr: domain.ErrNoAuthToken},
		{header: "Bearer abc", want: "abc"},
		{header: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(http_.AuthorizationHeader, tt.header)

			got, err := http_.BearerToken(r)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeAuthClient struct{}

func (fakeAuthClient) Validate(_ context.Context, token string) (string, error) {
	if token != "good" {
		return "", domain.ErrTokenExpired
	}

	return "user_1", nil
}

func TestAuthorizingMiddleware(t *testing.T) {
	t.Parallel()

	handler := http_.AuthorizingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := context_.UserIDFromContext(r.Context())
		_ = http_.WriteJSON(w, http.StatusOK, map[string]string{"userId": userID})
	}), fakeAuthClient{}, logging.NewNopLogger())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing token", header: "", wantStatus: http.StatusUnauthorized, wantBody: "User not logged in"},
		{
			name: "expired token", header: "Bearer stale", wantStatus: http.StatusUnauthorized,
			wantBody: "Your session has expired. Please log in again.",
		},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "user_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/cart", nil)
			r.Header.Set(http_.AuthorizationHeader, tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestWithMiddlewares(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /trace", func(w http.ResponseWriter, r *http.Request) {
		traceID, _ := context_.TraceIDFromContext(r.Context())
		_ = http_.WriteJSON(w, http.StatusOK, map[string]string{"traceId": traceID})
	})
	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	handler := http_.WithMiddlewares(mux, logging.NewNopLogger())

	t.Run("reuses client trace id", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/trace", nil)
		r.Header.Set(http_.TraceIDHeader, "abc")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, "abc", w.Header().Get(http_.TraceIDHeader))
		assert.JSONEq(t, `{"traceId":"abc"}`, w.Body.String())
	})

	t.Run("generates trace id", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trace", nil))

		assert.Len(t, w.Header().Get(http_.TraceIDHeader), 26)
	})

	t.Run("rescues panics", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var result http_.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Success)
	})
}

func TestServeShutsDownWithContext(t *testing.T) {
	t.Parallel()

	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		//nolint:exhaustruct
		done <- http_.Serve(ctx, sock, http.NotFoundHandler(), http_.HTTPTransportConfig{
			ReadHeaderTimeout: time.Second,
			ShutdownGrace:     time.Second,
		}, logging.NewNopLogger())
	}()

	resp, err := http.Get("http://" + sock.Addr().String() + "/missing")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	http.DefaultClient.CloseIdleConnections()
}
