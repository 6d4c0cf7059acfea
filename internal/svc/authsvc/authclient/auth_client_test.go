package authclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
)

func newValidateServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "trace-1", r.Header.Get(authclient.TraceIDHeader))

		switch r.Header.Get(authclient.AuthorizationHeader) {
		case "Bearer good":
			_ = json.NewEncoder(w).Encode(authclient.ValidateResponse{Success: true, UserID: "user_1"})
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(authclient.ValidateResponse{Success: false, Message: "User not logged in"})
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestHTTPClientValidate(t *testing.T) {
	t.Parallel()

	server := newValidateServer(t)

	//nolint:exhaustruct
	client := authclient.NewHTTPClient(authclient.HTTPClientConfig{AuthURL: server.URL}, server.Client())
	ctx := context_.WithTraceID(context.Background(), "trace-1")

	userID, err := client.Validate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user_1", userID)

	_, err = client.Validate(ctx, "bad")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = client.Validate(ctx, "broken")
	require.ErrorIs(t, err, authclient.ErrUnexpectedStatus)
}

type fakeAuthorizer map[string]error

func (f fakeAuthorizer) Authorize(_ context.Context, token string) (string, error) {
	if err := f[token]; err != nil {
		return "", err
	}

	return "user_" + token, nil
}

func TestLocalClientValidate(t *testing.T) {
	t.Parallel()

	client := authclient.NewLocalClient(fakeAuthorizer{"old": domain.ErrTokenExpired})

	userID, err := client.Validate(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "user_fresh", userID)

	_, err = client.Validate(context.Background(), "old")
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}
