package http

import (
	"fmt"
	"net/http"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
)

// AuthorizingMiddleware admits a request only when its bearer token names the live session.
// On success the session user id is added to the request context; otherwise the client
// gets a 401 Result.
func AuthorizingMiddleware(
	next http.Handler,
	authClient authclient.AuthClient,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			log.WarnContext(r.Context(), "no token provided")
			_ = WriteError(w, err)

			return
		}

		userID, err := authClient.Validate(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "token rejected", "error", err)
			_ = WriteError(w, fmt.Errorf("validate token: %w", err))

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), userID)))
	})
}

// Authorized wraps a single handler func with AuthorizingMiddleware.
func Authorized(handler http.HandlerFunc, authClient authclient.AuthClient, log logging.Logger) http.HandlerFunc {
	return AuthorizingMiddleware(handler, authClient, log).ServeHTTP
}
