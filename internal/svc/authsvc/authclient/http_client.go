package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

const (
	TraceIDHeader       = "X-Request-ID"
	AuthorizationHeader = "Authorization"
)

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	// AuthURL is the endpoint for token validation requests. Empty validates in-process.
	AuthURL string `env:"AUTH_URL" default:""`

	Timeout time.Duration `env:"TIMEOUT" default:"5s"`
}

// ValidateResponse is the body answered by the validate endpoint.
type ValidateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// HTTPClient implements AuthClient by calling a remote validate endpoint.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client with the configured timeout is used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.authsvc.authclient.http_client"),
		cfg:        cfg,
	}
}

// Validate implements AuthClient.Validate by POSTing the token to the configured endpoint.
func (c *HTTPClient) Validate(ctx context.Context, token string) (userID string, err error) {
	defer func() {
		if err != nil {
			c.log.DebugContext(ctx, "remote token validation failed", "error", err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	req.Header.Set(AuthorizationHeader, "Bearer "+token)

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", domain.ErrTokenInvalid
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var body ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if !body.Success || body.UserID == "" {
		return "", domain.ErrTokenInvalid
	}

	return body.UserID, nil
}
