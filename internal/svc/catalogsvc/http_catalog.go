package catalogsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// HTTPCatalog reads products from a fakestoreapi-compatible endpoint.
type HTTPCatalog struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        CatalogConfig
}

var _ Catalog = (*HTTPCatalog)(nil)

// NewHTTPCatalog creates an HTTPCatalog. If httpClient is nil, a client with the configured
// timeout is used.
func NewHTTPCatalog(cfg CatalogConfig, httpClient *http.Client) *HTTPCatalog {
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPCatalog{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.catalogsvc.http_catalog"),
		cfg:        cfg,
	}
}

// ListProducts implements Catalog.ListProducts.
func (c *HTTPCatalog) ListProducts(ctx context.Context) (products []domain.Product, err error) {
	defer func() {
		if err != nil {
			c.log.ErrorContext(ctx, "list products failed", "error", err)
		} else {
			c.log.DebugContext(ctx, "products listed", "count", len(products))
		}
	}()

	if err := c.get(ctx, "products", &products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct implements Catalog.GetProduct.
func (c *HTTPCatalog) GetProduct(ctx context.Context, id int64) (product domain.Product, err error) {
	log := c.log.With(logging.Group("product", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "get product failed", "error", err)
		} else {
			log.DebugContext(ctx, "product fetched")
		}
	}()

	var found *domain.Product
	if err := c.get(ctx, "products/"+strconv.FormatInt(id, 10), &found); err != nil {
		return domain.Product{}, err
	}

	// the demo API answers unknown ids with 200 and an empty body
	if found == nil || found.ID != id {
		return domain.Product{}, domain.ErrProductNotFound
	}

	return *found, nil
}

func (c *HTTPCatalog) get(ctx context.Context, path string, dst any) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return fmt.Errorf("join url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
