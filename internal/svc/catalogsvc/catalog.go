package catalogsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
)

// ErrUnexpectedStatus is returned when the product API answers with an unexpected status code.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Catalog is the read-only product source the cart and the storefront pages use.
type Catalog interface {
	// ListProducts returns every product.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns the product with the given id or ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

// CatalogConfig holds configuration parameters for the product catalog.
type CatalogConfig struct {
	// BaseURL is the product API the HTTP catalog reads from
	BaseURL string `env:"BASE_URL" default:"https://fakestoreapi.com"`

	// File switches to a YAML product file instead of the product API
	File string `env:"FILE" default:""`

	Timeout time.Duration `env:"TIMEOUT" default:"10s"`
}

// NewCatalog returns a FileCatalog when a file is configured and an HTTPCatalog otherwise.
func NewCatalog(cfg CatalogConfig) (Catalog, error) {
	if cfg.File != "" {
		catalog, err := NewFileCatalog(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("new file catalog: %w", err)
		}

		return catalog, nil
	}

	return NewHTTPCatalog(cfg, nil), nil
}
