package catalogsvc

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mkrupp/storefront/internal/domain"
)

// FileCatalog serves products loaded once from a YAML file:
//
//	products:
//	  - id: 1
//	    title: Backpack
//	    price: 109.95
type FileCatalog struct {
	products []domain.Product
}

var _ Catalog = (*FileCatalog)(nil)

type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// NewFileCatalog loads the catalog from path.
func NewFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return &FileCatalog{products: file.Products}, nil
}

// ListProducts implements Catalog.ListProducts.
func (c *FileCatalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	return slices.Clone(c.products), nil
}

// GetProduct implements Catalog.GetProduct.
func (c *FileCatalog) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	i := slices.IndexFunc(c.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}

	return c.products[i], nil
}
