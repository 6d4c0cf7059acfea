package catalogsvc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport exposes the catalog over HTTP.
type HTTPTransport struct {
	catalog Catalog
	log     logging.Logger
}

var _ http_.Router = (*HTTPTransport)(nil)

// NewHTTPTransport creates the product routes.
func NewHTTPTransport(catalog Catalog) *HTTPTransport {
	return &HTTPTransport{
		catalog: catalog,
		log:     logging.GetLogger("svc.catalogsvc.http_transport"),
	}
}

// ProductsResponse answers a product listing.
type ProductsResponse struct {
	http_.Result

	Products []domain.Product `json:"products"`
}

// ProductResponse answers a product lookup.
type ProductResponse struct {
	http_.Result

	Product *domain.Product `json:"product,omitempty"`
}

// Routes implements http_.Router:
// - GET /products: list every product
// - GET /products/{id}: product details.
func (ht *HTTPTransport) Routes() []http_.Route {
	return []http_.Route{
		{Pattern: "GET /products", Handler: ht.HandleList},
		{Pattern: "GET /products/{id}", Handler: ht.HandleGet},
	}
}

// ParseProductID parses a product id path value.
func ParseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid product id")
	}

	return id, nil
}

// HandleList lists the catalog.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list products failed", "error", err)
		}
	}(r.Context())

	products, err := ht.catalog.ListProducts(r.Context())
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("list products: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, ProductsResponse{Result: http_.OK(""), Products: products})
}

// HandleGet returns one product.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "get product failed", "error", err)
		}
	}(r.Context())

	id, err := ParseProductID(r.PathValue("id"))
	if err != nil {
		return http_.WriteError(w, err)
	}

	product, err := ht.catalog.GetProduct(r.Context(), id)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("get product: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, ProductResponse{Result: http_.OK(""), Product: &product})
}
