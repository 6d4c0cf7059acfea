package cartsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
)

// HTTPTransport exposes the cart over HTTP.
type HTTPTransport struct {
	cartSvc *CartService
	catalog catalogsvc.Catalog
	log     logging.Logger
}

var _ http_.Router = (*HTTPTransport)(nil)

// NewHTTPTransport creates the cart routes. Added products are resolved through catalog.
func NewHTTPTransport(cartSvc *CartService, catalog catalogsvc.Catalog) *HTTPTransport {
	return &HTTPTransport{
		cartSvc: cartSvc,
		catalog: catalog,
		log:     logging.GetLogger("svc.cartsvc.http_transport"),
	}
}

// CartResponse carries the whole cart after every cart operation.
type CartResponse struct {
	http_.Result

	Items      []domain.CartLine `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalCost  float64           `json:"totalCost"`
}

// AddRequest names the product to add.
type AddRequest struct {
	ProductID int64 `json:"productId"`
}

// Routes implements http_.Router:
// - GET /cart: the cart
// - POST /cart/items: add one of a product
// - POST /cart/items/{id}/subtract: take one away, keeping at least one
// - DELETE /cart/items/{id}: remove a line
// - DELETE /cart: empty the cart.
func (ht *HTTPTransport) Routes() []http_.Route {
	return []http_.Route{
		{Pattern: "GET /cart", Handler: ht.HandleGet},
		{Pattern: "POST /cart/items", Handler: ht.HandleAdd},
		{Pattern: "POST /cart/items/{id}/subtract", Handler: ht.HandleSubtract},
		{Pattern: "DELETE /cart/items/{id}", Handler: ht.HandleRemove},
		{Pattern: "DELETE /cart", Handler: ht.HandleClear},
	}
}

func (ht *HTTPTransport) writeCart(w http.ResponseWriter, status int, message string) error {
	items := ht.cartSvc.Lines()
	if items == nil {
		items = []domain.CartLine{}
	}

	return http_.WriteJSON(w, status, CartResponse{
		Result:     http_.OK(message),
		Items:      items,
		TotalItems: ht.cartSvc.TotalItems(),
		TotalCost:  ht.cartSvc.TotalCost(),
	})
}

func (ht *HTTPTransport) logDone(ctx context.Context, r *http.Request, action string, err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	if err != nil {
		log.WarnContext(ctx, action+" failed", "error", err)
	} else {
		log.DebugContext(ctx, action+" done")
	}
}

// HandleGet returns the cart.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	if err := ht.writeCart(w, http.StatusOK, ""); err != nil {
		ht.logDone(r.Context(), r, "get cart", err)
	}
}

// HandleAdd adds one of the requested product.
func (ht *HTTPTransport) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAdd(w, r)
}

func (ht *HTTPTransport) handleAdd(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { ht.logDone(r.Context(), r, "add to cart", err) }()

	var req AddRequest
	if err := http_.ReadJSON(r, &req); err != nil {
		return http_.WriteError(w, err)
	}

	if req.ProductID <= 0 {
		return http_.WriteError(w, domain.NewValidationError("Invalid product id"))
	}

	product, err := ht.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("get product: %w", err))
	}

	if _, err := ht.cartSvc.Add(r.Context(), product); err != nil {
		return http_.WriteError(w, fmt.Errorf("add: %w", err))
	}

	return ht.writeCart(w, http.StatusOK, "Item added to cart!")
}

// HandleSubtract takes one of a product away.
func (ht *HTTPTransport) HandleSubtract(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSubtract(w, r)
}

func (ht *HTTPTransport) handleSubtract(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { ht.logDone(r.Context(), r, "subtract from cart", err) }()

	id, err := catalogsvc.ParseProductID(r.PathValue("id"))
	if err != nil {
		return http_.WriteError(w, err)
	}

	before := ht.cartSvc.TotalItems()

	if _, err := ht.cartSvc.Subtract(r.Context(), id); err != nil {
		return http_.WriteError(w, fmt.Errorf("subtract: %w", err))
	}

	message := ""
	if ht.cartSvc.TotalItems() < before {
		message = "Item removed from cart!"
	}

	return ht.writeCart(w, http.StatusOK, message)
}

// HandleRemove removes a product's line.
func (ht *HTTPTransport) HandleRemove(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRemove(w, r)
}

func (ht *HTTPTransport) handleRemove(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { ht.logDone(r.Context(), r, "remove from cart", err) }()

	id, err := catalogsvc.ParseProductID(r.PathValue("id"))
	if err != nil {
		return http_.WriteError(w, err)
	}

	if err := ht.cartSvc.Remove(r.Context(), id); err != nil {
		return http_.WriteError(w, fmt.Errorf("remove: %w", err))
	}

	return ht.writeCart(w, http.StatusOK, "Item removed from cart!")
}

// HandleClear empties the cart.
func (ht *HTTPTransport) HandleClear(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleClear(w, r)
}

func (ht *HTTPTransport) handleClear(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { ht.logDone(r.Context(), r, "clear cart", err) }()

	if err := ht.cartSvc.Clear(r.Context()); err != nil {
		return http_.WriteError(w, fmt.Errorf("clear: %w", err))
	}

	return ht.writeCart(w, http.StatusOK, "Cart cleared")
}
