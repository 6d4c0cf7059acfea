package checkoutsvc

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
)

// HTTPTransport exposes the checkout over HTTP.
type HTTPTransport struct {
	checkoutSvc *CheckoutService
	authClient  authclient.AuthClient
	log         logging.Logger
}

var _ http_.Router = (*HTTPTransport)(nil)

// NewHTTPTransport creates the checkout routes. Placing orders and reading them
// requires a session.
func NewHTTPTransport(checkoutSvc *CheckoutService, authClient authclient.AuthClient) *HTTPTransport {
	return &HTTPTransport{
		checkoutSvc: checkoutSvc,
		authClient:  authClient,
		log:         logging.GetLogger("svc.checkoutsvc.http_transport"),
	}
}

// CheckoutResponse answers a placed order.
type CheckoutResponse struct {
	http_.Result

	Order domain.OrderConfirmation `json:"order"`
}

// ShippingResponse answers a shipping quote.
type ShippingResponse struct {
	http_.Result

	Total    float64 `json:"total"`
	Shipping float64 `json:"shipping"`
}

// OrdersResponse lists the placed orders.
type OrdersResponse struct {
	http_.Result

	Orders []domain.Order `json:"orders"`
}

// StateResponse reports the workflow state.
type StateResponse struct {
	http_.Result

	State domain.CheckoutState `json:"state"`
}

// Routes implements http_.Router:
// - POST /checkout: place an order and wait for the payment outcome
// - GET /checkout/state: workflow state
// - GET /checkout/shipping?total=: shipping for a cart total
// - GET /checkout/orders: orders placed since start.
func (ht *HTTPTransport) Routes() []http_.Route {
	return []http_.Route{
		{Pattern: "POST /checkout", Handler: http_.Authorized(ht.HandleCheckout, ht.authClient, ht.log)},
		{Pattern: "GET /checkout/state", Handler: ht.HandleState},
		{Pattern: "GET /checkout/shipping", Handler: ht.HandleShipping},
		{Pattern: "GET /checkout/orders", Handler: http_.Authorized(ht.HandleOrders, ht.authClient, ht.log)},
	}
}

// HandleCheckout places an order from the cart.
func (ht *HTTPTransport) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCheckout(w, r)
}

func (ht *HTTPTransport) handleCheckout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "checkout failed", "error", err)
		} else {
			log.DebugContext(ctx, "checkout succeeded")
		}
	}(r.Context())

	var info domain.CustomerInfo
	if err := http_.ReadJSON(r, &info); err != nil {
		return http_.WriteError(w, err)
	}

	pending, err := ht.checkoutSvc.Checkout(r.Context(), info)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("checkout: %w", err))
	}

	confirmation, err := pending.Wait(r.Context())
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("wait for payment: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, CheckoutResponse{
		Result: http_.OK(confirmation.Message),
		Order:  confirmation,
	})
}

// HandleState reports the workflow state.
func (ht *HTTPTransport) HandleState(w http.ResponseWriter, r *http.Request) {
	err := http_.WriteJSON(w, http.StatusOK, StateResponse{Result: http_.OK(""), State: ht.checkoutSvc.State()})
	if err != nil {
		ht.log.ErrorContext(r.Context(), "write state failed", "error", err)
	}
}

// HandleShipping quotes shipping for the total query parameter.
func (ht *HTTPTransport) HandleShipping(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleShipping(w, r)
}

func (ht *HTTPTransport) handleShipping(w http.ResponseWriter, r *http.Request) error {
	total, err := strconv.ParseFloat(r.URL.Query().Get("total"), 64)
	if err != nil || total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return http_.WriteError(w, domain.NewValidationError("Invalid total"))
	}

	return http_.WriteJSON(w, http.StatusOK, ShippingResponse{
		Result:   http_.OK(""),
		Total:    total,
		Shipping: ht.checkoutSvc.CalculateShipping(total),
	})
}

// HandleOrders lists the orders placed since start.
func (ht *HTTPTransport) HandleOrders(w http.ResponseWriter, r *http.Request) {
	err := http_.WriteJSON(w, http.StatusOK, OrdersResponse{Result: http_.OK(""), Orders: ht.checkoutSvc.OrderHistory()})
	if err != nil {
		ht.log.ErrorContext(r.Context(), "write orders failed", "error", err)
	}
}
