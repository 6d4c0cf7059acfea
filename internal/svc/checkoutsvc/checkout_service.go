package checkoutsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/util/task"
)

// ErrCheckoutInProgress is returned when a checkout starts while another one is still running.
var ErrCheckoutInProgress = errors.New("checkout in progress")

const orderConfirmedMessage = "Order processed successfully"

// Cart is the part of the cart the checkout reads and clears.
type Cart interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context) error
}

// CheckoutService turns the cart into a simulated order:
// idle -> validating -> submitting -> succeeded | failed.
type CheckoutService struct {
	cart   Cart
	cfg    CheckoutConfig
	log    logging.Logger
	now    func() time.Time
	random func() float64

	mu     sync.Mutex
	state  domain.CheckoutState
	orders []domain.Order
}

// Option customizes a CheckoutService.
type Option func(*CheckoutService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// WithRandom replaces the uniform [0,1) draw that decides simulated failures.
func WithRandom(random func() float64) Option {
	return func(s *CheckoutService) {
		s.random = random
	}
}

// NewCheckoutService creates an idle checkout for cart.
func NewCheckoutService(cart Cart, cfg CheckoutConfig, opts ...Option) *CheckoutService {
	svc := &CheckoutService{
		cart:   cart,
		cfg:    cfg,
		log:    logging.GetLogger("svc.checkoutsvc.checkout_service"),
		now:    time.Now,
		random: rand.Float64,
		state:  domain.CheckoutIdle,
		orders: nil,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// State returns the current workflow state.
func (s *CheckoutService) State() domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// CalculateShipping returns the flat fee, or nothing once total reaches the free-shipping threshold.
func (s *CheckoutService) CalculateShipping(total float64) float64 {
	if total >= s.cfg.FreeShippingThreshold {
		return 0
	}

	return s.cfg.FlatShipping
}

// OrderHistory returns copies of the orders placed since start.
func (s *CheckoutService) OrderHistory() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		order.Items = slices.Clone(order.Items)
		orders = append(orders, order)
	}

	return orders
}

// Checkout validates info and the cart, then submits the order to the simulated backend.
// Validation failures return a ValidationError, leave the cart alone and put the workflow
// back to idle. Once submitting starts, the returned task completes with the confirmation
// or ErrSimulatedBackendFailure; it runs to completion even if ctx ends.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	info domain.CustomerInfo,
) (_ *task.Task[domain.OrderConfirmation], err error) {
	defer func() {
		if err != nil {
			s.log.WarnContext(ctx, "checkout rejected", "error", err)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.CheckoutValidating || s.state == domain.CheckoutSubmitting {
		return nil, ErrCheckoutInProgress
	}

	s.state = domain.CheckoutValidating

	order, err := s.prepareOrder(info)
	if err != nil {
		s.state = domain.CheckoutIdle

		return nil, err
	}

	s.state = domain.CheckoutSubmitting

	log := s.log.With(logging.Group("order", "items", len(order.Items), "total", order.Total))
	log.DebugContext(ctx, "order submitted")

	detached := context.WithoutCancel(ctx)

	return task.After(s.cfg.Delay, func() (domain.OrderConfirmation, error) {
		return s.complete(detached, log, order)
	}), nil
}

func (s *CheckoutService) prepareOrder(info domain.CustomerInfo) (domain.Order, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.NewValidationError("Your cart is empty"), domain.ErrEmptyCart)
	}

	if err := ValidateCustomerInfo(info); err != nil {
		return domain.Order{}, fmt.Errorf("validate customer info: %w", err)
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.Subtotal()
	}

	shipping := s.CalculateShipping(subtotal)

	return domain.Order{
		ID:        "",
		Items:     lines,
		Customer:  info,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal + shipping,
		OrderDate: time.Time{},
	}, nil
}

// complete runs on the task goroutine once the simulated backend answers.
func (s *CheckoutService) complete(
	ctx context.Context,
	log logging.Logger,
	order domain.Order,
) (domain.OrderConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.random() < s.cfg.FailureRate {
		s.state = domain.CheckoutFailed

		log.WarnContext(ctx, "simulated payment failure")

		return domain.OrderConfirmation{}, domain.ErrSimulatedBackendFailure
	}

	now := s.now()
	order.ID = fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), rand.IntN(1000)) //nolint:gosec
	order.OrderDate = now

	s.orders = append(s.orders, order)
	s.state = domain.CheckoutSucceeded

	if err := s.cart.Clear(ctx); err != nil {
		log.ErrorContext(ctx, "clear cart after order failed", "error", err)
	}

	log.InfoContext(ctx, "order placed", "id", order.ID)

	return domain.OrderConfirmation{
		OrderID:           order.ID,
		Status:            "success",
		Message:           orderConfirmedMessage,
		EstimatedDelivery: now.AddDate(0, 0, s.cfg.DeliveryDays),
		Subtotal:          order.Subtotal,
		Shipping:          order.Shipping,
		Total:             order.Total,
	}, nil
}
