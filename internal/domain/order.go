package domain

import (
	"errors"
	"time"
)

// ErrSimulatedBackendFailure is returned when the simulated payment backend rejects an order.
var ErrSimulatedBackendFailure = errors.New("payment processing failed")

// PaymentMethod is one of the accepted payment options.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentDebitCard  PaymentMethod = "debit-card"
	PaymentEFT        PaymentMethod = "eft"
)

// Valid reports whether the method is on the whitelist.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentEFT:
		return true
	default:
		return false
	}
}

// CustomerInfo is the checkout form.
type CustomerInfo struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	PostalCode    string        `json:"postalCode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Order is the snapshot taken when an order is submitted. It only lives in memory.
type Order struct {
	ID        string       `json:"orderId"`
	Items     []CartLine   `json:"items"`
	Customer  CustomerInfo `json:"customerInfo"`
	Subtotal  float64      `json:"subtotal"`
	Shipping  float64      `json:"shipping"`
	Total     float64      `json:"totalAmount"`
	OrderDate time.Time    `json:"orderDate"`
}

// OrderConfirmation is the successful outcome of a checkout.
type OrderConfirmation struct {
	OrderID           string    `json:"orderId"`
	Status            string    `json:"status"`
	Message           string    `json:"message"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	Subtotal          float64   `json:"subtotal"`
	Shipping          float64   `json:"shipping"`
	Total             float64   `json:"total"`
}

// CheckoutState is a step of the checkout workflow.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)
