package checkoutsvc

import "time"

// CheckoutConfig holds configuration parameters for the checkout workflow.
type CheckoutConfig struct {
	// Delay is how long the simulated payment backend takes to answer
	Delay time.Duration `env:"DELAY" default:"2s"`

	// FailureRate is the probability of a simulated payment failure
	FailureRate float64 `env:"FAILURE_RATE" default:"0.1"`

	FlatShipping          float64 `env:"FLAT_SHIPPING"           default:"50"`
	FreeShippingThreshold float64 `env:"FREE_SHIPPING_THRESHOLD" default:"500"`

	DeliveryDays int `env:"DELIVERY_DAYS" default:"3"`
}
