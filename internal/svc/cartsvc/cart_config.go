package cartsvc

// CartConfig holds configuration parameters for the cart.
type CartConfig struct {
	// Persist keeps the cart in the record store across restarts
	Persist bool `env:"PERSIST" default:"true"`
}
