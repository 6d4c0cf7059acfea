package authsvc

import "time"

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// TokenMaxAge is how long a session token stays valid after login.
	TokenMaxAge time.Duration `env:"TOKEN_MAX_AGE" default:"168h"` // 7 days
}
