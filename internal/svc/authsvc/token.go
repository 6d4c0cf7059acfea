package authsvc

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
)

// EncodeToken renders the token payload as base64 JSON. The result is not signed.
func EncodeToken(token domain.AuthToken) (string, error) {
	payload, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeToken reverses EncodeToken. Any malformed input yields ErrTokenInvalid.
func DecodeToken(encoded string) (domain.AuthToken, error) {
	var token domain.AuthToken

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return token, errors.Join(domain.ErrTokenInvalid, err)
	}

	if err := json.Unmarshal(payload, &token); err != nil {
		return token, errors.Join(domain.ErrTokenInvalid, err)
	}

	if token.UserID == "" || token.IssuedAt == 0 {
		return token, fmt.Errorf("%w: missing claims", domain.ErrTokenInvalid)
	}

	return token, nil
}

// CheckTokenAge fails with ErrTokenExpired once the token is maxAge old or older.
func CheckTokenAge(token domain.AuthToken, now time.Time, maxAge time.Duration) error {
	if age := token.Age(now); age >= maxAge {
		return fmt.Errorf("%w: issued %s ago", domain.ErrTokenExpired, age.Round(time.Second))
	}

	return nil
}
