package checkoutsvc

import (
	"regexp"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
)

//nolint:gochecknoglobals
var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+27|0)[0-9]{9}$`)
)

// ValidateCustomerInfo checks the checkout form and reports every failed rule.
func ValidateCustomerInfo(info domain.CustomerInfo) error {
	var messages []string

	required := func(value, message string) bool {
		if strings.TrimSpace(value) == "" {
			messages = append(messages, message)

			return false
		}

		return true
	}

	required(info.FirstName, "First name is required")
	required(info.LastName, "Last name is required")

	if required(info.Email, "Email is required") && !emailPattern.MatchString(info.Email) {
		messages = append(messages, "Invalid email format")
	}

	if required(info.Phone, "Phone number is required") && !phonePattern.MatchString(stripSpace(info.Phone)) {
		messages = append(messages, "Invalid phone number format")
	}

	required(info.Address, "Address is required")
	required(info.City, "City is required")
	required(info.PostalCode, "Postal code is required")

	if !info.PaymentMethod.Valid() {
		messages = append(messages, "Invalid payment method")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}

	return nil
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
