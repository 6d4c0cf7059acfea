package authsvc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mkrupp/storefront/internal/domain"
)

const (
	minPasswordLength  = 6
	passwordSpecials   = "@$!%*?&"
	southAfricanPrefix = "+27"
)

//nolint:gochecknoglobals
var (
	registrationEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	profileEmailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegistrationForm is what the register form submits.
type RegistrationForm struct {
	domain.RegisterData

	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateRegistration checks a registration form. A form with blank fields fails with a
// single message; otherwise every failed rule is reported.
func ValidateRegistration(form RegistrationForm) error {
	required := []string{
		form.FirstName, form.LastName, form.Email, form.Password,
		form.ConfirmPassword, form.PhoneNumber, form.Country,
	}

	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return domain.NewValidationError("Please fill in all fields")
		}
	}

	var messages []string

	if !registrationEmailPattern.MatchString(form.Email) {
		messages = append(messages, "Incorrect email")
	}

	if form.Password != form.ConfirmPassword {
		messages = append(messages, "Passwords do not match")
	}

	if msg := checkPasswordStrength(form.Password); msg != "" {
		messages = append(messages, msg)
	}

	if len(digitsOnly(form.PhoneNumber)) != 10 {
		messages = append(messages, "South African phone numbers must be exactly 10 digits (e.g., 0123456789)")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}

	return nil
}

// checkPasswordStrength requires lower, upper, digit and special characters and
// allows nothing else.
func checkPasswordStrength(password string) string {
	if len(password) < minPasswordLength {
		return "Password must be at least 6 characters long"
	}

	var lower, upper, digit, special bool

	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return "Password may only contain letters, numbers and @$!%*?&"
		}
	}

	if !lower || !upper || !digit || !special {
		return "Password requires a upper case letter, a lower case letter, a number, and a special character"
	}

	return ""
}

// ValidateProfileUpdate checks the fields an update sets.
func ValidateProfileUpdate(update domain.ProfileUpdate) error {
	var messages []string

	blank := func(value *string) bool { return value != nil && strings.TrimSpace(*value) == "" }

	if blank(update.FirstName) {
		messages = append(messages, "First name is required.")
	}

	if blank(update.LastName) {
		messages = append(messages, "Last name is required.")
	}

	if blank(update.Email) {
		messages = append(messages, "Email is required.")
	} else if update.Email != nil && !profileEmailPattern.MatchString(*update.Email) {
		messages = append(messages, "Please enter a valid email address.")
	}

	if blank(update.PhoneNumber) {
		messages = append(messages, "Phone number is required.")
	}

	if blank(update.Country) {
		messages = append(messages, "Country is required.")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}

	return nil
}

// PasswordChange is what the change-password form submits.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidatePasswordChange checks a password change form before the current password is verified.
func ValidatePasswordChange(change PasswordChange) error {
	var messages []string

	if change.CurrentPassword == "" {
		messages = append(messages, "Current password is required to change password.")
	}

	switch {
	case change.NewPassword == "":
		messages = append(messages, "New password is required.")
	case len(change.NewPassword) < minPasswordLength:
		messages = append(messages, "New password must be at least 6 characters long.")
	case change.NewPassword != change.ConfirmPassword:
		messages = append(messages, "New passwords do not match.")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}

	return nil
}

// NormalizePhoneNumber renders a South African number in international form.
// A national number 0XXXXXXXXX becomes +27XXXXXXXXX; separators are dropped.
func NormalizePhoneNumber(phoneNumber string) string {
	digits := digitsOnly(phoneNumber)

	switch {
	case digits == "":
		return ""
	case len(digits) == 10 && digits[0] == '0':
		return southAfricanPrefix + digits[1:]
	case len(digits) == 11 && strings.HasPrefix(digits, "27"):
		return "+" + digits
	default:
		return southAfricanPrefix + digits
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			return r
		}

		return -1
	}, s)
}
