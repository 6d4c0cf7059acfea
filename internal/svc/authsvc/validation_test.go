package authsvc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
)

func validationMessages(t *testing.T, err error) []string {
	t.Helper()

	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr), "not a validation error: %v", err)
	require.ErrorIs(t, err, domain.ErrValidation)

	return validationErr.Messages
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	valid := func() authsvc.RegistrationForm {
		return authsvc.RegistrationForm{RegisterData: thandi(), ConfirmPassword: thandi().Password}
	}

	tests := []struct {
		name   string
		modify func(*authsvc.RegistrationForm)
		want   []string
	}{
		{name: "valid", modify: func(*authsvc.RegistrationForm) {}, want: nil},
		{
			name:   "blank field",
			modify: func(f *authsvc.RegistrationForm) { f.Country = " " },
			want:   []string{"Please fill in all fields"},
		},
		{
			name:   "bad email",
			modify: func(f *authsvc.RegistrationForm) { f.Email = "thandi@example" },
			want:   []string{"Incorrect email"},
		},
		{
			name:   "confirmation differs",
			modify: func(f *authsvc.RegistrationForm) { f.ConfirmPassword = "Secret2!" },
			want:   []string{"Passwords do not match"},
		},
		{
			name: "short password",
			modify: func(f *authsvc.RegistrationForm) {
				f.Password, f.ConfirmPassword = "Ab1!", "Ab1!"
			},
			want: []string{"Password must be at least 6 characters long"},
		},
		{
			name: "weak password",
			modify: func(f *authsvc.RegistrationForm) {
				f.Password, f.ConfirmPassword = "secret1!", "secret1!"
			},
			want: []string{
				"Password requires a upper case letter, a lower case letter, a number, and a special character",
			},
		},
		{
			name: "password with space",
			modify: func(f *authsvc.RegistrationForm) {
				f.Password, f.ConfirmPassword = "Sec ret1!", "Sec ret1!"
			},
			want: []string{"Password may only contain letters, numbers and @$!%*?&"},
		},
		{
			name:   "national phone",
			modify: func(f *authsvc.RegistrationForm) { f.PhoneNumber = "082 123 4567" },
			want:   nil,
		},
		{
			name:   "phone too short",
			modify: func(f *authsvc.RegistrationForm) { f.PhoneNumber = "082123" },
			want:   []string{"South African phone numbers must be exactly 10 digits (e.g., 0123456789)"},
		},
		{
			name: "several failures",
			modify: func(f *authsvc.RegistrationForm) {
				f.Email = "nope"
				f.ConfirmPassword = "other"
			},
			want: []string{"Incorrect email", "Passwords do not match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := valid()
			form.PhoneNumber = "0821234567"
			tt.modify(&form)

			assert.Equal(t, tt.want, validationMessages(t, authsvc.ValidateRegistration(form)))
		})
	}
}

func TestValidateProfileUpdate(t *testing.T) {
	t.Parallel()

	blank := ""
	badEmail := "not-an-email"
	goodEmail := "new@example.org"

	assert.Nil(t, validationMessages(t, authsvc.ValidateProfileUpdate(domain.ProfileUpdate{})))
	assert.Nil(t, validationMessages(t, authsvc.ValidateProfileUpdate(domain.ProfileUpdate{Email: &goodEmail})))

	assert.Equal(t,
		[]string{"First name is required.", "Please enter a valid email address.", "Country is required."},
		validationMessages(t, authsvc.ValidateProfileUpdate(domain.ProfileUpdate{
			FirstName: &blank,
			Email:     &badEmail,
			Country:   &blank,
		})),
	)

	assert.Equal(t,
		[]string{"Email is required.", "Phone number is required."},
		validationMessages(t, authsvc.ValidateProfileUpdate(domain.ProfileUpdate{Email: &blank, PhoneNumber: &blank})),
	)
}

func TestValidatePasswordChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change authsvc.PasswordChange
		want   []string
	}{
		{
			name:   "valid",
			change: authsvc.PasswordChange{CurrentPassword: "old", NewPassword: "Newer1!", ConfirmPassword: "Newer1!"},
			want:   nil,
		},
		{
			name:   "missing current",
			change: authsvc.PasswordChange{CurrentPassword: "", NewPassword: "Newer1!", ConfirmPassword: "Newer1!"},
			want:   []string{"Current password is required to change password."},
		},
		{
			name:   "missing new",
			change: authsvc.PasswordChange{CurrentPassword: "old", NewPassword: "", ConfirmPassword: ""},
			want:   []string{"New password is required."},
		},
		{
			name:   "short new",
			change: authsvc.PasswordChange{CurrentPassword: "old", NewPassword: "abc", ConfirmPassword: "abc"},
			want:   []string{"New password must be at least 6 characters long."},
		},
		{
			name:   "mismatch",
			change: authsvc.PasswordChange{CurrentPassword: "old", NewPassword: "Newer1!", ConfirmPassword: "Newer2!"},
			want:   []string{"New passwords do not match."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, validationMessages(t, authsvc.ValidatePasswordChange(tt.change)))
		})
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"0821234567":     "+27821234567",
		"082 123 4567":   "+27821234567",
		"082-123-4567":   "+27821234567",
		"+27821234567":   "+27821234567",
		"27821234567":    "+27821234567",
		"821234567":      "+27821234567",
		"":               "",
		"no digits here": "",
	}

	for in, want := range tests {
		assert.Equal(t, want, authsvc.NormalizePhoneNumber(in), in)
	}
}
