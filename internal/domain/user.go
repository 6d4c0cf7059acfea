package domain

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail is returned when another account already uses the email address.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrDuplicatePhone is returned when another account already uses the phone number.
	ErrDuplicatePhone = errors.New("duplicate phone number")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the identifier/password combination is incorrect.
	// It deliberately does not tell which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword is returned when the current password given to a password change does not match.
	ErrWrongPassword = errors.New("wrong password")
)

// UserRecord is a registered account exactly as persisted in the record store.
// Passwords are kept in plaintext.
type UserRecord struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	Country        string    `json:"country"`
	Password       string    `json:"password"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User is the sanitized view of a UserRecord, without the password.
// It is what a session caches and what leaves the service boundary.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	Country        string    `json:"country"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Sanitize strips the password from the record.
func (r UserRecord) Sanitize() User {
	return User{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Country:        r.Country,
		ProfilePicture: r.ProfilePicture,
		CreatedAt:      r.CreatedAt,
	}
}

// RegisterData holds the fields a new account is created from.
type RegisterData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Country     string `json:"country"`
	Password    string `json:"password"`
}

// Credentials identify an account by email or phone number. Email wins if both are set.
type Credentials struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Email          *string `json:"email,omitempty"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
	Country        *string `json:"country,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// ApplyTo merges the set fields into the record.
func (u ProfileUpdate) ApplyTo(r *UserRecord) {
	if u.FirstName != nil {
		r.FirstName = *u.FirstName
	}

	if u.LastName != nil {
		r.LastName = *u.LastName
	}

	if u.Email != nil {
		r.Email = *u.Email
	}

	if u.PhoneNumber != nil {
		r.PhoneNumber = *u.PhoneNumber
	}

	if u.Country != nil {
		r.Country = *u.Country
	}

	if u.ProfilePicture != nil {
		r.ProfilePicture = *u.ProfilePicture
	}
}
