package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
)

const (
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// Result is the envelope every JSON response carries.
// Handlers embed it in their response bodies.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// OK returns a successful Result with message.
func OK(message string) Result {
	return Result{Success: true, Message: message, Errors: nil}
}

type errorResponse struct {
	status  int
	message string
}

//nolint:gochecknoglobals
var errorResponses = []struct {
	err error
	errorResponse
}{
	{domain.ErrDuplicateEmail, errorResponse{http.StatusConflict, "An account with this email already exists."}},
	{domain.ErrDuplicatePhone, errorResponse{http.StatusConflict, "An account with this phone number already exists."}},
	{domain.ErrInvalidCredentials, errorResponse{
		http.StatusUnauthorized, "Invalid credentials. Please check your email/phone and password.",
	}},
	{domain.ErrTokenExpired, errorResponse{http.StatusUnauthorized, "Your session has expired. Please log in again."}},
	{domain.ErrTokenInvalid, errorResponse{http.StatusUnauthorized, "User not logged in"}},
	{domain.ErrNoAuthToken, errorResponse{http.StatusUnauthorized, "User not logged in"}},
	{domain.ErrNotAuthenticated, errorResponse{http.StatusUnauthorized, "User not logged in"}},
	{domain.ErrWrongPassword, errorResponse{http.StatusBadRequest, "Current password is incorrect"}},
	{domain.ErrUserNotFound, errorResponse{http.StatusNotFound, "User not found"}},
	{domain.ErrEmptyCart, errorResponse{http.StatusBadRequest, "Your cart is empty"}},
	{domain.ErrLineNotFound, errorResponse{http.StatusNotFound, "Item is not in the cart"}},
	{domain.ErrProductNotFound, errorResponse{http.StatusNotFound, "Product not found"}},
	{domain.ErrImageTooLarge, errorResponse{http.StatusRequestEntityTooLarge, "Image size should be less than 2MB"}},
	{domain.ErrImageTypeNotSupported, errorResponse{http.StatusUnsupportedMediaType, "Please select an image file"}},
	{domain.ErrImageTypeMismatch, errorResponse{http.StatusUnsupportedMediaType, "Please select an image file"}},
	{domain.ErrNoProfilePicture, errorResponse{http.StatusNotFound, "No profile picture"}},
	{domain.ErrSimulatedBackendFailure, errorResponse{
		http.StatusBadGateway, "Payment processing failed. Please check your payment details and try again.",
	}},
}

// ErrorResult maps err onto a status code and a user-facing Result.
// Unknown errors become a 500 without leaking their text.
func ErrorResult(err error) (int, Result) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, Result{
			Success: false,
			Message: strings.Join(validationErr.Messages, ". "),
			Errors:  validationErr.Messages,
		}
	}

	for _, candidate := range errorResponses {
		if errors.Is(err, candidate.err) {
			return candidate.status, Result{Success: false, Message: candidate.message, Errors: nil}
		}
	}

	return http.StatusInternalServerError, Result{
		Success: false,
		Message: http.StatusText(http.StatusInternalServerError),
		Errors:  nil,
	}
}

// WriteJSON writes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes the Result for err. It returns err so handlers can
// `return http_.WriteError(w, err)` and still log the cause.
func WriteError(w http.ResponseWriter, err error) error {
	status, result := ErrorResult(err)

	if writeErr := WriteJSON(w, status, result); writeErr != nil {
		return errors.Join(err, writeErr)
	}

	return err
}

// ReadJSON decodes the request body into dst and rejects unknown fields.
func ReadJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", domain.NewValidationError("Invalid request body"), err)
	}

	return nil
}

// BearerToken returns the token from the Authorization header.
// The "Bearer" scheme prefix is optional.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(AuthorizationHeader))
	if header == "" {
		return "", domain.ErrNoAuthToken
	}

	token, _ := strings.CutPrefix(header, "Bearer")

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrNoAuthToken
	}

	return token, nil
}
