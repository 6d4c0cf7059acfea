package authsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
)

// ErrNoUpload is returned when a picture upload carries no file.
var ErrNoUpload = errors.New("no upload")

// HTTPTransportConfig contains configuration parameters for the auth routes.
type HTTPTransportConfig struct {
	// MultipartFileName is the form field name of profile picture uploads
	MultipartFileName string `env:"MULTIPART_FILE_NAME" default:"upload"`

	// MultipartFormMaxMemory bounds the request body of profile picture uploads
	MultipartFormMaxMemory int64 `env:"MULTIPART_FORM_MAX_SIZE" default:"4194304"`
}

// HTTPTransport exposes the AuthService over HTTP.
type HTTPTransport struct {
	authSvc    *AuthService
	authClient authclient.AuthClient
	log        logging.Logger
	cfg        HTTPTransportConfig
}

var _ http_.Router = (*HTTPTransport)(nil)

// NewHTTPTransport creates the auth routes. Guarded routes check bearer tokens with authClient.
func NewHTTPTransport(
	authSvc *AuthService,
	authClient authclient.AuthClient,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc:    authSvc,
		authClient: authClient,
		log:        logging.GetLogger("svc.authsvc.http_transport"),
		cfg:        cfg,
	}
}

// UserResponse answers operations that return the session user.
type UserResponse struct {
	http_.Result

	User *domain.User `json:"user,omitempty"`
}

// LoginResponse answers a successful login.
type LoginResponse struct {
	http_.Result

	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// SessionResponse answers a session query.
type SessionResponse struct {
	http_.Result
	domain.SessionState
}

// Routes implements http_.Router:
// - POST /auth/register: create an account
// - POST /auth/login: start a session and get its token
// - POST /auth/logout: end the session
// - GET /auth/session: current session state
// - POST /auth/validate: check a bearer token
// - PATCH /auth/profile: update the session user's profile
// - POST /auth/password: change the session user's password
// - PUT|GET|DELETE /auth/profile/picture: manage the profile picture.
func (ht *HTTPTransport) Routes() []http_.Route {
	guard := func(h http.HandlerFunc) http.HandlerFunc {
		return http_.Authorized(h, ht.authClient, ht.log)
	}

	return []http_.Route{
		{Pattern: "POST /auth/register", Handler: ht.HandleRegister},
		{Pattern: "POST /auth/login", Handler: ht.HandleLogin},
		{Pattern: "POST /auth/logout", Handler: ht.HandleLogout},
		{Pattern: "GET /auth/session", Handler: ht.HandleSession},
		{Pattern: "POST /auth/validate", Handler: ht.HandleValidate},
		{Pattern: "PATCH /auth/profile", Handler: guard(ht.HandleUpdateProfile)},
		{Pattern: "POST /auth/password", Handler: guard(ht.HandleChangePassword)},
		{Pattern: "PUT /auth/profile/picture", Handler: guard(ht.HandleUploadPicture)},
		{Pattern: "GET /auth/profile/picture", Handler: guard(ht.HandleDownloadPicture)},
		{Pattern: "DELETE /auth/profile/picture", Handler: guard(ht.HandleRemovePicture)},
	}
}

func (ht *HTTPTransport) requestLogger(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

// HandleRegister creates an account from a registration form.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var form RegistrationForm
	if err := http_.ReadJSON(r, &form); err != nil {
		return http_.WriteError(w, err)
	}

	if err := ValidateRegistration(form); err != nil {
		return http_.WriteError(w, err)
	}

	data := form.RegisterData
	data.PhoneNumber = NormalizePhoneNumber(data.PhoneNumber)

	user, err := ht.authSvc.Register(r.Context(), data)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("register user: %w", err))
	}

	return http_.WriteJSON(w, http.StatusCreated, UserResponse{
		Result: http_.OK(fmt.Sprintf("Account created successfully! Welcome, %s!", user.FirstName)),
		User:   &user,
	})
}

// HandleLogin starts a session for email or phone credentials.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var creds domain.Credentials
	if err := http_.ReadJSON(r, &creds); err != nil {
		return http_.WriteError(w, err)
	}

	if (creds.Email == "" && creds.PhoneNumber == "") || creds.Password == "" {
		return http_.WriteError(w, domain.NewValidationError("Please fill in all fields"))
	}

	user, token, err := ht.authSvc.Login(r.Context(), creds)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("login user: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, LoginResponse{
		Result: http_.OK(fmt.Sprintf("Welcome back, %s!", user.FirstName)),
		Token:  token,
		User:   &user,
	})
}

// HandleLogout ends the session. It succeeds without a session too.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	if err := ht.authSvc.Logout(r.Context()); err != nil {
		return http_.WriteError(w, fmt.Errorf("logout: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, http_.OK("Logged out"))
}

// HandleSession reports the current session state.
func (ht *HTTPTransport) HandleSession(w http.ResponseWriter, r *http.Request) {
	state := domain.LoggedOut()
	if user, ok := ht.authSvc.CurrentUser(); ok {
		state = domain.LoggedInAs(user)
	}

	if err := http_.WriteJSON(w, http.StatusOK, SessionResponse{Result: http_.OK(""), SessionState: state}); err != nil {
		ht.requestLogger(r).ErrorContext(r.Context(), "write session failed", "error", err)
	}
}

// HandleValidate checks the bearer token against the live session.
// Expects the token in the Authorization header.
func (ht *HTTPTransport) HandleValidate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleValidate(w, r)
}

func (ht *HTTPTransport) handleValidate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "token validation failed", "error", err)
		} else {
			log.DebugContext(ctx, "token validated")
		}
	}(r.Context())

	token, err := http_.BearerToken(r)
	if err == nil {
		var userID string

		userID, err = ht.authSvc.Authorize(r.Context(), token)
		if err == nil {
			return http_.WriteJSON(w, http.StatusOK, authclient.ValidateResponse{
				Success: true,
				Message: "",
				UserID:  userID,
			})
		}
	}

	status, result := http_.ErrorResult(err)

	if writeErr := http_.WriteJSON(w, status, authclient.ValidateResponse{
		Success: false,
		Message: result.Message,
		UserID:  "",
	}); writeErr != nil {
		return errors.Join(err, writeErr)
	}

	return err
}

// HandleUpdateProfile applies a partial profile update to the session user.
func (ht *HTTPTransport) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdateProfile(w, r)
}

func (ht *HTTPTransport) handleUpdateProfile(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "profile update failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile updated")
		}
	}(r.Context())

	var update domain.ProfileUpdate
	if err := http_.ReadJSON(r, &update); err != nil {
		return http_.WriteError(w, err)
	}

	if err := ValidateProfileUpdate(update); err != nil {
		return http_.WriteError(w, err)
	}

	if update.PhoneNumber != nil {
		normalized := NormalizePhoneNumber(*update.PhoneNumber)
		update.PhoneNumber = &normalized
	}

	user, err := ht.authSvc.UpdateProfile(r.Context(), update)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("update profile: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, UserResponse{
		Result: http_.OK("Profile updated successfully!"),
		User:   &user,
	})
}

// HandleChangePassword replaces the session user's password.
func (ht *HTTPTransport) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleChangePassword(w, r)
}

func (ht *HTTPTransport) handleChangePassword(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "password change failed", "error", err)
		} else {
			log.DebugContext(ctx, "password changed")
		}
	}(r.Context())

	var change PasswordChange
	if err := http_.ReadJSON(r, &change); err != nil {
		return http_.WriteError(w, err)
	}

	if err := ValidatePasswordChange(change); err != nil {
		return http_.WriteError(w, err)
	}

	if err := ht.authSvc.ChangePassword(r.Context(), change.CurrentPassword, change.NewPassword); err != nil {
		return http_.WriteError(w, fmt.Errorf("change password: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, http_.OK("Password changed successfully!"))
}

// HandleUploadPicture stores a profile picture sent as a multipart form.
// Expects the file in the field named by MultipartFileName.
func (ht *HTTPTransport) HandleUploadPicture(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUploadPicture(w, r)
}

func (ht *HTTPTransport) handleUploadPicture(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "profile picture upload failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile picture uploaded")
		}
	}(r.Context())

	filename, data, err := ht.readUpload(w, r)
	if err != nil {
		return http_.WriteError(w, err)
	}

	log = log.With(logging.Group("upload", "filename", filename, "size", len(data)))

	user, err := ht.authSvc.UpdateProfilePicture(r.Context(), filename, data)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("update profile picture: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, UserResponse{
		Result: http_.OK("Profile picture updated successfully!"),
		User:   &user,
	})
}

func (ht *HTTPTransport) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, ht.cfg.MultipartFormMaxMemory)

	if err := r.ParseMultipartForm(ht.cfg.MultipartFormMaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, errors.Join(domain.ErrImageTooLarge, err)
		}

		return "", nil, fmt.Errorf("%w: %w", domain.NewValidationError("Invalid upload"), err)
	}

	file, header, err := r.FormFile(ht.cfg.MultipartFileName)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.NewValidationError("Please select an image file"), ErrNoUpload)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	return header.Filename, data, nil
}

// HandleDownloadPicture serves the session user's picture.
func (ht *HTTPTransport) HandleDownloadPicture(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDownloadPicture(w, r)
}

func (ht *HTTPTransport) handleDownloadPicture(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "profile picture download failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile picture downloaded")
		}
	}(r.Context())

	userID, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		return http_.WriteError(w, domain.ErrNotAuthenticated)
	}

	pic, err := ht.authSvc.ProfilePicture(r.Context(), userID)
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("fetch profile picture: %w", err))
	}

	w.Header().Set(http_.ContentTypeHeader, pic.MIMEType)
	w.Header().Set("Cache-Control", "no-store")

	if _, err := w.Write(pic.Data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// HandleRemovePicture deletes the session user's picture.
func (ht *HTTPTransport) HandleRemovePicture(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRemovePicture(w, r)
}

func (ht *HTTPTransport) handleRemovePicture(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "profile picture removal failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile picture removed")
		}
	}(r.Context())

	user, err := ht.authSvc.RemoveProfilePicture(r.Context())
	if err != nil {
		return http_.WriteError(w, fmt.Errorf("remove profile picture: %w", err))
	}

	return http_.WriteJSON(w, http.StatusOK, UserResponse{
		Result: http_.OK("Profile picture removed"),
		User:   &user,
	})
}
