package authsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/session"
	"github.com/mkrupp/storefront/internal/repo/user"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
	"github.com/mkrupp/storefront/internal/util/encoding"
)

const userIDPrefix = "user_"

// AuthService owns registration, login and the single session of this process.
// Session changes are broadcast to subscribers, which get the current state on subscribe.
type AuthService struct {
	users    user.Repository
	sessions session.Repository
	avatars  avatarsvc.AvatarService
	cfg      AuthConfig
	log      logging.Logger
	now      func() time.Time

	mu        sync.Mutex // serializes session mutations
	token     string
	broadcast *sessionBroadcast
}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates the service and restores a persisted session.
// A persisted session is kept only when the cached user and the token are both present,
// the token decodes, has not expired and names the cached user. Otherwise it is cleared.
func NewAuthService(
	ctx context.Context,
	userRepoFactory user.RepositoryFactory,
	sessionRepoFactory session.RepositoryFactory,
	avatars avatarsvc.AvatarService,
	cfg AuthConfig,
	opts ...Option,
) (*AuthService, error) {
	users, err := userRepoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	sessions, err := sessionRepoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new session repo: %w", err)
	}

	svc := &AuthService{
		users:     users,
		sessions:  sessions,
		avatars:   avatars,
		cfg:       cfg,
		log:       logging.GetLogger("svc.authsvc.auth_service"),
		now:       time.Now,
		broadcast: newSessionBroadcast(domain.LoggedOut()),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if err := svc.restoreSession(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return svc, nil
}

func (s *AuthService) restoreSession(ctx context.Context) error {
	cached, hasUser, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "cached session user unreadable", "error", err)
	}

	token, hasToken, err := s.sessions.GetAuthToken(ctx)
	if err != nil {
		return fmt.Errorf("get auth token: %w", err)
	}

	if !hasUser && !hasToken {
		return nil
	}

	if hasUser && hasToken {
		decoded, decodeErr := DecodeToken(token)
		if decodeErr == nil {
			decodeErr = CheckTokenAge(decoded, s.now(), s.cfg.TokenMaxAge)
		}

		if decodeErr == nil && decoded.UserID == cached.ID {
			s.token = token
			s.broadcast.Publish(domain.LoggedInAs(*cached))

			s.log.DebugContext(ctx, "session restored", logging.Group("user", "id", cached.ID))

			return nil
		}

		s.log.DebugContext(ctx, "persisted session discarded", "error", decodeErr)
	}

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// Subscribe registers fn for session changes. fn is called with the current state before
// Subscribe returns and then with every later change, in order. fn must not call methods
// that change the session.
func (s *AuthService) Subscribe(fn func(domain.SessionState)) (unsubscribe func()) {
	return s.broadcast.Subscribe(fn)
}

// IsLoggedIn reports whether the published session state is logged in.
func (s *AuthService) IsLoggedIn() bool {
	return s.broadcast.Current().LoggedIn
}

// CurrentUser returns the session user.
func (s *AuthService) CurrentUser() (domain.User, bool) {
	state := s.broadcast.Current()
	if !state.LoggedIn || state.User == nil {
		return domain.User{}, false
	}

	return *state.User, true
}

// Register creates an account. The password is stored as given.
// Returns ErrDuplicateEmail or ErrDuplicatePhone if either is already registered.
func (s *AuthService) Register(ctx context.Context, data domain.RegisterData) (_ domain.User, err error) {
	log := s.log.With(logging.Group("user", "email", data.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	id, err := encoding.NewID(userIDPrefix)
	if err != nil {
		return domain.User{}, fmt.Errorf("new user id: %w", err)
	}

	record := domain.UserRecord{
		ID:             id,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Email:          data.Email,
		PhoneNumber:    data.PhoneNumber,
		Country:        data.Country,
		Password:       data.Password,
		ProfilePicture: "",
		CreatedAt:      s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, record); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return record.Sanitize(), nil
}

// Login authenticates by email, or by phone number when no email is given, and starts
// a session. Any mismatch yields ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (_ domain.User, _ string, err error) {
	log := s.log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	record, err := s.findByCredentials(ctx, creds.Email, creds.PhoneNumber)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("find user: %w", err)
	}

	if record == nil || record.Password != creds.Password {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	log = log.With(logging.Group("user", "id", record.ID))

	token, err := EncodeToken(domain.AuthToken{
		UserID:   record.ID,
		Email:    record.Email,
		IssuedAt: s.now().UnixMilli(),
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("encode token: %w", err)
	}

	sanitized := record.Sanitize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Save(ctx, sanitized, token); err != nil {
		return domain.User{}, "", fmt.Errorf("save session: %w", err)
	}

	s.token = token
	s.broadcast.Publish(domain.LoggedInAs(sanitized))

	return sanitized, token, nil
}

// findByCredentials returns nil when nothing matches. Email takes precedence; a phone number
// is tried as given and then in normalized form.
func (s *AuthService) findByCredentials(ctx context.Context, email, phoneNumber string) (*domain.UserRecord, error) {
	switch {
	case email != "":
		record, _, err := s.users.GetUserByEmail(ctx, email)

		return record, err //nolint:wrapcheck
	case phoneNumber != "":
		record, ok, err := s.users.GetUserByPhoneNumber(ctx, phoneNumber)
		if err != nil || ok {
			return record, err //nolint:wrapcheck
		}

		if normalized := NormalizePhoneNumber(phoneNumber); normalized != phoneNumber {
			record, _, err = s.users.GetUserByPhoneNumber(ctx, normalized)

			return record, err //nolint:wrapcheck
		}

		return nil, nil
	default:
		return nil, nil
	}
}

// GetUserByCredentials looks an account up by email or, failing that, by phone number.
func (s *AuthService) GetUserByCredentials(ctx context.Context, email, phoneNumber string) (domain.User, bool, error) {
	record, err := s.findByCredentials(ctx, email, phoneNumber)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("find user: %w", err)
	}

	if record == nil {
		return domain.User{}, false, nil
	}

	return record.Sanitize(), true, nil
}

// ListUsers returns every registered account without passwords.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.Sanitize())
	}

	return users, nil
}

// Logout ends the session. It is safe to call without a session.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logoutLocked(ctx)
}

func (s *AuthService) logoutLocked(ctx context.Context) error {
	s.token = ""

	err := s.sessions.Clear(ctx)

	s.broadcast.Publish(domain.LoggedOut())

	if err != nil {
		s.log.ErrorContext(ctx, "clear session failed", "error", err)

		return fmt.Errorf("clear session: %w", err)
	}

	s.log.DebugContext(ctx, "logged out")

	return nil
}

// ValidateToken decodes the persisted token and reports whether it is younger than the
// configured maximum age. It fails closed.
func (s *AuthService) ValidateToken(ctx context.Context) bool {
	token, ok, err := s.sessions.GetAuthToken(ctx)
	if err != nil || !ok {
		return false
	}

	return s.checkToken(token) == nil
}

func (s *AuthService) checkToken(token string) error {
	decoded, err := DecodeToken(token)
	if err != nil {
		return err
	}

	return CheckTokenAge(decoded, s.now(), s.cfg.TokenMaxAge)
}

// Guard admits callers only while the session is live: logged in with a valid persisted token.
// A session whose token fails is logged out.
func (s *AuthService) Guard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.guardLocked(ctx)
}

func (s *AuthService) guardLocked(ctx context.Context) error {
	if !s.IsLoggedIn() {
		return domain.ErrNotAuthenticated
	}

	if err := s.checkToken(s.token); err != nil {
		_ = s.logoutLocked(ctx)

		return err
	}

	return nil
}

// Authorize checks a bearer token against the live session and returns the session user id.
// A token that is not the session's token is rejected without touching the session.
func (s *AuthService) Authorize(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(ctx); err != nil {
		return "", err
	}

	if token != s.token {
		return "", domain.ErrTokenInvalid
	}

	current, _ := s.CurrentUser()

	return current.ID, nil
}

// UpdateProfile merges the set fields into the stored account and the session.
// Email and phone number stay unique across accounts.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (_ domain.User, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "update profile failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "profile updated")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateUserLocked(ctx, func(record *domain.UserRecord) error {
		update.ApplyTo(record)

		return nil
	})
}

// updateUserLocked applies fn to the session user's record, then refreshes the cached
// session user and publishes it.
func (s *AuthService) updateUserLocked(ctx context.Context, fn func(*domain.UserRecord) error) (domain.User, error) {
	current, ok := s.CurrentUser()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}

	updated, err := s.users.UpdateUser(ctx, current.ID, fn)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	sanitized := updated.Sanitize()

	if err := s.sessions.SaveCurrentUser(ctx, sanitized); err != nil {
		return domain.User{}, fmt.Errorf("save current user: %w", err)
	}

	s.broadcast.Publish(domain.LoggedInAs(sanitized))

	return sanitized, nil
}

// ChangePassword replaces the password after checking the current one.
// Returns ErrWrongPassword if current does not match.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) (err error) {
	defer func() {
		if err != nil {
			s.log.WarnContext(ctx, "change password failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "password changed")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.CurrentUser()
	if !ok {
		return domain.ErrNotAuthenticated
	}

	if _, err := s.users.UpdateUser(ctx, session.ID, func(record *domain.UserRecord) error {
		if record.Password != current {
			return domain.ErrWrongPassword
		}

		record.Password = next

		return nil
	}); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// UpdateProfilePicture stores a new picture for the session user and records its blob id
// on the account.
func (s *AuthService) UpdateProfilePicture(
	ctx context.Context,
	filename string,
	data []byte,
) (_ domain.User, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "update profile picture failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "profile picture updated")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.CurrentUser()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}

	id, err := s.avatars.Store(ctx, current.ID, filename, data)
	if err != nil {
		return domain.User{}, fmt.Errorf("store avatar: %w", err)
	}

	return s.updateUserLocked(ctx, func(record *domain.UserRecord) error {
		record.ProfilePicture = id.String()

		return nil
	})
}

// ProfilePicture returns the stored picture of any user.
func (s *AuthService) ProfilePicture(ctx context.Context, userID string) (domain.ProfilePicture, error) {
	pic, err := s.avatars.Fetch(ctx, userID)
	if err != nil {
		return domain.ProfilePicture{}, fmt.Errorf("fetch avatar: %w", err)
	}

	return pic, nil
}

// RemoveProfilePicture deletes the session user's picture.
func (s *AuthService) RemoveProfilePicture(ctx context.Context) (_ domain.User, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "remove profile picture failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "profile picture removed")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.CurrentUser()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}

	if err := s.avatars.Delete(ctx, current.ID); err != nil {
		return domain.User{}, fmt.Errorf("delete avatar: %w", err)
	}

	return s.updateUserLocked(ctx, func(record *domain.UserRecord) error {
		record.ProfilePicture = ""

		return nil
	})
}

// Close releases the repositories.
func (s *AuthService) Close() error {
	return errors.Join(s.users.Close(), s.sessions.Close())
}
