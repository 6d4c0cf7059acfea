package authsvc_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/blob"
	"github.com/mkrupp/storefront/internal/repo/kv"
	"github.com/mkrupp/storefront/internal/repo/session"
	"github.com/mkrupp/storefront/internal/repo/user"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type fixture struct {
	store kv.Store
	clock *clock
	blobs blob.RepositoryFactory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return &fixture{
		store: kv.NewMemoryStore(),
		clock: newClock(),
		blobs: blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: t.TempDir()}),
	}
}

func (f *fixture) newService(t *testing.T) *authsvc.AuthService {
	t.Helper()

	avatars, err := avatarsvc.NewBlobAvatarService(context.Background(), f.blobs, avatarsvc.AvatarConfig{
		MaxSize:      2 << 20,
		Width:        32,
		Interpolator: "bilinear",
	})
	require.NoError(t, err)

	svc, err := authsvc.NewAuthService(
		context.Background(),
		user.KVUserRepositoryFactory(f.store),
		session.KVSessionRepositoryFactory(f.store),
		avatars,
		authsvc.AuthConfig{TokenMaxAge: 7 * 24 * time.Hour},
		authsvc.WithClock(f.clock.Now),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

func thandi() domain.RegisterData {
	return domain.RegisterData{
		FirstName:   "Thandi",
		LastName:    "Mokoena",
		Email:       "thandi@example.co.za",
		PhoneNumber: "+27821234567",
		Country:     "South Africa",
		Password:    "Secret1!",
	}
}

func pieter() domain.RegisterData {
	return domain.RegisterData{
		FirstName:   "Pieter",
		LastName:    "Botha",
		Email:       "pieter@example.co.za",
		PhoneNumber: "+27837654321",
		Country:     "South Africa",
		Password:    "Hunter2!",
	}
}

func login(t *testing.T, svc *authsvc.AuthService, data domain.RegisterData) (domain.User, string) {
	t.Helper()

	u, token, err := svc.Login(context.Background(), domain.Credentials{Email: data.Email, Password: data.Password})
	require.NoError(t, err)

	return u, token
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	registered, err := svc.Register(ctx, thandi())
	require.NoError(t, err)

	assert.Regexp(t, `^user_[0-9a-z]{26}$`, registered.ID)
	assert.Equal(t, f.clock.Now(), registered.CreatedAt)
	assert.False(t, svc.IsLoggedIn(), "registration does not log in")

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff([]domain.User{registered}, users); diff != "" {
		t.Errorf("ListUsers() mismatch (-want +got):\n%s", diff)
	}

	dupEmail := pieter()
	dupEmail.Email = thandi().Email
	_, err = svc.Register(ctx, dupEmail)
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	dupPhone := pieter()
	dupPhone.PhoneNumber = thandi().PhoneNumber
	_, err = svc.Register(ctx, dupPhone)
	require.ErrorIs(t, err, domain.ErrDuplicatePhone)

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	registered, err := svc.Register(ctx, thandi())
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   domain.Credentials
		wantErr error
	}{
		{name: "email", creds: domain.Credentials{Email: "thandi@example.co.za", Password: "Secret1!"}},
		{name: "phone as stored", creds: domain.Credentials{PhoneNumber: "+27821234567", Password: "Secret1!"}},
		{name: "national phone", creds: domain.Credentials{PhoneNumber: "082 123 4567", Password: "Secret1!"}},
		{
			name:    "wrong password",
			creds:   domain.Credentials{Email: "thandi@example.co.za", Password: "secret1!"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			creds:   domain.Credentials{Email: "nobody@example.co.za", Password: "Secret1!"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "email wins over phone",
			creds:   domain.Credentials{Email: "nobody@example.co.za", PhoneNumber: "+27821234567", Password: "Secret1!"},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, svc.Logout(ctx))

			loggedIn, token, err := svc.Login(ctx, tt.creds)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, svc.IsLoggedIn())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, registered, loggedIn)
			assert.True(t, svc.IsLoggedIn())

			decoded, err := authsvc.DecodeToken(token)
			require.NoError(t, err)
			assert.Equal(t, registered.ID, decoded.UserID)
			assert.Equal(t, registered.Email, decoded.Email)
			assert.Equal(t, f.clock.Now().UnixMilli(), decoded.IssuedAt)

			stored, ok, err := f.store.Get(ctx, kv.KeyAuthToken)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, token, string(stored))
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	_, err := svc.Register(ctx, thandi())
	require.NoError(t, err)
	login(t, svc, thandi())

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	assert.False(t, svc.IsLoggedIn())
	assert.False(t, svc.ValidateToken(ctx))

	_, ok := svc.CurrentUser()
	assert.False(t, ok)

	keys, err := f.store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{kv.KeyUsers}, keys)
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		age     time.Duration
		wantErr error
	}{
		{name: "fresh", age: time.Hour},
		{name: "just below max age", age: 7*24*time.Hour - time.Millisecond},
		{name: "at max age", age: 7 * 24 * time.Hour, wantErr: domain.ErrTokenExpired},
		{name: "eight days", age: 8 * 24 * time.Hour, wantErr: domain.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := newFixture(t)
			svc := f.newService(t)

			_, err := svc.Register(ctx, thandi())
			require.NoError(t, err)
			login(t, svc, thandi())

			f.clock.Advance(tt.age)

			assert.Equal(t, tt.wantErr == nil, svc.ValidateToken(ctx))

			err = svc.Guard(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, svc.IsLoggedIn(), "an expired session is logged out")

				return
			}

			require.NoError(t, err)
			assert.True(t, svc.IsLoggedIn())
		})
	}
}

func TestGuardWithoutSession(t *testing.T) {
	t.Parallel()

	svc := newFixture(t).newService(t)

	require.ErrorIs(t, svc.Guard(context.Background()), domain.ErrNotAuthenticated)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	_, err := svc.Authorize(ctx, "anything")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	registered, err := svc.Register(ctx, thandi())
	require.NoError(t, err)
	_, token := login(t, svc, thandi())

	userID, err := svc.Authorize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)

	forged, err := authsvc.EncodeToken(domain.AuthToken{UserID: registered.ID, Email: "x", IssuedAt: 1})
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, forged)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.True(t, svc.IsLoggedIn(), "a foreign token leaves the session alone")

	f.clock.Advance(8 * 24 * time.Hour)

	_, err = svc.Authorize(ctx, token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.False(t, svc.IsLoggedIn())
}

func TestRestoreSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid session survives restart", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		first := f.newService(t)

		_, err := first.Register(ctx, thandi())
		require.NoError(t, err)
		loggedIn, token := login(t, first, thandi())

		f.clock.Advance(time.Hour)

		second := f.newService(t)
		current, ok := second.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, loggedIn, current)

		userID, err := second.Authorize(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, loggedIn.ID, userID)
	})

	t.Run("expired session is cleared", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		first := f.newService(t)

		_, err := first.Register(ctx, thandi())
		require.NoError(t, err)
		login(t, first, thandi())

		f.clock.Advance(8 * 24 * time.Hour)

		second := f.newService(t)
		assert.False(t, second.IsLoggedIn())

		_, ok, err := f.store.Get(ctx, kv.KeyAuthToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("token without user is cleared", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, kv.KeyAuthToken, []byte("not base64!")))

		svc := f.newService(t)
		assert.False(t, svc.IsLoggedIn())

		_, ok, err := f.store.Get(ctx, kv.KeyAuthToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	var (
		mu     sync.Mutex
		states []domain.SessionState
	)

	unsubscribe := svc.Subscribe(func(state domain.SessionState) {
		mu.Lock()
		defer mu.Unlock()

		states = append(states, state)
	})

	registered, err := svc.Register(ctx, thandi())
	require.NoError(t, err)
	login(t, svc, thandi())
	require.NoError(t, svc.Logout(ctx))

	unsubscribe()
	unsubscribe()

	login(t, svc, thandi())

	mu.Lock()
	defer mu.Unlock()

	want := []domain.SessionState{domain.LoggedOut(), domain.LoggedInAs(registered), domain.LoggedOut()}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("session states mismatch (-want +got):\n%s", diff)
	}

	var replayed domain.SessionState

	svc.Subscribe(func(state domain.SessionState) { replayed = state })()
	assert.Equal(t, domain.LoggedInAs(registered), replayed)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	name := "Thandeka"

	_, err := svc.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &name})
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = svc.Register(ctx, thandi())
	require.NoError(t, err)
	_, err = svc.Register(ctx, pieter())
	require.NoError(t, err)
	login(t, svc, thandi())

	updated, err := svc.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Thandeka", updated.FirstName)
	assert.Equal(t, "Mokoena", updated.LastName)

	current, _ := svc.CurrentUser()
	assert.Equal(t, updated, current)

	cached := domain.User{}
	ok, err := kv.GetJSON(ctx, f.store, kv.KeyCurrentUser, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, updated, cached)

	taken := pieter().Email
	_, err = svc.UpdateProfile(ctx, domain.ProfileUpdate{Email: &taken})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	current, _ = svc.CurrentUser()
	assert.Equal(t, thandi().Email, current.Email)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	_, err := svc.Register(ctx, thandi())
	require.NoError(t, err)
	login(t, svc, thandi())

	require.ErrorIs(t, svc.ChangePassword(ctx, "wrong", "Changed1!"), domain.ErrWrongPassword)
	require.NoError(t, svc.ChangePassword(ctx, "Secret1!", "Changed1!"))

	_, _, err = svc.Login(ctx, domain.Credentials{Email: thandi().Email, Password: "Secret1!"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, domain.Credentials{Email: thandi().Email, Password: "Changed1!"})
	require.NoError(t, err)
}

func TestProfilePicture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := f.newService(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48))))

	_, err := svc.UpdateProfilePicture(ctx, "me.png", buf.Bytes())
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	registered, err := svc.Register(ctx, thandi())
	require.NoError(t, err)
	login(t, svc, thandi())

	updated, err := svc.UpdateProfilePicture(ctx, "me.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePictureBlobID(registered.ID).String(), updated.ProfilePicture)

	pic, err := svc.ProfilePicture(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, avatarsvc.MIMETypePNG, pic.MIMEType)

	decoded, err := png.Decode(bytes.NewReader(pic.Data))
	require.NoError(t, err)
	assert.Equal(t, 32, decoded.Bounds().Dx())

	removed, err := svc.RemoveProfilePicture(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed.ProfilePicture)

	_, err = svc.ProfilePicture(ctx, registered.ID)
	require.ErrorIs(t, err, domain.ErrNoProfilePicture)
}
