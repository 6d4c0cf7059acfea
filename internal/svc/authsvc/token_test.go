package authsvc_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
)

func TestEncodeToken(t *testing.T) {
	t.Parallel()

	token := domain.AuthToken{UserID: "user_1", Email: "a@b.co", IssuedAt: 1700000000000}

	encoded, err := authsvc.EncodeToken(token)
	require.NoError(t, err)

	payload, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"user_1","email":"a@b.co","timestamp":1700000000000}`, string(payload))

	decoded, err := authsvc.DecodeToken(encoded)
	require.NoError(t, err)
	assert.Equal(t, token, decoded)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "%%%"},
		{name: "not json", token: encode("hello")},
		{name: "no user", token: encode(`{"email":"a@b.co","timestamp":1}`)},
		{name: "no timestamp", token: encode(`{"userId":"user_1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := authsvc.DecodeToken(tt.token)
			require.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}

func TestCheckTokenAge(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	token := domain.AuthToken{UserID: "user_1", IssuedAt: issued.UnixMilli()}
	maxAge := 7 * 24 * time.Hour

	require.NoError(t, authsvc.CheckTokenAge(token, issued.Add(time.Hour), maxAge))
	require.NoError(t, authsvc.CheckTokenAge(token, issued.Add(maxAge-time.Millisecond), maxAge))
	require.ErrorIs(t, authsvc.CheckTokenAge(token, issued.Add(maxAge), maxAge), domain.ErrTokenExpired)
	require.ErrorIs(t, authsvc.CheckTokenAge(token, issued.Add(8*24*time.Hour), maxAge), domain.ErrTokenExpired)
}
