package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/kv"
)

//nolint:gochecknoglobals
var thandi = domain.UserRecord{
	ID:          "user_1",
	FirstName:   "Thandi",
	LastName:    "Mokoena",
	Email:       "thandi@example.co.za",
	PhoneNumber: "+27821234567",
	Country:     "South Africa",
	Password:    "Secret1!",
	CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
}

// seedStore points the command at a fresh database holding one account.
func seedStore(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "storefront.db")

	t.Setenv("STOREFRONT_STOREFRONTSVC_STORE_DATABASE_PATH", dbPath)
	t.Setenv("STOREFRONT_STOREFRONTSVC_BLOB_BASEDIR", filepath.Join(dir, "blob"))
	t.Setenv("STOREFRONT_LOG_OUTPUT", "discard")

	store, err := kv.NewSQLiteStore(t.Context(), kv.SQLiteStoreConfig{DatabasePath: dbPath, BusyTimeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, kv.SetJSON(t.Context(), store, kv.KeyUsers, []domain.UserRecord{thandi}))
	require.NoError(t, store.Close())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestUsersCommand(t *testing.T) {
	seedStore(t)

	out, err := execute(t, "users")
	require.NoError(t, err)
	assert.NotContains(t, out, "Secret1!")

	var users []domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	assert.Equal(t, []domain.User{thandi.Sanitize()}, users)

	out, err = execute(t, "users", "--phone", "082 123 4567")
	require.NoError(t, err)

	var user domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, thandi.Sanitize(), user)

	_, err = execute(t, "users", "--email", "nobody@example.org")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = execute(t, "users", "extra")
	require.Error(t, err)
}

func TestRecordsCommand(t *testing.T) {
	seedStore(t)

	out, err := execute(t, "records")
	require.NoError(t, err)
	assert.Regexp(t, `^users\t\d+\n$`, out)

	out, err = execute(t, "records", "--prefix", "cart")
	require.NoError(t, err)
	assert.Empty(t, out)
}
