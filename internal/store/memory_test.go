package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestMemUserStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := NewMemUserStore()

	user := &User{Email: "a@x.com", PasswordHash: "hash", Username: strptr("alice")}
	require.NoError(t, users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "alice", *byEmail.Username)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = users.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	users := NewMemUserStore()

	require.NoError(t, users.Create(ctx, &User{Email: "a@x.com", PasswordHash: "h", Username: strptr("alice")}))

	err := users.Create(ctx, &User{Email: "a@x.com", PasswordHash: "h", Username: strptr("bob")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	err = users.Create(ctx, &User{Email: "b@x.com", PasswordHash: "h", Username: strptr("alice")})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	taken, err := users.EmailExists(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestMemUserStore_EnsureGoogleUser(t *testing.T) {
	ctx := context.Background()
	users := NewMemUserStore()

	first, err := users.EnsureGoogleUser(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, GoogleSentinel, first.PasswordHash)
	assert.False(t, first.HasUsername())

	second, err := users.EnsureGoogleUser(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-login must not create a duplicate")
}

func TestMemUserStore_SetUsername(t *testing.T) {
	ctx := context.Background()
	users := NewMemUserStore()

	require.NoError(t, users.Create(ctx, &User{Email: "a@x.com", PasswordHash: "h", Username: strptr("alice")}))
	google, err := users.EnsureGoogleUser(ctx, "b@x.com")
	require.NoError(t, err)

	err = users.SetUsername(ctx, google.ID, "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	reloaded, err := users.GetByID(ctx, google.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.HasUsername(), "failed update must leave username unset")

	require.NoError(t, users.SetUsername(ctx, google.ID, "bob"))
	reloaded, err = users.GetByID(ctx, google.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", *reloaded.Username)

	err = users.SetUsername(ctx, "missing-id", "carol")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemSecretStore(t *testing.T) {
	ctx := context.Background()
	users := NewMemUserStore()
	secrets := NewMemSecretStore(users)

	_, err := secrets.Random(ctx)
	assert.ErrorIs(t, err, ErrSecretNotFound)

	author := &User{Email: "a@x.com", PasswordHash: "h", Username: strptr("alice")}
	require.NoError(t, users.Create(ctx, author))

	require.NoError(t, secrets.Add(ctx, author.ID, "i sing in the shower"))
	require.NoError(t, secrets.Add(ctx, author.ID, "i never water my plants"))
	assert.Equal(t, 2, secrets.Count())

	seen := map[string]bool{}
	for range 50 {
		entry, err := secrets.Random(ctx)
		require.NoError(t, err)
		assert.Equal(t, "alice", entry.Username)
		seen[entry.SecretText] = true
	}
	assert.Len(t, seen, 2, "random selection should eventually cover all secrets")
}
