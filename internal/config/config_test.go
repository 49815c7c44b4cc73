package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PG_PASSWORD", "pgpass")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "brainspill", cfg.Database.Name)
	assert.Equal(t, "http://localhost:3000/auth/google/callback", cfg.Google.CallbackURL)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "pgpass")
	t.Setenv("PG_DATABASE", "spill")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "host=db.internal port=5433 user=app password=pgpass dbname=spill sslmode=disable", cfg.Database.DSN())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	_, err = Load()
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_ID")
}
