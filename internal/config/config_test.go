package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testVaultKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
)

// setRequired sets the two env vars without which Load refuses to start.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SENDLOOP_SESSION_SECRET", testSecret)
	t.Setenv("SENDLOOP_VAULT_KEY", testVaultKey)
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 30*time.Second, cfg.Redis.SnapshotTTL)
		assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
		assert.Empty(t, cfg.WhatsApp.BaseURL)
		assert.Empty(t, cfg.Engine.APIKey)
	})

	t.Run("missing_session_secret", func(t *testing.T) {
		t.Setenv("SENDLOOP_SESSION_SECRET", "")
		t.Setenv("SENDLOOP_VAULT_KEY", testVaultKey)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SENDLOOP_SESSION_SECRET")
	})

	t.Run("short_session_secret", func(t *testing.T) {
		t.Setenv("SENDLOOP_SESSION_SECRET", "too-short")
		t.Setenv("SENDLOOP_VAULT_KEY", testVaultKey)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("missing_vault_key", func(t *testing.T) {
		t.Setenv("SENDLOOP_SESSION_SECRET", testSecret)
		t.Setenv("SENDLOOP_VAULT_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SENDLOOP_VAULT_KEY")
	})

	t.Run("malformed_vault_key", func(t *testing.T) {
		t.Setenv("SENDLOOP_SESSION_SECRET", testSecret)
		t.Setenv("SENDLOOP_VAULT_KEY", "not-hex")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "64 hex characters")
	})

	t.Run("wrong_length_vault_key", func(t *testing.T) {
		t.Setenv("SENDLOOP_SESSION_SECRET", testSecret)
		t.Setenv("SENDLOOP_VAULT_KEY", "deadbeef")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "64 hex characters")
	})

	t.Run("invalid_port", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SENDLOOP_DB_PORT", "70000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SENDLOOP_DB_PORT")
	})

	t.Run("non_numeric_port", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SENDLOOP_DB_PORT", "fivefourthreetwo")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad_duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SENDLOOP_SESSION_TTL", "tomorrow")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative_session_ttl", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SENDLOOP_SESSION_TTL", "-1h")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SENDLOOP_SESSION_TTL")
	})

	t.Run("cors_list_trims_and_drops_empties", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SENDLOOP_CORS_ORIGINS", " https://app.example.com ,, https://admin.example.com ")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)
	})
}

func TestVaultKey(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	key := cfg.VaultKey()
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0x00), key[0])
	assert.Equal(t, byte(0x11), key[1])
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "pw",
		DBName:   "sendloop",
		SSLMode:  "require",
	}

	dsn := db.DSN()
	assert.Equal(t, "host=db.internal port=5433 user=svc password=pw dbname=sendloop sslmode=require", dsn)
	assert.False(t, strings.Contains(dsn, "max_conns"))
}
