package hyperkit_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/config"
)

func TestGetKey(t *testing.T) {
	t.Parallel()

	t.Run("explicit_key", func(t *testing.T) {
		t.Parallel()
		key, err := hyperkit.GetKey("secret", "")
		require.NoError(t, err)
		assert.Equal(t, "secret", key)
	})

	t.Run("no_key_no_file", func(t *testing.T) {
		t.Parallel()
		_, err := hyperkit.GetKey("", "")
		assert.ErrorIs(t, err, hyperkit.ErrNoSessionKey)
	})

	t.Run("creates_file_once", func(t *testing.T) {
		t.Parallel()
		fname := filepath.Join(t.TempDir(), ".sesskey")

		first, err := hyperkit.GetKey("", fname)
		require.NoError(t, err)
		assert.Len(t, first, 36)

		second, err := hyperkit.GetKey("", fname)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		data, err := os.ReadFile(fname)
		require.NoError(t, err)
		assert.Equal(t, first, string(data))
	})

	t.Run("reads_existing_file", func(t *testing.T) {
		t.Parallel()
		fname := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(fname, []byte("  stored-key\n"), 0o600))

		key, err := hyperkit.GetKey("", fname)
		require.NoError(t, err)
		assert.Equal(t, "stored-key", key)
	})

	t.Run("unwritable_location", func(t *testing.T) {
		t.Parallel()
		_, err := hyperkit.GetKey("", filepath.Join(t.TempDir(), "missing", "key"))
		assert.ErrorIs(t, err, hyperkit.ErrNoSessionKey)
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := hyperkit.DefaultConfig()
	assert.Equal(t, "Hyperkit page", cfg.Title)
	assert.True(t, cfg.Canonical)
	assert.True(t, cfg.DefaultHdrs)
	assert.True(t, cfg.Sessions)
	assert.False(t, cfg.Indent)
	assert.Equal(t, "session_", cfg.SessionCookie)
	assert.Equal(t, 365*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, time.Hour, cfg.StaticMaxAge)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("HYPERKIT_TITLE", "From env")
	t.Setenv("HYPERKIT_WORKERS", "4")
	t.Setenv("HYPERKIT_SESSION_MAX_AGE", "1h")
	t.Setenv("HYPERKIT_CANONICAL", "false")
	config.Reset()
	t.Cleanup(config.Reset)

	cfg, err := hyperkit.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "From env", cfg.Title)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.False(t, cfg.Canonical)
	assert.Equal(t, "session_", cfg.SessionCookie)

	app, err := hyperkit.New(hyperkit.WithConfig(cfg), hyperkit.WithSecretKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "From env", app.Config().Title)
}
