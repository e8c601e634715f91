package hyperkit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hyperkit/core/binder"
	"github.com/dmitrymomot/hyperkit/core/config"
)

// Config holds the environment-driven settings of an App. Options passed to New
// override it.
type Config struct {
	Title       string `env:"HYPERKIT_TITLE" envDefault:"Hyperkit page"`
	Canonical   bool   `env:"HYPERKIT_CANONICAL" envDefault:"true"`
	Indent      bool   `env:"HYPERKIT_INDENT" envDefault:"false"`
	DefaultHdrs bool   `env:"HYPERKIT_DEFAULT_HDRS" envDefault:"true"`

	SecretKey        string        `env:"HYPERKIT_SECRET_KEY"`
	KeyFile          string        `env:"HYPERKIT_KEY_FILE" envDefault:".sesskey"`
	Sessions         bool          `env:"HYPERKIT_SESSIONS" envDefault:"true"`
	SessionCookie    string        `env:"HYPERKIT_SESSION_COOKIE" envDefault:"session_"`
	SessionMaxAge    time.Duration `env:"HYPERKIT_SESSION_MAX_AGE" envDefault:"8760h"`
	SessionPath      string        `env:"HYPERKIT_SESSION_PATH" envDefault:"/"`
	SessionSameSite  string        `env:"HYPERKIT_SESSION_SAME_SITE" envDefault:"lax"`
	SessionHTTPSOnly bool          `env:"HYPERKIT_SESSION_HTTPS_ONLY" envDefault:"false"`
	SessionDomain    string        `env:"HYPERKIT_SESSION_DOMAIN"`

	// Workers bounds concurrent synchronous handlers. Zero picks a size from GOMAXPROCS.
	Workers            int   `env:"HYPERKIT_WORKERS" envDefault:"0"`
	MaxMultipartMemory int64 `env:"HYPERKIT_MAX_MULTIPART_MEMORY" envDefault:"10485760"`
	MaxBodySize        int64 `env:"HYPERKIT_MAX_BODY_SIZE" envDefault:"33554432"`

	// StaticMaxAge is the browser cache lifetime of StaticRoute files. Zero or
	// less disables caching.
	StaticMaxAge time.Duration `env:"HYPERKIT_STATIC_MAX_AGE" envDefault:"1h"`
}

// DefaultConfig returns the settings used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		Title:              "Hyperkit page",
		Canonical:          true,
		DefaultHdrs:        true,
		KeyFile:            ".sesskey",
		Sessions:           true,
		SessionCookie:      "session_",
		SessionMaxAge:      365 * 24 * time.Hour,
		SessionPath:        "/",
		SessionSameSite:    "lax",
		MaxMultipartMemory: binder.DefaultMaxMemory,
		MaxBodySize:        32 << 20,
		StaticMaxAge:       time.Hour,
	}
}

// LoadConfig reads Config from the environment (and a .env file when present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GetKey returns key when set. Otherwise it returns the content of fname,
// creating the file with a fresh random key when it does not exist yet.
func GetKey(key, fname string) (string, error) {
	if key != "" {
		return key, nil
	}
	if fname == "" {
		return "", ErrNoSessionKey
	}

	data, err := os.ReadFile(fname)
	switch {
	case err == nil:
		if k := strings.TrimSpace(string(data)); k != "" {
			return k, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %w", ErrNoSessionKey, err)
	}

	key = uuid.NewString()
	if err := os.WriteFile(fname, []byte(key), 0o600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSessionKey, err)
	}
	return key, nil
}
