package session

import (
	"net/http"
	"time"
)

// Config holds session cookie configuration.
type Config struct {
	CookieName string
	MaxAge     time.Duration
	Path       string
	Domain     string
	SameSite   http.SameSite
	HTTPSOnly  bool
}

// defaultConfig returns default configuration.
func defaultConfig() Config {
	return Config{
		CookieName: "session_",
		MaxAge:     365 * 24 * time.Hour,
		Path:       "/",
		SameSite:   http.SameSiteLaxMode,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Config)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.CookieName = name
		}
	}
}

// WithMaxAge sets how long the browser keeps the session cookie.
func WithMaxAge(d time.Duration) Option {
	return func(c *Config) {
		c.MaxAge = d
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.Path = path
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(c *Config) {
		c.Domain = domain
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(s http.SameSite) Option {
	return func(c *Config) {
		c.SameSite = s
	}
}

// WithHTTPSOnly marks the cookie Secure.
func WithHTTPSOnly(on bool) Option {
	return func(c *Config) {
		c.HTTPSOnly = on
	}
}
