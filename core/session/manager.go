package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrymomot/hyperkit/core/cookie"
	"github.com/dmitrymomot/hyperkit/core/logger"
)

const keyInfo = "hyperkit session signing key"

// Manager loads and stores cookie-backed sessions. Values are JSON encoded and
// signed with a key derived from the application secret.
type Manager struct {
	cfg     Config
	cookies *cookie.Manager
	logger  *slog.Logger
}

// NewManager creates a session manager. secret may be any length; the signing
// key is derived from it with HKDF-SHA256.
func NewManager(secret string, log *slog.Logger, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cookies, err := cookie.New([]string{hex.EncodeToString(key)},
		cookie.WithPath(cfg.Path),
		cookie.WithDomain(cfg.Domain),
		cookie.WithSameSite(cfg.SameSite),
		cookie.WithSecure(cfg.HTTPSOnly),
		cookie.WithHTTPOnly(true),
		cookie.WithMaxAge(int(cfg.MaxAge.Seconds())),
	)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{cfg: cfg, cookies: cookies, logger: log}, nil
}

// Load reads the session from the request cookie. A missing, tampered or
// undecodable cookie yields an empty session.
func (m *Manager) Load(r *http.Request) Values {
	raw, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err != nil {
		return Values{}
	}
	values := Values{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		m.logger.WarnContext(r.Context(), "discarding undecodable session cookie",
			logger.Component("session"), logger.Error(err))
		return Values{}
	}
	return values
}

// Save writes values to the session cookie. An empty session deletes the cookie.
func (m *Manager) Save(w http.ResponseWriter, values Values) error {
	if len(values) == 0 {
		m.cookies.Delete(w, m.cfg.CookieName)
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.cookies.SetSigned(w, m.cfg.CookieName, string(data))
}

// Middleware loads the session into the request context and writes it back
// just before the response header is sent, if it changed.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(r.Context(), m.Load(r))
		st := stateFrom(ctx)
		sw := &writer{ResponseWriter: w, commit: func(w http.ResponseWriter) {
			if !st.modified() {
				return
			}
			if err := m.Save(w, st.values); err != nil {
				m.logger.ErrorContext(ctx, "failed to save session",
					logger.Component("session"), logger.Error(err))
			}
		}}
		next.ServeHTTP(sw, r.WithContext(ctx))
		sw.flushCommit()
	})
}
