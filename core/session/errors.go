package session

import "errors"

var (
	// ErrNoSecret indicates the manager was created without a secret key.
	ErrNoSecret = errors.New("session secret key is required")

	// ErrKeyDerivation indicates the signing key could not be derived.
	ErrKeyDerivation = errors.New("failed to derive session signing key")
)
