package markup

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// UniqueID returns a random, URL-safe identifier usable as an element id.
// It always starts with an underscore so it is a valid CSS selector.
func UniqueID() string {
	id := uuid.New()
	return "_" + base64.RawURLEncoding.EncodeToString(id[:])
}
