package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// MagicTokenLength is the length of issued magic-link tokens.
const MagicTokenLength = 50

// MagicToken returns a cryptographically random, URL-safe login token.
// 37 random bytes encode to exactly 50 base64url characters, which keeps
// collision probability negligible without a uniqueness check.
func MagicToken() string {
	b := make([]byte, 37)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes for magic token")
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
