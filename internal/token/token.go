// Package token generates and hashes the opaque bearer tokens used for
// magic links and admin sessions.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Generate returns a 256-bit cryptographically random token, hex-encoded
// (64 characters, URL-safe).
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the SHA-256 hex digest of a raw token. Hashes are the only
// form persisted, so a database leak never exposes usable tokens.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
