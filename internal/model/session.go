package model

import "time"

// MagicLink is a single-use login token for the admin magic-link flow.
// Only the SHA-256 hash of the token is stored; the raw token travels once,
// embedded in the emailed link.
type MagicLink struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Session is an active admin session created after magic-link verification.
// The client holds the raw token in a cookie; only the hash is stored.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
