package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserTokenTTL matches the admin session duration so both identity paths
// expire on the same schedule.
const UserTokenTTL = 7 * 24 * time.Hour

// UserClaims are the JWT claims carried in the user auth cookie.
type UserClaims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueUserToken signs a 7-day HS256 token for a registered user.
func IssueUserToken(secret, userID, username, email string) (string, error) {
	now := time.Now().UTC()
	claims := UserClaims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(UserTokenTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign user token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a token and returns its claims. Invalid,
// tampered, or expired tokens return an error; the caller treats all of
// them as unauthenticated.
func ParseUserToken(secret, raw string) (*UserClaims, error) {
	var claims UserClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse user token: %w", err)
	}
	return &claims, nil
}
