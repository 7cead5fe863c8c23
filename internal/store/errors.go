package store

import "errors"

// Token verification failures. These are user-facing conditions (the
// handler maps them to redirect error codes), never server faults.
var (
	ErrTokenInvalid = errors.New("token not found")
	ErrTokenUsed    = errors.New("token already used")
	ErrTokenExpired = errors.New("token expired")
)
