package auth

// Cookie names shared by the handlers that set them and the middleware
// that reads them.
const (
	// SessionCookie carries the opaque admin session token issued after
	// a magic link is verified.
	SessionCookie = "checkpoint_session"

	// TokenCookie carries the signed JWT issued on user login.
	TokenCookie = "checkpoint_token"
)
