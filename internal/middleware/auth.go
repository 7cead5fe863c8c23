package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/josplay/checkpoint/internal/auth"
	"github.com/josplay/checkpoint/internal/store"
)

// Identity resolves the caller's identity, if any, and stores it in the
// request context. The admin session cookie wins over the user JWT cookie.
// Requests without valid credentials pass through anonymous; RequireAuth
// is the gate.
type Identity struct {
	Sessions  *store.SessionStore
	Users     *store.UserStore
	JWTSecret string

	// Configured admin identity. AdminEmail classifies magic-link
	// sessions; AdminUsername names the user row admin completions
	// attach to.
	AdminEmail    string
	AdminUsername string
}

func (id *Identity) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ac, ok := id.fromAdminSession(r); ok {
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
			return
		}
		if ac, ok := id.fromUserToken(r); ok {
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (id *Identity) fromAdminSession(r *http.Request) (auth.AuthContext, bool) {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil || cookie.Value == "" {
		return auth.AuthContext{}, false
	}

	sess, err := id.Sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		return auth.AuthContext{}, false
	}

	// Admin completions attach to the configured admin user row, created
	// on first use.
	user, err := id.Users.FindOrCreate(id.AdminUsername)
	if err != nil {
		return auth.AuthContext{}, false
	}

	return auth.AuthContext{
		UserID:   user.ID,
		Username: user.Username,
		Email:    sess.Email,
		IsAdmin:  strings.EqualFold(sess.Email, id.AdminEmail),
	}, true
}

func (id *Identity) fromUserToken(r *http.Request) (auth.AuthContext, bool) {
	cookie, err := r.Cookie(auth.TokenCookie)
	if err != nil || cookie.Value == "" {
		return auth.AuthContext{}, false
	}

	claims, err := auth.ParseUserToken(id.JWTSecret, cookie.Value)
	if err != nil {
		return auth.AuthContext{}, false
	}

	return auth.AuthContext{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
	}, true
}

// RequireAuth rejects anonymous requests with a generic 401. The body never
// says why authentication failed.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BasicAuth guards an endpoint with configured admin credentials. Both
// fields are compared in constant time and failures are indistinguishable,
// whichever part was wrong.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username == "" || password == "" {
				// Endpoint disabled until credentials are configured.
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			gotUser, gotPass, ok := r.BasicAuth()
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(gotUser), []byte(username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(gotPass), []byte(password)) == 1
			if !userOK || !passOK {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
