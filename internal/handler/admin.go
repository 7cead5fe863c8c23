package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/josplay/checkpoint/internal/auth"
	"github.com/josplay/checkpoint/internal/email"
	"github.com/josplay/checkpoint/internal/store"
)

// AdminHandler runs the passwordless magic-link flow for the admin account.
type AdminHandler struct {
	magicLinks  *store.MagicLinkStore
	sessions    *store.SessionStore
	emailClient *email.Client
	baseURL     string
	adminEmail  string
	production  bool
	logger      *slog.Logger
}

func NewAdminHandler(
	mls *store.MagicLinkStore,
	ss *store.SessionStore,
	ec *email.Client,
	baseURL, adminEmail string,
	production bool,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		magicLinks:  mls,
		sessions:    ss,
		emailClient: ec,
		baseURL:     baseURL,
		adminEmail:  adminEmail,
		production:  production,
		logger:      logger,
	}
}

type adminLoginRequest struct {
	Email string `json:"email"`
}

// RequestLogin creates a magic link and emails it. The response is the same
// whether or not the address is the admin's, to prevent probing for it.
func (h *AdminHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	addr := strings.TrimSpace(req.Email)
	if addr == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	// Always report success past this point
	defer writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	if h.adminEmail == "" || !strings.EqualFold(addr, h.adminEmail) {
		return
	}

	raw, _, err := h.magicLinks.Create(h.adminEmail)
	if err != nil {
		h.logger.Error("create magic link", "error", err)
		return
	}

	link := fmt.Sprintf("%s/api/auth/verify?token=%s", strings.TrimRight(h.baseURL, "/"), raw)
	if !h.emailClient.Configured() {
		h.logger.Warn("email delivery not configured, magic link dropped")
		return
	}
	if err := h.emailClient.SendMagicLink(r.Context(), h.adminEmail, link); err != nil {
		// Logged, not surfaced; the caller still sees success.
		h.logger.Error("send magic link", "error", err)
	}
}

// Verify consumes a magic-link token from the emailed URL. Success sets the
// session cookie and lands on the dashboard; failures redirect with an error
// code the frontend can display.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		http.Redirect(w, r, "/verify?error=invalid", http.StatusSeeOther)
		return
	}

	ml, err := h.magicLinks.Consume(raw)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTokenUsed):
			http.Redirect(w, r, "/verify?error=used", http.StatusSeeOther)
		case errors.Is(err, store.ErrTokenExpired):
			http.Redirect(w, r, "/verify?error=expired", http.StatusSeeOther)
		case errors.Is(err, store.ErrTokenInvalid):
			http.Redirect(w, r, "/verify?error=invalid", http.StatusSeeOther)
		default:
			h.logger.Error("consume magic link", "error", err)
			http.Redirect(w, r, "/verify?error=invalid", http.StatusSeeOther)
		}
		return
	}

	sessTok, _, err := h.sessions.Create(ml.Email)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Redirect(w, r, "/verify?error=invalid", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sessTok,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.production,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout deletes the server-side session and clears the cookie. Safe to call
// without a valid session.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.production,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
