package handler

import (
	"log/slog"
	"net/http"

	"github.com/josplay/checkpoint/internal/catalog"
	"github.com/josplay/checkpoint/internal/store"
)

// ProgressHandler serves the public, read-only progress views.
type ProgressHandler struct {
	users       *store.UserStore
	completions *store.CompletionStore
	catalog     *catalog.Catalog
	logger      *slog.Logger
}

func NewProgressHandler(us *store.UserStore, cs *store.CompletionStore, cat *catalog.Catalog, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		users:       us,
		completions: cs,
		catalog:     cat,
		logger:      logger,
	}
}

// Progress returns a user's completed achievement ids. No auth required;
// this is what viewer-facing pages poll.
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := h.users.GetByUsername(username)
	if err != nil {
		h.logger.Error("progress user lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	ids, err := h.completions.CompletedIDs(user.ID)
	if err != nil {
		h.logger.Error("progress completions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username":      user.Username,
		"completed_ids": ids,
		"total":         h.catalog.TotalAchievements(),
		"last_updated":  user.UpdatedAt,
	})
}
