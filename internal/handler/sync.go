package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/josplay/checkpoint/internal/catalog"
	"github.com/josplay/checkpoint/internal/store"
	"github.com/josplay/checkpoint/internal/websocket"
)

// SyncHandler accepts the full completion state pushed by an external tool
// (the save-file reader) and makes the admin's server state match it.
type SyncHandler struct {
	users         *store.UserStore
	completions   *store.CompletionStore
	catalog       *catalog.Catalog
	hub           *websocket.Hub
	adminUsername string
	logger        *slog.Logger
}

func NewSyncHandler(us *store.UserStore, cs *store.CompletionStore, cat *catalog.Catalog, hub *websocket.Hub, adminUsername string, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		users:         us,
		completions:   cs,
		catalog:       cat,
		hub:           hub,
		adminUsername: adminUsername,
		logger:        logger,
	}
}

type bulkSyncRequest struct {
	CompletedIDs []string `json:"completed_ids"`
}

// Sync replaces the admin's completions with the submitted set. Unlike the
// login-time merge, entries absent from the payload are marked incomplete.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req bulkSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	known := make([]string, 0, len(req.CompletedIDs))
	for _, id := range req.CompletedIDs {
		if h.catalog.HasAchievement(id) {
			known = append(known, id)
		}
	}

	user, err := h.users.FindOrCreate(h.adminUsername)
	if err != nil {
		h.logger.Error("sync admin user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := h.completions.BulkReplace(user.ID, known)
	if err != nil {
		h.logger.Error("bulk sync", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sync")
		return
	}

	if result.Added > 0 || result.Removed > 0 {
		h.hub.Broadcast(websocket.SyncEvent(user.Username, result.Added+result.Removed))
	}

	h.logger.Info("bulk sync applied",
		"synced", result.Synced,
		"added", result.Added,
		"removed", result.Removed,
	)

	writeJSON(w, http.StatusOK, result)
}
