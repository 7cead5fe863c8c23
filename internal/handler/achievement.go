package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/josplay/checkpoint/internal/auth"
	"github.com/josplay/checkpoint/internal/catalog"
	"github.com/josplay/checkpoint/internal/store"
	"github.com/josplay/checkpoint/internal/websocket"
)

// AchievementHandler serves the authenticated completion operations.
type AchievementHandler struct {
	completions *store.CompletionStore
	catalog     *catalog.Catalog
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewAchievementHandler(cs *store.CompletionStore, cat *catalog.Catalog, hub *websocket.Hub, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{
		completions: cs,
		catalog:     cat,
		hub:         hub,
		logger:      logger,
	}
}

type toggleRequest struct {
	AchievementID string `json:"achievement_id"`
}

// Toggle flips one achievement for the caller and reports the state the
// store actually landed on.
func (h *AchievementHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.AchievementID == "" {
		writeError(w, http.StatusBadRequest, "achievement_id is required")
		return
	}
	if !h.catalog.HasAchievement(req.AchievementID) {
		writeError(w, http.StatusNotFound, "unknown achievement")
		return
	}

	completed, err := h.completions.Toggle(ac.UserID, req.AchievementID)
	if err != nil {
		h.logger.Error("toggle completion", "error", err, "achievement_id", req.AchievementID)
		writeError(w, http.StatusInternalServerError, "failed to toggle achievement")
		return
	}

	h.hub.Broadcast(websocket.CompletionEvent(
		ac.Username,
		h.catalog.GameForAchievement(req.AchievementID),
		req.AchievementID,
		completed,
	))

	writeJSON(w, http.StatusOK, map[string]any{
		"achievement_id": req.AchievementID,
		"completed":      completed,
	})
}

type syncLocalRequest struct {
	CompletedIDs []string `json:"completed_ids"`
}

// SyncLocal merges completions recorded while logged out into the account.
// The merge only adds; nothing already on the server is removed.
func (h *AchievementHandler) SyncLocal(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req syncLocalRequest
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

	added, err := h.completions.SyncLocal(ac.UserID, known)
	if err != nil {
		h.logger.Error("sync local completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sync achievements")
		return
	}

	if added > 0 {
		h.hub.Broadcast(websocket.SyncEvent(ac.Username, added))
	}

	writeJSON(w, http.StatusOK, map[string]int{"synced": added})
}

// Status returns the caller's full completion map.
func (h *AchievementHandler) Status(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	status, err := h.completions.GetStatus(ac.UserID)
	if err != nil {
		h.logger.Error("completion status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username":     ac.Username,
		"achievements": status,
	})
}
