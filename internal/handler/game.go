package handler

import (
	"net/http"

	"github.com/josplay/checkpoint/internal/catalog"
)

// GameHandler serves the static achievement catalog.
type GameHandler struct {
	catalog *catalog.Catalog
}

func NewGameHandler(cat *catalog.Catalog) *GameHandler {
	return &GameHandler{catalog: cat}
}

type gameSummary struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Version      string `json:"version,omitempty"`
	Achievements int    `json:"achievements"`
}

// List returns every game with its achievement count.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games := h.catalog.Games()
	out := make([]gameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, gameSummary{
			Slug:         g.Slug,
			Name:         g.Name,
			Version:      g.Version,
			Achievements: g.Total(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": out})
}

// Get returns one game's full catalog entry, categories and achievements
// included.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game := h.catalog.Game(r.PathValue("slug"))
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, game)
}
