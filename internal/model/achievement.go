package model

// Achievement is a static, predefined milestone for a game. Definitions are
// loaded from embedded JSON at startup and never mutated at runtime.
type Achievement struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Icon          string   `json:"icon,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Points        int      `json:"points,omitempty"`
	Hidden        bool     `json:"hidden,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Game is one catalog file: a game plus its full achievement list.
type Game struct {
	Slug         string        `json:"slug"`
	Name         string        `json:"name"`
	Version      string        `json:"version,omitempty"`
	Categories   []Category    `json:"categories"`
	Achievements []Achievement `json:"achievements"`
}

// Total returns the number of achievements that count toward completion.
func (g *Game) Total() int {
	return len(g.Achievements)
}
