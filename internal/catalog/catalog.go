// Package catalog loads the static per-game achievement definitions.
// Definitions are embedded JSON, parsed once at startup, and read-only
// afterwards; they are the source of truth for totals and display order.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/josplay/checkpoint/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog holds every loaded game, keyed by slug.
type Catalog struct {
	games map[string]*model.Game
	slugs []string

	// achievement id -> owning game slug, for O(1) id validation
	byAchievement map[string]string
}

// Load parses and validates all embedded game files. Problems across files
// are aggregated so a broken catalog reports everything wrong at once.
func Load() (*Catalog, error) {
	return loadFrom(dataFS, "data")
}

func loadFrom(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	c := &Catalog{
		games:         make(map[string]*model.Game),
		byAchievement: make(map[string]string),
	}
	var loadErr error

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			loadErr = multierr.Append(loadErr, fmt.Errorf("read %s: %w", entry.Name(), err))
			continue
		}

		var game model.Game
		if err := json.Unmarshal(raw, &game); err != nil {
			loadErr = multierr.Append(loadErr, fmt.Errorf("parse %s: %w", entry.Name(), err))
			continue
		}
		if err := validate(&game); err != nil {
			loadErr = multierr.Append(loadErr, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		if _, dup := c.games[game.Slug]; dup {
			loadErr = multierr.Append(loadErr, fmt.Errorf("%s: duplicate game slug %q", entry.Name(), game.Slug))
			continue
		}
		c.games[game.Slug] = &game
	}
	if loadErr != nil {
		return nil, loadErr
	}

	for slug, game := range c.games {
		c.slugs = append(c.slugs, slug)
		for _, a := range game.Achievements {
			if owner, dup := c.byAchievement[a.ID]; dup {
				return nil, fmt.Errorf("achievement id %q defined by both %q and %q", a.ID, owner, slug)
			}
			c.byAchievement[a.ID] = slug
		}
	}
	sort.Strings(c.slugs)
	return c, nil
}

func validate(game *model.Game) error {
	var err error
	if game.Slug == "" {
		err = multierr.Append(err, fmt.Errorf("missing slug"))
	}
	if game.Name == "" {
		err = multierr.Append(err, fmt.Errorf("missing name"))
	}

	categories := make(map[string]bool, len(game.Categories))
	for _, cat := range game.Categories {
		categories[cat.ID] = true
	}

	ids := make(map[string]bool, len(game.Achievements))
	for _, a := range game.Achievements {
		if a.ID == "" {
			err = multierr.Append(err, fmt.Errorf("achievement with empty id"))
			continue
		}
		if ids[a.ID] {
			err = multierr.Append(err, fmt.Errorf("duplicate achievement id %q", a.ID))
		}
		ids[a.ID] = true
		if a.Category != "" && !categories[a.Category] {
			err = multierr.Append(err, fmt.Errorf("achievement %q references unknown category %q", a.ID, a.Category))
		}
	}
	for _, a := range game.Achievements {
		for _, pre := range a.Prerequisites {
			if !ids[pre] {
				err = multierr.Append(err, fmt.Errorf("achievement %q references unknown prerequisite %q", a.ID, pre))
			}
		}
	}
	return err
}

// Game returns the catalog entry for a slug, or nil if unknown.
func (c *Catalog) Game(slug string) *model.Game {
	return c.games[slug]
}

// Slugs returns all known game slugs in stable order.
func (c *Catalog) Slugs() []string {
	return c.slugs
}

// Games returns all games in slug order.
func (c *Catalog) Games() []*model.Game {
	games := make([]*model.Game, 0, len(c.slugs))
	for _, slug := range c.slugs {
		games = append(games, c.games[slug])
	}
	return games
}

// HasAchievement reports whether any game defines the given achievement id.
func (c *Catalog) HasAchievement(id string) bool {
	_, ok := c.byAchievement[id]
	return ok
}

// GameForAchievement returns the slug of the game defining the id, or "".
func (c *Catalog) GameForAchievement(id string) string {
	return c.byAchievement[id]
}

// TotalAchievements returns the number of achievements across all games.
func (c *Catalog) TotalAchievements() int {
	total := 0
	for _, game := range c.games {
		total += game.Total()
	}
	return total
}
