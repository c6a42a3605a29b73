package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Game describes one playable game. Values handed out by a Catalog are
// copies; mutating them does not affect the catalog.
type Game struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Items       []string `toml:"items"`
	Model       string   `toml:"model"` // optional model reference, resolved by the fetcher
	Theme       string   `toml:"theme"`
}

// HasModel reports whether the game declares a recognition model.
func (g Game) HasModel() bool {
	return strings.TrimSpace(g.Model) != ""
}

func (g Game) clone() Game {
	g.Items = slices.Clone(g.Items)
	return g
}

// catalogFile is the top-level TOML structure.
type catalogFile struct {
	Game []Game `toml:"game"`
}

const defaultCatalogTOML = `# glyphtrace game catalog
# Each [[game]] block is one entry on the selection screen, in file order.
# "model" is optional; games without one are scored by the placeholder policy.

[[game]]
id = "number-trace"
name = "Number Trace"
description = "Draw the digits 0 to 9"
items = ["0", "1", "2", "3", "4", "5", "6", "7", "8", "9"]
model = "mnist-dense/model.json"
theme = "ocean"

[[game]]
id = "letter-trace"
name = "Letter Trace"
description = "Draw the letters A to Z"
items = ["A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
         "N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z"]
theme = "forest"
`

// Catalog is the ordered, read-only table of games loaded at startup.
type Catalog struct {
	games []Game
	byID  map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse([]byte(defaultCatalogTOML))
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in table is invalid: %v", err))
	}
	return c
}

// New builds a catalog from games, validating ids and items.
func New(games ...Game) (*Catalog, error) {
	c := &Catalog{
		games: make([]Game, 0, len(games)),
		byID:  make(map[string]int, len(games)),
	}
	for i, g := range games {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" {
			return nil, fmt.Errorf("game[%d]: id is required", i)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("game[%d] %q: duplicate id", i, g.ID)
		}
		if len(g.Items) == 0 {
			return nil, fmt.Errorf("game[%d] %q: items must not be empty", i, g.ID)
		}
		for j, item := range g.Items {
			if strings.TrimSpace(item) == "" {
				return nil, fmt.Errorf("game[%d] %q: item %d is blank", i, g.ID, j)
			}
		}
		if strings.TrimSpace(g.Name) == "" {
			g.Name = g.ID
		}
		g.Model = strings.TrimSpace(g.Model)
		c.byID[g.ID] = len(c.games)
		c.games = append(c.games, g.clone())
	}
	return c, nil
}

// Parse decodes a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Game) == 0 {
		return nil, fmt.Errorf("no games defined in catalog")
	}
	return New(f.Game...)
}

// Load reads the catalog at path. A missing file is created with the
// built-in defaults; an empty path means the built-in table.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultCatalogTOML), 0o644); err != nil {
			return nil, fmt.Errorf("write default catalog: %w", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Len returns the number of games.
func (c *Catalog) Len() int { return len(c.games) }

// Games returns all games in catalog order.
func (c *Catalog) Games() []Game {
	out := make([]Game, len(c.games))
	for i, g := range c.games {
		out[i] = g.clone()
	}
	return out
}

// IDs returns the game ids in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.games))
	for i, g := range c.games {
		out[i] = g.ID
	}
	return out
}

// Lookup finds a game by id. Unknown ids yield *UnknownGameError.
func (c *Catalog) Lookup(id string) (Game, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Game{}, &UnknownGameError{ID: id, Suggestion: c.closest(id)}
	}
	return c.games[idx].clone(), nil
}
