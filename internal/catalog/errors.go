package catalog

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how different a suggestion may be from the input.
const maxSuggestDistance = 3

// UnknownGameError is returned when a game id is not in the catalog.
type UnknownGameError struct {
	ID         string
	Suggestion string
}

func (e *UnknownGameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown game %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown game %q", e.ID)
}

func (c *Catalog) closest(id string) string {
	needle := strings.ToLower(strings.TrimSpace(id))
	if needle == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, g := range c.games {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(g.ID))
		if d < bestDist {
			best, bestDist = g.ID, d
		}
	}
	return best
}
