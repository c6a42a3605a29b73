package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/glyphtrace/internal/catalog"
	"github.com/jask/glyphtrace/internal/database/repository"
)

// gameItem is one selection-screen row (implements list.Item).
type gameItem struct {
	game catalog.Game
	best *repository.GameBest
}

func (g gameItem) Title() string       { return g.game.Name }
func (g gameItem) Description() string { return g.game.Description }
func (g gameItem) FilterValue() string { return g.game.ID }

type gameItemDelegate struct{}

func (d gameItemDelegate) Height() int  { return 2 }
func (d gameItemDelegate) Spacing() int { return 1 }
func (d gameItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}
func (d gameItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(gameItem)
	if !ok {
		return
	}
	accent := lipgloss.NewStyle().Foreground(accentFor(entry.game.Theme)).Bold(true)
	prefix := "  "
	if index == m.Index() {
		prefix = cursorStyle.Render("> ")
	}
	title := prefix + accent.Render(entry.game.Name)
	if entry.best != nil {
		title += dimStyle.Render(fmt.Sprintf("  best %d · %d plays", entry.best.BestScore, entry.best.Plays))
	}
	mode := "placeholder scoring"
	if entry.game.HasModel() {
		mode = "model scoring"
	}
	desc := fmt.Sprintf("    %s · %d items · %s", entry.game.Description, len(entry.game.Items), mode)
	fmt.Fprintf(w, "%s\n%s", title, dimStyle.Render(desc))
}

func gameItems(cat *catalog.Catalog, best map[string]repository.GameBest) []list.Item {
	games := cat.Games()
	items := make([]list.Item, 0, len(games))
	for _, g := range games {
		it := gameItem{game: g}
		if b, ok := best[g.ID]; ok {
			it.best = &b
		}
		items = append(items, it)
	}
	return items
}
