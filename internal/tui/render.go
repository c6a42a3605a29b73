package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/glyphtrace/internal/canvas"
	"github.com/jask/glyphtrace/internal/game"
	"github.com/jask/glyphtrace/internal/recognition"
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewGame:
		body = a.renderGame()
	case viewHistory:
		body = a.renderHistory()
	default:
		body = a.renderSelect()
	}
	return body
}

func (a *App) renderSelect() string {
	var b strings.Builder
	b.WriteString(headerBarStyle.Render("glyphtrace") + "\n")
	b.WriteString(a.games.View() + "\n")
	b.WriteString(a.renderStatus() + "\n")
	b.WriteString(a.renderHelp(selectKeys{a.keys}))
	return b.String()
}

// renderGame keeps exactly three lines above the canvas border; mouse
// mapping depends on it.
func (a *App) renderGame() string {
	s := a.router.Session()
	if s == nil {
		return a.renderSelect()
	}
	g := s.Game()
	accent := lipgloss.NewStyle().Foreground(accentFor(g.Theme)).Bold(true)

	header := fmt.Sprintf("%s · %d/%d · score %d", g.Name, s.Index()+1, s.Len(), s.Score())
	target := "Draw: " + accent.Render(s.Target())

	lines := []string{
		headerBarStyle.Render(header),
		target,
		a.renderModelState(s),
		canvasStyle.BorderForeground(accentFor(g.Theme)).Render(renderCells(s)),
	}

	switch fb := s.Feedback(); {
	case fb == "":
		lines = append(lines, "")
	case strings.HasPrefix(fb, "Great") || strings.HasPrefix(fb, "Nice"):
		lines = append(lines, successStyle.Render(fb))
	default:
		lines = append(lines, warningStyle.Render(fb))
	}
	if s.Complete() {
		lines = append(lines, accent.Render(fmt.Sprintf("Last item! Final score %d. Press esc to finish.", s.Score())))
	}
	lines = append(lines, a.renderStatus(), a.renderHelp(gameKeys{a.keys}))
	return strings.Join(lines, "\n")
}

func (a *App) renderModelState(s *game.Session) string {
	state, declared := s.ModelState()
	switch {
	case !declared:
		return dimStyle.Render("placeholder scoring")
	case state == recognition.Pending:
		return a.spinner.View() + infoStyle.Render(" loading model, placeholder scoring for now")
	case state == recognition.Loaded:
		return infoStyle.Render("model scoring")
	default:
		return errorStyle.Render("model unavailable, placeholder scoring")
	}
}

func renderCells(s *game.Session) string {
	cells := canvas.Cells(s.Snapshot(), canvasCols, canvasRows)
	rows := make([]string, len(cells))
	for y, row := range cells {
		var b strings.Builder
		for _, on := range row {
			if on {
				b.WriteString("█")
			} else {
				b.WriteByte(' ')
			}
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderHistory() string {
	var b strings.Builder
	b.WriteString(headerBarStyle.Render("glyphtrace · history") + "\n")
	if len(a.recent) == 0 {
		b.WriteString(dimStyle.Render("No games recorded yet.") + "\n")
	}
	for i, r := range a.recent {
		name := r.GameID
		if g, err := a.router.Catalog().Lookup(r.GameID); err == nil {
			name = g.Name
		}
		line := fmt.Sprintf("%s  %-16s %5d pts  %3d checks  %d/%d  %s",
			r.EndedAt.Local().Format("2006-01-02 15:04"), name, r.Score, r.Checks,
			r.Furthest+1, r.Items, r.Duration().Round(time.Second))
		if r.Completed {
			line += successStyle.Render("  ✓")
		}
		if i > 0 && a.recent[i-1].EndedAt.YearDay() != r.EndedAt.YearDay() {
			b.WriteString(rowSepStyle.Render(strings.Repeat("─", 20)) + "\n")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(a.renderStatus() + "\n")
	b.WriteString(a.renderHelp(historyKeys{a.keys}))
	return b.String()
}

func (a *App) renderStatus() string {
	flat := strings.ReplaceAll(a.status, "\n", " ")
	if flat == "" {
		return statusStyle.Render(" ")
	}
	if a.width == 0 {
		return statusBarStyle.Render(flat)
	}
	return statusBarStyle.Width(a.width).Render(flat)
}

func (a *App) renderHelp(k help.KeyMap) string {
	return a.help.View(k)
}
