package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jask/glyphtrace/internal/canvas"
	"github.com/jask/glyphtrace/internal/database/repository"
	"github.com/jask/glyphtrace/internal/game"
	"github.com/jask/glyphtrace/internal/recognition"
	"github.com/jask/glyphtrace/internal/service"
)

// The canvas is drawn below three header lines and a border, one terminal
// cell per 10x20 canvas pixels.
const (
	canvasCols = 40
	canvasRows = 20
	canvasTop  = 4
	canvasLeft = 1
)

var errNoLoader = errors.New("no model loader configured")

// App is the Bubble Tea model. All router mutations happen in Update.
type App struct {
	ctx      context.Context
	router   *game.Router
	services Services
	state    appState
	games    list.Model
	help     help.Model
	keys     keyMap
	spinner  spinner.Model
	best     map[string]repository.GameBest
	recent   []repository.PlayResult
	status   string
	start    string
	width    int
	height   int
}

type Services struct {
	Scoreboard *service.ScoreboardService
	Loader     game.ModelLoader
}

type appState string

const (
	viewSelect  appState = "select"
	viewGame    appState = "game"
	viewHistory appState = "history"
)

// New returns the app on the selection screen. A non-empty startGame is
// selected on Init.
func New(ctx context.Context, router *game.Router, services Services, startGame string) *App {
	games := list.New(gameItems(router.Catalog(), nil), gameItemDelegate{}, 80, 20)
	games.Title = "Choose a game"
	games.Styles.Title = titleStyle
	games.Styles.NoItems = lipgloss.NewStyle()
	games.SetShowStatusBar(false)
	games.SetFilteringEnabled(false)
	games.SetShowHelp(false)
	games.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return &App{
		ctx:      ctx,
		router:   router,
		services: services,
		state:    viewSelect,
		games:    games,
		help:     help.New(),
		keys:     newKeyMap(),
		spinner:  sp,
		best:     map[string]repository.GameBest{},
		start:    startGame,
	}
}

type (
	modelLoadedMsg game.LoadResult
	scoresMsg      struct {
		best   map[string]repository.GameBest
		recent []repository.PlayResult
	}
	recordedMsg struct{ stored bool }
	clearedMsg  int64
	errMsg      struct{ error }
)

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadScores()}
	if a.start != "" {
		cmds = append(cmds, a.selectGame(a.start))
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.games.SetSize(m.Width, max(m.Height-4, 6))
		a.help.Width = m.Width
	case tea.KeyMsg:
		if key.Matches(m, a.keys.Quit) {
			return a, tea.Quit
		}
		switch a.state {
		case viewGame:
			return a.updateGame(m)
		case viewHistory:
			return a.updateHistory(m)
		default:
			return a.updateSelect(m)
		}
	case tea.MouseMsg:
		if a.state == viewGame {
			a.handleMouse(m)
		}
	case spinner.TickMsg:
		if a.loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(m)
			return a, cmd
		}
	case modelLoadedMsg:
		if a.router.ResolveModel(game.LoadResult(m)) {
			if m.Err != nil {
				a.status = "Model unavailable, using placeholder scoring"
			} else {
				a.status = "Model ready"
			}
		}
	case scoresMsg:
		a.best, a.recent = m.best, m.recent
		return a, a.games.SetItems(gameItems(a.router.Catalog(), a.best))
	case recordedMsg:
		if m.stored {
			a.status = "Score saved"
		}
		return a, a.loadScores()
	case clearedMsg:
		a.status = fmt.Sprintf("Cleared %d results", int64(m))
		return a, a.loadScores()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) updateSelect(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Select):
		item, ok := a.games.SelectedItem().(gameItem)
		if !ok {
			return a, nil
		}
		return a, a.selectGame(item.game.ID)
	case key.Matches(m, a.keys.History):
		a.state = viewHistory
		a.status = ""
		return a, a.loadScores()
	}
	var cmd tea.Cmd
	a.games, cmd = a.games.Update(m)
	return a, cmd
}

func (a *App) updateGame(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Check):
		out, err := a.router.Dispatch(a.ctx, game.Check{})
		if err != nil {
			log.Warn().Err(err).Msg("check failed")
		}
		if out.Check != nil && out.Check.Policy != "" {
			log.Debug().
				Str("policy", out.Check.Policy).
				Str("label", out.Check.Label).
				Float64("confidence", out.Check.Confidence).
				Int("points", out.Check.Points).
				Msg("checked drawing")
		}
	case key.Matches(m, a.keys.Clear):
		a.dispatch(game.Clear{})
	case key.Matches(m, a.keys.Next):
		a.dispatch(game.Advance{})
	case key.Matches(m, a.keys.Prev):
		a.dispatch(game.Retreat{})
	case key.Matches(m, a.keys.Back):
		out, err := a.router.Dispatch(a.ctx, game.Back{})
		a.state = viewSelect
		if err != nil || out.Ended == nil {
			return a, nil
		}
		return a, a.recordCmd(*out.Ended)
	}
	return a, nil
}

func (a *App) updateHistory(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Back):
		a.state = viewSelect
		a.status = ""
	case key.Matches(m, a.keys.Wipe):
		return a, a.clearCmd()
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) {
	x, y, inside := toCanvas(m.X, m.Y)
	switch m.Action {
	case tea.MouseActionPress:
		if m.Button == tea.MouseButtonLeft && inside {
			a.dispatch(game.BeginStroke{X: x, Y: y})
		}
	case tea.MouseActionMotion:
		if s := a.router.Session(); s != nil && s.Drawing() {
			a.dispatch(game.ExtendStroke{X: x, Y: y})
		}
	case tea.MouseActionRelease:
		a.dispatch(game.EndStroke{})
	}
}

// toCanvas maps a terminal cell to the centre of its canvas region,
// clamping points outside the canvas to its edge.
func toCanvas(col, row int) (x, y float64, inside bool) {
	col -= canvasLeft
	row -= canvasTop
	inside = col >= 0 && col < canvasCols && row >= 0 && row < canvasRows
	col = min(max(col, 0), canvasCols-1)
	row = min(max(row, 0), canvasRows-1)
	x = (float64(col) + 0.5) * canvas.Width / canvasCols
	y = (float64(row) + 0.5) * canvas.Height / canvasRows
	return x, y, inside
}

func (a *App) dispatch(cmd game.Command) {
	if _, err := a.router.Dispatch(a.ctx, cmd); err != nil {
		log.Debug().Err(err).Msgf("%T ignored", cmd)
	}
}

func (a *App) loading() bool {
	s := a.router.Session()
	return s != nil && s.Loading()
}

// commands

func (a *App) selectGame(id string) tea.Cmd {
	out, err := a.router.Dispatch(a.ctx, game.SelectGame{ID: id})
	if err != nil {
		a.status = err.Error()
		return nil
	}
	a.state = viewGame
	a.status = ""
	if out.Load == nil {
		return nil
	}
	return tea.Batch(a.spinner.Tick, a.loadModelCmd(*out.Load))
}

func (a *App) loadModelCmd(job game.LoadJob) tea.Cmd {
	return func() tea.Msg {
		if a.services.Loader == nil {
			return modelLoadedMsg(game.LoadResult{
				SessionID: job.SessionID,
				Ref:       job.Ref,
				Err:       &recognition.ModelLoadError{URI: job.Ref, Kind: recognition.KindFetch, Err: errNoLoader},
			})
		}
		return modelLoadedMsg(job.Run(a.ctx, a.services.Loader))
	}
}

func (a *App) loadScores() tea.Cmd {
	return func() tea.Msg {
		best, err := a.services.Scoreboard.Best(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		recent, err := a.services.Scoreboard.Recent(a.ctx, "", 0)
		if err != nil {
			return errMsg{err}
		}
		return scoresMsg{best: best, recent: recent}
	}
}

func (a *App) recordCmd(sum game.Summary) tea.Cmd {
	return func() tea.Msg {
		stored, err := a.services.Scoreboard.Record(a.ctx, sum)
		if err != nil {
			return errMsg{err}
		}
		return recordedMsg{stored: stored}
	}
}

func (a *App) clearCmd() tea.Cmd {
	return func() tea.Msg {
		n, err := a.services.Scoreboard.Clear(a.ctx, "")
		if err != nil {
			return errMsg{err}
		}
		return clearedMsg(n)
	}
}
