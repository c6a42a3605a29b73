// Package game is the headless interaction core: a Router that switches
// between the selection screen and an active Session, and a closed set of
// commands applied by a single dispatcher.
package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jask/glyphtrace/internal/catalog"
	"github.com/jask/glyphtrace/internal/recognition"
)

var (
	ErrNoActiveSession = errors.New("no game in progress")
	ErrGameInProgress  = errors.New("a game is already in progress")
)

// Screen is the active view.
type Screen int

const (
	ScreenSelect Screen = iota
	ScreenGame
)

func (s Screen) String() string {
	if s == ScreenGame {
		return "game"
	}
	return "select"
}

// ModelLoader fetches a classifier by reference. *recognition.Fetcher
// implements it.
type ModelLoader interface {
	Load(ctx context.Context, ref string) (recognition.Classifier, error)
}

// LoadJob is a model fetch requested by a newly started session. Run it
// off the event loop and hand the result back to Router.ResolveModel.
type LoadJob struct {
	SessionID string
	GameID    string
	Ref       string
}

// LoadResult is the completion of a LoadJob.
type LoadResult struct {
	SessionID string
	Ref       string
	Model     recognition.Classifier
	Err       error
	Elapsed   time.Duration
}

// Run performs the fetch.
func (j LoadJob) Run(ctx context.Context, loader ModelLoader) LoadResult {
	start := time.Now()
	m, err := loader.Load(ctx, j.Ref)
	return LoadResult{SessionID: j.SessionID, Ref: j.Ref, Model: m, Err: err, Elapsed: time.Since(start)}
}

// Router holds the active screen and session.
type Router struct {
	catalog  *catalog.Catalog
	fallback Policy
	now      func() time.Time
	newID    func() string

	screen  Screen
	session *Session
}

// Option configures a Router.
type Option func(*Router)

// WithPolicy sets the policy used when no model is loaded.
func WithPolicy(p Policy) Option {
	return func(r *Router) { r.fallback = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter returns a router on the selection screen.
func NewRouter(cat *catalog.Catalog, opts ...Option) *Router {
	r := &Router{
		catalog: cat,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fallback == nil {
		r.fallback = NewPlaceholderPolicy(0)
	}
	return r
}

func (r *Router) Screen() Screen            { return r.screen }
func (r *Router) Catalog() *catalog.Catalog { return r.catalog }

// Session returns the active session, or nil on the selection screen.
func (r *Router) Session() *Session { return r.session }

// SelectGame starts a session for id. When the game declares a model the
// returned job must be run and its result passed to ResolveModel; games
// without a model return a nil job and are ready immediately.
func (r *Router) SelectGame(id string) (*LoadJob, error) {
	if r.session != nil {
		return nil, ErrGameInProgress
	}
	g, err := r.catalog.Lookup(id)
	if err != nil {
		return nil, err
	}

	s := newSession(r.newID(), g, r.fallback, r.now())
	r.session, r.screen = s, ScreenGame
	log.Info().Str("game", g.ID).Str("session", s.id).Msg("game started")

	if !g.HasModel() {
		return nil, nil
	}
	return &LoadJob{SessionID: s.id, GameID: g.ID, Ref: g.Model}, nil
}

// GoBack discards the active session and returns its summary.
func (r *Router) GoBack() (*Summary, error) {
	if r.session == nil {
		return nil, ErrNoActiveSession
	}
	sum := r.session.summary(r.now())
	r.session, r.screen = nil, ScreenSelect
	log.Info().
		Str("game", sum.GameID).
		Str("session", sum.SessionID).
		Int("score", sum.Score).
		Int("checks", sum.Checks).
		Msg("game ended")
	return &sum, nil
}

// ResolveModel settles the active session's model handle. Results for a
// session that has since been discarded are dropped. A failed load leaves
// the session on the placeholder policy.
func (r *Router) ResolveModel(res LoadResult) bool {
	if r.session == nil || r.session.id != res.SessionID {
		log.Debug().Str("session", res.SessionID).Msg("dropping model result for stale session")
		return false
	}
	if !r.session.resolve(res.Model, res.Err) {
		return false
	}

	state, _ := r.session.ModelState()
	if state == recognition.Loaded {
		log.Info().Str("model", res.Ref).Dur("elapsed", res.Elapsed).Msg("model loaded")
		return true
	}

	err := r.session.handle.Err()
	ev := log.Warn().Err(err).Str("model", res.Ref).Dur("elapsed", res.Elapsed)
	if recognition.LoadKind(err) == recognition.KindTimeout {
		ev.Msg("model fetch timed out, using placeholder policy")
	} else {
		ev.Str("kind", string(recognition.LoadKind(err))).Msg("model load failed, using placeholder policy")
	}
	return true
}
