package game

import (
	"context"
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/jask/glyphtrace/internal/canvas"
	"github.com/jask/glyphtrace/internal/catalog"
	"github.com/jask/glyphtrace/internal/recognition"
)

const blankFeedback = "Draw something first."

// CheckResult is the outcome of one check of the current drawing.
type CheckResult struct {
	Success    bool
	Points     int
	Feedback   string
	Label      string
	Confidence float64
	Policy     string // PolicyModel, PolicyPlaceholder, or "" when nothing was judged
}

// Summary records a finished session.
type Summary struct {
	SessionID string
	GameID    string
	Score     int
	Items     int
	Furthest  int
	Checks    int
	Completed bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Session is the state of one play-through. It is owned by a Router and
// mutated only through it.
type Session struct {
	id       string
	game     catalog.Game
	index    int
	furthest int
	score    int
	checks   int
	feedback string
	surface  *canvas.Surface
	handle   *recognition.Handle
	fallback Policy
	started  time.Time
}

func newSession(id string, g catalog.Game, fallback Policy, started time.Time) *Session {
	s := &Session{
		id:       id,
		game:     g,
		surface:  canvas.New(),
		fallback: fallback,
		started:  started,
	}
	if g.HasModel() {
		s.handle = recognition.NewHandle(g.Model)
	}
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Game() catalog.Game   { return s.game }
func (s *Session) Index() int           { return s.index }
func (s *Session) Len() int             { return len(s.game.Items) }
func (s *Session) Score() int           { return s.score }
func (s *Session) Checks() int          { return s.checks }
func (s *Session) Feedback() string     { return s.feedback }
func (s *Session) StartedAt() time.Time { return s.started }

// Items returns a copy of the item sequence.
func (s *Session) Items() []string { return slices.Clone(s.game.Items) }

// Target is the item the learner is asked to draw.
func (s *Session) Target() string { return s.game.Items[s.index] }

// Complete reports whether the last item is showing.
func (s *Session) Complete() bool { return s.index == len(s.game.Items)-1 }

// Loading reports whether a declared model is still being fetched.
func (s *Session) Loading() bool {
	return s.handle != nil && s.handle.State() == recognition.Pending
}

// ModelState is the state of the model handle, and false when the game
// declares no model.
func (s *Session) ModelState() (recognition.LoadState, bool) {
	if s.handle == nil {
		return 0, false
	}
	return s.handle.State(), true
}

// Snapshot returns a copy of the drawing surface.
func (s *Session) Snapshot() *image.Gray { return s.surface.Snapshot() }

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool { return s.surface.Drawing() }

// Advance moves to the next item. It is a no-op on the last item.
func (s *Session) Advance() bool {
	if s.index >= len(s.game.Items)-1 {
		return false
	}
	s.moveTo(s.index + 1)
	return true
}

// Retreat moves to the previous item. It is a no-op on the first item.
func (s *Session) Retreat() bool {
	if s.index <= 0 {
		return false
	}
	s.moveTo(s.index - 1)
	return true
}

func (s *Session) moveTo(i int) {
	s.index = i
	s.furthest = max(s.furthest, i)
	s.surface.Clear()
	s.feedback = ""
}

// policy picks the loaded classifier, falling back to the placeholder
// while the model is pending, failed or not configured.
func (s *Session) policy() Policy {
	if s.handle != nil {
		if m, ok := s.handle.Model(); ok {
			return ModelPolicy{Classifier: m}
		}
	}
	return s.fallback
}

// Check judges the current surface.
func (s *Session) Check(ctx context.Context) (CheckResult, error) {
	return s.CheckCurrentDrawing(ctx, s.surface.Snapshot())
}

// CheckCurrentDrawing judges snapshot against the current target and
// updates score and feedback. A blank snapshot is not judged. A policy
// error fails only this check and is reported as feedback.
func (s *Session) CheckCurrentDrawing(ctx context.Context, snapshot *image.Gray) (CheckResult, error) {
	if snapshot == nil || !canvas.HasInk(snapshot) {
		s.feedback = blankFeedback
		return CheckResult{Feedback: blankFeedback}, nil
	}

	p := s.policy()
	v, err := p.Judge(ctx, s.Target(), snapshot)
	if err != nil {
		s.feedback = fmt.Sprintf("Could not check that drawing: %v", err)
		return CheckResult{Feedback: s.feedback, Policy: p.Name()}, fmt.Errorf("check %q: %w", s.Target(), err)
	}

	s.checks++
	if v.Points > 0 {
		s.score += v.Points
	}
	s.feedback = v.Feedback
	return CheckResult{
		Success:    v.Success,
		Points:     max(v.Points, 0),
		Feedback:   v.Feedback,
		Label:      v.Label,
		Confidence: v.Confidence,
		Policy:     p.Name(),
	}, nil
}

func (s *Session) resolve(model recognition.Classifier, err error) bool {
	if s.handle == nil {
		return false
	}
	return s.handle.Resolve(model, err)
}

func (s *Session) summary(ended time.Time) Summary {
	return Summary{
		SessionID: s.id,
		GameID:    s.game.ID,
		Score:     s.score,
		Items:     len(s.game.Items),
		Furthest:  s.furthest,
		Checks:    s.checks,
		Completed: s.furthest == len(s.game.Items)-1,
		StartedAt: s.started,
		EndedAt:   ended,
	}
}
