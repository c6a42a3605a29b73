package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/glyphtrace/internal/canvas"
	"github.com/jask/glyphtrace/internal/catalog"
	"github.com/jask/glyphtrace/internal/recognition"
)

type stubLoader struct {
	model recognition.Classifier
	err   error
	calls int
}

func (l *stubLoader) Load(_ context.Context, _ string) (recognition.Classifier, error) {
	l.calls++
	return l.model, l.err
}

func fixedDraws(vals ...float64) *PlaceholderPolicy {
	i := 0
	return &PlaceholderPolicy{Draw: func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}}
}

func peakModel(t *testing.T, peak int) *recognition.DenseModel {
	t.Helper()
	weights := make([][]float64, recognition.InputSize*recognition.InputSize)
	for i := range weights {
		weights[i] = make([]float64, recognition.NumClasses)
	}
	bias := make([]float64, recognition.NumClasses)
	bias[peak] = 10
	m, err := recognition.NewDenseModel(recognition.InputShape(),
		recognition.DenseLayer{Weights: weights, Bias: bias, Activation: "softmax"})
	require.NoError(t, err)
	return m
}

func mustDispatch(t *testing.T, r *Router, cmds ...Command) Outcome {
	t.Helper()
	var out Outcome
	for _, c := range cmds {
		var err error
		out, err = r.Dispatch(context.Background(), c)
		require.NoError(t, err, "%T", c)
	}
	return out
}

func drawStroke(t *testing.T, r *Router) {
	t.Helper()
	mustDispatch(t, r, BeginStroke{X: 200, Y: 60}, ExtendStroke{X: 200, Y: 340}, EndStroke{})
}

func TestSelectGameStartsAtFirstItem(t *testing.T) {
	cat := catalog.Default()
	r := NewRouter(cat, WithPolicy(fixedDraws(0.5)))
	for _, g := range cat.Games() {
		_, err := r.SelectGame(g.ID)
		require.NoError(t, err)
		s := r.Session()
		require.Equal(t, ScreenGame, r.Screen())
		require.Equal(t, len(g.Items), s.Len())
		require.Equal(t, 0, s.Index())
		require.Equal(t, 0, s.Score())
		require.Empty(t, s.Feedback())
		require.False(t, canvas.HasInk(s.Snapshot()))

		_, err = r.GoBack()
		require.NoError(t, err)
		require.Nil(t, r.Session())
		require.Equal(t, ScreenSelect, r.Screen())
	}
}

func TestSelectUnknownGameStaysOnSelection(t *testing.T) {
	r := NewRouter(catalog.Default())
	_, err := r.Dispatch(context.Background(), SelectGame{ID: "numbr-trace"})

	var ue *catalog.UnknownGameError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "number-trace", ue.Suggestion)
	require.Equal(t, ScreenSelect, r.Screen())
	require.Nil(t, r.Session())
}

func TestMisroutedCommands(t *testing.T) {
	r := NewRouter(catalog.Default())
	for _, c := range []Command{Back{}, BeginStroke{}, ExtendStroke{}, EndStroke{}, Clear{}, Check{}, Advance{}, Retreat{}} {
		_, err := r.Dispatch(context.Background(), c)
		require.ErrorIs(t, err, ErrNoActiveSession, "%T", c)
	}

	mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	_, err := r.Dispatch(context.Background(), SelectGame{ID: "number-trace"})
	require.ErrorIs(t, err, ErrGameInProgress)
	require.Equal(t, "letter-trace", r.Session().Game().ID)
}

func TestAdvanceRetreatClamp(t *testing.T) {
	r := NewRouter(catalog.Default())
	mustDispatch(t, r, SelectGame{ID: "number-trace"})
	s := r.Session()

	require.False(t, mustDispatch(t, r, Retreat{}).Moved)
	require.Equal(t, 0, s.Index())

	for i := 1; i < s.Len(); i++ {
		require.True(t, mustDispatch(t, r, Advance{}).Moved)
		require.Equal(t, i, s.Index())
	}
	require.True(t, s.Complete())
	require.False(t, mustDispatch(t, r, Advance{}).Moved)
	require.Equal(t, s.Len()-1, s.Index())

	require.True(t, mustDispatch(t, r, Retreat{}).Moved)
	require.Equal(t, s.Len()-2, s.Index())
	require.False(t, s.Complete())
}

func TestIndexChangeClearsSurfaceAndFeedback(t *testing.T) {
	r := NewRouter(catalog.Default(), WithPolicy(fixedDraws(0.9)))
	mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	s := r.Session()

	drawStroke(t, r)
	mustDispatch(t, r, Check{})
	require.NotEmpty(t, s.Feedback())
	mustDispatch(t, r, Advance{})
	require.False(t, canvas.HasInk(s.Snapshot()))
	require.Empty(t, s.Feedback())

	drawStroke(t, r)
	mustDispatch(t, r, Retreat{})
	require.False(t, canvas.HasInk(s.Snapshot()))
}

func TestClearWipesSurface(t *testing.T) {
	r := NewRouter(catalog.Default())
	mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	drawStroke(t, r)
	require.True(t, canvas.HasInk(r.Session().Snapshot()))
	mustDispatch(t, r, Clear{})
	require.False(t, canvas.HasInk(r.Session().Snapshot()))
}

func TestPlaceholderPolicyDraws(t *testing.T) {
	tests := []struct {
		name    string
		draw    float64
		success bool
		points  int
	}{
		{"half", 0.5, true, 50},
		{"low", 0.1, false, 0},
		{"threshold", 0.3, false, 0},
		{"high", 0.994, true, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(catalog.Default(), WithPolicy(fixedDraws(tt.draw)))
			mustDispatch(t, r, SelectGame{ID: "letter-trace"})
			drawStroke(t, r)

			out := mustDispatch(t, r, Check{})
			require.Equal(t, tt.success, out.Check.Success)
			require.Equal(t, tt.points, out.Check.Points)
			require.Equal(t, PolicyPlaceholder, out.Check.Policy)
			require.Equal(t, tt.points, r.Session().Score())
			require.Equal(t, out.Check.Feedback, r.Session().Feedback())
		})
	}
}

func TestSeededPlaceholderIsDeterministic(t *testing.T) {
	a, b := NewPlaceholderPolicy(42), NewPlaceholderPolicy(42)
	for range 20 {
		u := a.Draw()
		require.Equal(t, u, b.Draw())
		require.GreaterOrEqual(t, u, 0.0)
		require.Less(t, u, 1.0)
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	r := NewRouter(catalog.Default(), WithPolicy(NewPlaceholderPolicy(7)))
	mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	s := r.Session()

	prev := 0
	for i := range 60 {
		drawStroke(t, r)
		mustDispatch(t, r, Check{})
		require.GreaterOrEqual(t, s.Score(), prev)
		prev = s.Score()
		if i%3 == 0 {
			mustDispatch(t, r, Advance{})
		}
	}
	require.Equal(t, 60, s.Checks())
}

func TestBlankCanvasIsNotJudged(t *testing.T) {
	p := &PlaceholderPolicy{Draw: func() float64 {
		t.Fatal("policy consulted for a blank canvas")
		return 0
	}}
	r := NewRouter(catalog.Default(), WithPolicy(p))
	mustDispatch(t, r, SelectGame{ID: "letter-trace"})

	out := mustDispatch(t, r, Check{})
	require.Equal(t, blankFeedback, out.Check.Feedback)
	require.Empty(t, out.Check.Policy)
	require.Equal(t, 0, r.Session().Score())
	require.Equal(t, 0, r.Session().Checks())
}

func TestLetterTraceNeedsNoFetch(t *testing.T) {
	loader := &stubLoader{}
	r := NewRouter(catalog.Default())

	out := mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	require.Nil(t, out.Load)
	require.False(t, r.Session().Loading())
	_, declared := r.Session().ModelState()
	require.False(t, declared)
	require.Zero(t, loader.calls)
}

func TestNumberTraceFallsBackWhenLoadFails(t *testing.T) {
	loader := &stubLoader{err: &recognition.ModelLoadError{
		URI: "mnist-dense/model.json", Kind: recognition.KindFetch, Err: errors.New("connection refused"),
	}}
	r := NewRouter(catalog.Default(), WithPolicy(fixedDraws(0.5)))

	out := mustDispatch(t, r, SelectGame{ID: "number-trace"})
	require.NotNil(t, out.Load)
	require.Equal(t, "mnist-dense/model.json", out.Load.Ref)
	s := r.Session()
	require.True(t, s.Loading())

	// still usable while pending
	drawStroke(t, r)
	pending := mustDispatch(t, r, Check{})
	require.Equal(t, PolicyPlaceholder, pending.Check.Policy)

	require.True(t, r.ResolveModel(out.Load.Run(context.Background(), loader)))
	require.Equal(t, 1, loader.calls)
	require.False(t, s.Loading())
	state, declared := s.ModelState()
	require.True(t, declared)
	require.Equal(t, recognition.Failed, state)

	drawStroke(t, r)
	after := mustDispatch(t, r, Check{})
	require.Equal(t, PolicyPlaceholder, after.Check.Policy)
	require.True(t, after.Check.Success)
	require.Equal(t, 100, s.Score())
}

func TestNumberTraceUsesLoadedModel(t *testing.T) {
	loader := &stubLoader{model: peakModel(t, 3)}
	r := NewRouter(catalog.Default(), WithPolicy(&PlaceholderPolicy{Draw: func() float64 {
		t.Fatal("placeholder used despite a loaded model")
		return 0
	}}))

	out := mustDispatch(t, r, SelectGame{ID: "number-trace"})
	require.True(t, r.ResolveModel(out.Load.Run(context.Background(), loader)))
	s := r.Session()

	drawStroke(t, r)
	miss := mustDispatch(t, r, Check{})
	require.False(t, miss.Check.Success)
	require.Equal(t, "3", miss.Check.Label)
	require.Equal(t, "That looks like a 3. Try drawing 0 again.", miss.Check.Feedback)
	require.Equal(t, 0, s.Score())

	mustDispatch(t, r, Advance{}, Advance{}, Advance{})
	require.Equal(t, "3", s.Target())
	drawStroke(t, r)
	hit := mustDispatch(t, r, Check{})
	require.True(t, hit.Check.Success)
	require.Equal(t, PolicyModel, hit.Check.Policy)
	require.Equal(t, 100, hit.Check.Points)
	require.Equal(t, "Great job! That's a 3. +100 points", s.Feedback())
}

func TestShapeMismatchFailsOnlyThatCheck(t *testing.T) {
	weights := [][]float64{{0}, {0}}
	bad, err := recognition.NewDenseModel([]int{1, 2}, recognition.DenseLayer{Weights: weights, Bias: []float64{1}})
	require.NoError(t, err)

	r := NewRouter(catalog.Default())
	out := mustDispatch(t, r, SelectGame{ID: "number-trace"})
	r.ResolveModel(out.Load.Run(context.Background(), &stubLoader{model: bad}))

	drawStroke(t, r)
	res, err := r.Dispatch(context.Background(), Check{})
	var sm *recognition.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	require.NotNil(t, res.Check)
	require.Contains(t, res.Check.Feedback, "shape mismatch")
	require.Equal(t, ScreenGame, r.Screen())
	require.Equal(t, 0, r.Session().Score())
}

func TestStaleLoadResultIgnored(t *testing.T) {
	r := NewRouter(catalog.Default())
	first := mustDispatch(t, r, SelectGame{ID: "number-trace"}).Load
	mustDispatch(t, r, Back{})
	second := mustDispatch(t, r, SelectGame{ID: "number-trace"}).Load
	require.NotEqual(t, first.SessionID, second.SessionID)

	loader := &stubLoader{model: peakModel(t, 0)}
	require.False(t, r.ResolveModel(first.Run(context.Background(), loader)))
	require.True(t, r.Session().Loading())

	require.True(t, r.ResolveModel(second.Run(context.Background(), loader)))
	require.False(t, r.ResolveModel(second.Run(context.Background(), loader)), "resolved twice")
	state, _ := r.Session().ModelState()
	require.Equal(t, recognition.Loaded, state)
}

func TestBackReturnsSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	clock := func() time.Time { return now }

	r := NewRouter(catalog.Default(), WithPolicy(fixedDraws(0.75)), WithClock(clock))
	mustDispatch(t, r, SelectGame{ID: "letter-trace"})
	id := r.Session().ID()

	drawStroke(t, r)
	mustDispatch(t, r, Check{}, Advance{}, Advance{}, Retreat{})
	now = start.Add(90 * time.Second)

	out := mustDispatch(t, r, Back{})
	require.Equal(t, &Summary{
		SessionID: id,
		GameID:    "letter-trace",
		Score:     75,
		Items:     26,
		Furthest:  2,
		Checks:    1,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	}, out.Ended)
}
