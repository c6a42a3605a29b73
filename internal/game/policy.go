package game

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/jask/glyphtrace/internal/recognition"
)

// Policy names which scorer produced a CheckResult.
const (
	PolicyModel       = "model"
	PolicyPlaceholder = "placeholder"
)

const placeholderThreshold = 0.3

// Verdict is a policy's judgement of one drawing.
type Verdict struct {
	Success    bool
	Points     int
	Label      string
	Confidence float64
	Feedback   string
}

// Policy scores a drawing against a target item.
type Policy interface {
	Name() string
	Judge(ctx context.Context, target string, snapshot *image.Gray) (Verdict, error)
}

// PlaceholderPolicy is the randomized stand-in used when no classifier is
// available. It does not look at the drawing: a uniform draw u in [0,1)
// succeeds when u > 0.3 and is worth round(u*100) points.
type PlaceholderPolicy struct {
	Draw func() float64
}

// NewPlaceholderPolicy returns a placeholder seeded with seed. A zero seed
// picks a random one.
func NewPlaceholderPolicy(seed uint64) *PlaceholderPolicy {
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &PlaceholderPolicy{Draw: r.Float64}
}

func (p *PlaceholderPolicy) Name() string { return PolicyPlaceholder }

func (p *PlaceholderPolicy) Judge(_ context.Context, target string, _ *image.Gray) (Verdict, error) {
	u := p.Draw()
	if u > placeholderThreshold {
		pts := points(u)
		return Verdict{
			Success:    true,
			Points:     pts,
			Label:      target,
			Confidence: u,
			Feedback:   fmt.Sprintf("Nice %s! +%d points", target, pts),
		}, nil
	}
	return Verdict{Confidence: u, Feedback: fmt.Sprintf("Not quite a %s. Try again!", target)}, nil
}

// ModelPolicy scores drawings with a loaded classifier.
type ModelPolicy struct {
	Classifier recognition.Classifier
}

func (p ModelPolicy) Name() string { return PolicyModel }

func (p ModelPolicy) Judge(ctx context.Context, target string, snapshot *image.Gray) (Verdict, error) {
	res, err := recognition.Recognize(ctx, p.Classifier, snapshot)
	if err != nil {
		return Verdict{}, err
	}
	v := Verdict{Label: res.Label, Confidence: res.Confidence}
	if res.Label == target {
		v.Success = true
		v.Points = points(res.Confidence)
		v.Feedback = fmt.Sprintf("Great job! That's a %s. +%d points", target, v.Points)
		return v, nil
	}
	v.Feedback = fmt.Sprintf("That looks like a %s. Try drawing %s again.", res.Label, target)
	return v, nil
}

func points(v float64) int {
	return int(math.Round(v * 100))
}
