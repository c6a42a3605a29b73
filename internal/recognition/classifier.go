// Package recognition turns canvas snapshots into digit predictions. It owns
// the preprocessing contract with the pretrained classifier, the classifier
// interface itself and the loading of remote models.
package recognition

import (
	"context"
	"image"
	"slices"
	"strconv"
)

// Classifier maps a preprocessed tensor to a probability distribution.
type Classifier interface {
	// InputShape is the exact tensor shape Predict accepts.
	InputShape() []int
	// Predict returns one probability per class.
	Predict(ctx context.Context, in *Tensor) ([]float64, error)
}

// Result is a single recognition outcome.
type Result struct {
	Label      string
	Confidence float64
}

// Recognize runs the full pipeline for one snapshot. Shapes are checked on
// both sides of inference; the input tensor is always released.
func Recognize(ctx context.Context, c Classifier, snapshot image.Image) (Result, error) {
	in, err := Preprocess(snapshot)
	if err != nil {
		return Result{}, err
	}
	defer in.Release()

	if want := c.InputShape(); !slices.Equal(want, in.Shape()) {
		return Result{}, &ShapeMismatchError{Stage: "input", Want: want, Got: in.Shape()}
	}

	probs, err := c.Predict(ctx, in)
	if err != nil {
		return Result{}, err
	}
	if len(probs) != NumClasses {
		return Result{}, &ShapeMismatchError{Stage: "output", Want: []int{1, NumClasses}, Got: []int{1, len(probs)}}
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return Result{Label: strconv.Itoa(best), Confidence: clamp01(probs[best])}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
