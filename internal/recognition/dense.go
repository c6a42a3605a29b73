package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// DenseFormat identifies the JSON model documents DenseModel reads.
const DenseFormat = "glyphtrace-dense/v1"

// DenseLayer is one fully connected layer. Weights are in×out, row-major.
type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"` // "", "linear", "relu" or "softmax"
}

type denseDocument struct {
	Format     string       `json:"format"`
	InputShape []int        `json:"input_shape"`
	Layers     []DenseLayer `json:"layers"`
}

type denseLayer struct {
	w   *mat.Dense
	b   *mat.VecDense
	act string
}

// DenseModel is a feed-forward classifier evaluated with gonum.
type DenseModel struct {
	inputShape []int
	layers     []denseLayer
}

// NewDenseModel validates layer dimensions against inputShape.
func NewDenseModel(inputShape []int, layers ...DenseLayer) (*DenseModel, error) {
	if len(inputShape) == 0 {
		return nil, fmt.Errorf("input shape is required")
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("at least one layer is required")
	}
	width := 1
	for _, d := range inputShape {
		if d <= 0 {
			return nil, fmt.Errorf("invalid input shape %v", inputShape)
		}
		width *= d
	}

	m := &DenseModel{inputShape: slices.Clone(inputShape)}
	for i, l := range layers {
		if len(l.Weights) != width {
			return nil, fmt.Errorf("layer %d: weights have %d rows, want %d", i, len(l.Weights), width)
		}
		out := len(l.Bias)
		if out == 0 {
			return nil, fmt.Errorf("layer %d: bias is empty", i)
		}
		flat := make([]float64, 0, width*out)
		for r, row := range l.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("layer %d: weights row %d has %d columns, want %d", i, r, len(row), out)
			}
			flat = append(flat, row...)
		}
		switch l.Activation {
		case "", "linear", "relu", "softmax":
		default:
			return nil, fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		m.layers = append(m.layers, denseLayer{
			w:   mat.NewDense(width, out, flat),
			b:   mat.NewVecDense(out, slices.Clone(l.Bias)),
			act: l.Activation,
		})
		width = out
	}
	return m, nil
}

// ParseDenseModel decodes a DenseFormat JSON document.
func ParseDenseModel(r io.Reader) (*DenseModel, error) {
	var doc denseDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if doc.Format != DenseFormat {
		return nil, fmt.Errorf("unsupported model format %q", doc.Format)
	}
	return NewDenseModel(doc.InputShape, doc.Layers...)
}

// InputShape implements Classifier.
func (m *DenseModel) InputShape() []int { return slices.Clone(m.inputShape) }

// Predict implements Classifier.
func (m *DenseModel) Predict(ctx context.Context, in *Tensor) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if want := m.inputShape; !slices.Equal(want, in.Shape()) {
		return nil, &ShapeMismatchError{Stage: "input", Want: m.InputShape(), Got: in.Shape()}
	}

	x := mat.NewVecDense(in.Len(), slices.Clone(in.Data()))
	for _, l := range m.layers {
		_, out := l.w.Dims()
		y := mat.NewVecDense(out, nil)
		y.MulVec(l.w.T(), x)
		y.AddVec(y, l.b)
		activate(y, l.act)
		x = y
	}
	return slices.Clone(x.RawVector().Data), nil
}

func activate(v *mat.VecDense, act string) {
	raw := v.RawVector().Data
	switch act {
	case "relu":
		for i, x := range raw {
			if x < 0 {
				raw[i] = 0
			}
		}
	case "softmax":
		peak := slices.Max(raw)
		sum := 0.0
		for i, x := range raw {
			raw[i] = math.Exp(x - peak)
			sum += raw[i]
		}
		for i := range raw {
			raw[i] /= sum
		}
	}
}
