package recognition

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Input geometry expected by the digit classifier: one 28×28 single-channel
// sample in NHWC layout.
const (
	InputSize     = 28
	InputChannels = 1
	NumClasses    = 10
)

// InputShape returns the tensor shape produced by Preprocess.
func InputShape() []int {
	return []int{1, InputSize, InputSize, InputChannels}
}

var errEmptySnapshot = errors.New("snapshot is empty")

// Preprocess converts a snapshot into the classifier input tensor:
// grayscale, bilinear resize to 28×28, scale to [0,1], batch of one.
// The caller owns the returned tensor and must Release it.
func Preprocess(img image.Image) (*Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errEmptySnapshot
	}
	gray := toGray(img)

	small := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(small, small.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	t := NewTensor(InputShape()...)
	data := t.Data()
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			data[y*InputSize+x] = float64(small.GrayAt(x, y).Y) / 255
		}
	}
	return t, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
