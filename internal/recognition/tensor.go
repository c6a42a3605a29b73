package recognition

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Tensor is a dense float64 buffer with a shape. Tensors come from a pool;
// callers must Release them when done.
type Tensor struct {
	shape    []int
	data     []float64
	released bool
}

var (
	tensorPool = sync.Pool{New: func() any { return new(Tensor) }}

	// liveTensors counts acquired tensors that have not been released.
	liveTensors atomic.Int64
)

// NewTensor acquires a zeroed tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	t := tensorPool.Get().(*Tensor)
	if cap(t.data) < n {
		t.data = make([]float64, n)
	} else {
		t.data = t.data[:n]
		clear(t.data)
	}
	t.shape = append(t.shape[:0], shape...)
	t.released = false
	liveTensors.Add(1)
	return t
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int { return slices.Clone(t.shape) }

// Data exposes the backing buffer in row-major (NHWC) order.
func (t *Tensor) Data() []float64 { return t.data }

// Len is the number of elements.
func (t *Tensor) Len() int { return len(t.data) }

// Release returns the tensor to the pool. Releasing twice is a no-op.
func (t *Tensor) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	liveTensors.Add(-1)
	tensorPool.Put(t)
}
