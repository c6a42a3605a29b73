// Package canvas holds the drawing surface: a fixed-size raster that
// captures pointer strokes and hands out grayscale snapshots for
// recognition.
package canvas

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

const (
	Width       = 400
	Height      = 400
	StrokeWidth = 18.0

	// inkThreshold separates foreground from background when a snapshot is
	// reduced to a character grid.
	inkThreshold = 128
)

var (
	background = color.White
	ink        = color.Black
)

// Surface is a single-owner raster. It is not safe for concurrent use.
type Surface struct {
	dc      *gg.Context
	drawing bool
	lastX   float64
	lastY   float64
}

// New returns a blank surface.
func New() *Surface {
	dc := gg.NewContext(Width, Height)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.SetLineWidth(StrokeWidth)
	s := &Surface{dc: dc}
	s.Clear()
	return s
}

// BeginStroke starts a stroke at (x, y).
func (s *Surface) BeginStroke(x, y float64) {
	s.drawing = true
	s.lastX, s.lastY = x, y
}

// ExtendStroke draws a segment from the previous point to (x, y). It is a
// no-op and returns false when no stroke is active.
func (s *Surface) ExtendStroke(x, y float64) bool {
	if !s.drawing {
		return false
	}
	s.dc.SetColor(ink)
	s.dc.DrawLine(s.lastX, s.lastY, x, y)
	s.dc.Stroke()
	s.lastX, s.lastY = x, y
	return true
}

// EndStroke finishes the active stroke, if any.
func (s *Surface) EndStroke() {
	s.drawing = false
}

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool { return s.drawing }

// Clear resets the raster to the background and drops any active stroke.
func (s *Surface) Clear() {
	s.dc.ClearPath()
	s.dc.SetColor(background)
	s.dc.Clear()
	s.drawing = false
}

// Snapshot returns a detached grayscale copy of the raster.
func (s *Surface) Snapshot() *image.Gray {
	src := s.dc.Image()
	b := src.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	return out
}

// HasInk reports whether img contains any non-background pixel.
func HasInk(img *image.Gray) bool {
	if img == nil {
		return false
	}
	for _, p := range img.Pix {
		if p < 0xff {
			return true
		}
	}
	return false
}

// Cells reduces img to a cols×rows grid; a cell is true when any pixel in
// its region is dark enough to count as ink.
func Cells(img *image.Gray, cols, rows int) [][]bool {
	cols, rows = max(cols, 0), max(rows, 0)
	grid := make([][]bool, rows)
	for r := range grid {
		grid[r] = make([]bool, cols)
	}
	if img == nil || cols <= 0 || rows <= 0 {
		return grid
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for r := 0; r < rows; r++ {
		y0, y1 := b.Min.Y+r*h/rows, b.Min.Y+(r+1)*h/rows
		for c := 0; c < cols; c++ {
			x0, x1 := b.Min.X+c*w/cols, b.Min.X+(c+1)*w/cols
			grid[r][c] = regionHasInk(img, x0, y0, x1, y1)
		}
	}
	return grid
}

func regionHasInk(img *image.Gray, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if img.GrayAt(x, y).Y < inkThreshold {
				return true
			}
		}
	}
	return false
}
