package lineament

import (
	"math"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// Sobel kernels. Kx responds to change along columns, Ky along rows.
var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Field is the gradient of an elevation grid.
//
// All slices are row-major with the grid's dimensions. Orientation holds the
// strike in [0, 180) for valid cells; entries for invalid cells are zero and
// must not be read.
type Field struct {
	Width       int
	Height      int
	Gx          []float64
	Gy          []float64
	Magnitude   []float64
	Orientation []float64
	Valid       []bool
}

// ComputeGradient convolves the grid with the Sobel kernel pair.
//
// Border policy: windows that extend past the grid edge replicate the edge
// samples (clamped indices). A cell whose 3x3 window touches a no-data cell
// is marked invalid, so invalid input never leaks into magnitude.
func ComputeGradient(g *raster.Grid) *Field {
	width, height := g.Width, g.Height
	n := width * height

	f := &Field{
		Width:       width,
		Height:      height,
		Gx:          make([]float64, n),
		Gy:          make([]float64, n),
		Magnitude:   make([]float64, n),
		Orientation: make([]float64, n),
		Valid:       make([]bool, n),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			ok := true
			for ky := -1; ky <= 1 && ok; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					i := py*width + px
					if !g.IsValid(i) {
						ok = false
						break
					}
					v := g.Values[i]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			if !ok {
				continue
			}

			i := y*width + x
			f.Gx[i] = gx
			f.Gy[i] = gy
			f.Magnitude[i] = math.Hypot(gx, gy)
			f.Orientation[i] = Strike(gx, gy)
			f.Valid[i] = true
		}
	}
	return f
}

// Strike converts a gradient vector into a lineament strike in [0, 180).
//
// The gradient angle atan2(gy, gx) is normalized to [0, 360), reduced to the
// half circle and rotated by 90°.
func Strike(gx, gy float64) float64 {
	theta := math.Atan2(gy, gx) * 180 / math.Pi
	theta = math.Mod(theta+360, 360)
	half := math.Mod(theta, 180)
	s := math.Mod(half+90, 180)
	// rounding can leave a strike a hair below 180; that is the 0° axis
	if s < 0 || s >= 180-1e-9 {
		s = 0
	}
	return s
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
