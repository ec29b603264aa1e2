package lineament

import (
	"math"
	"math/rand"
	"testing"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// rampGrid builds a projected unit-cell grid from fill.
func rampGrid(t *testing.T, width, height int, fill func(col, row int) float64) *raster.Grid {
	t.Helper()
	values := make([]float64, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			values[row*width+col] = fill(col, row)
		}
	}
	g, err := raster.NewGrid(width, height, values, nil, raster.GeoRef{
		OriginY:    float64(height),
		CellWidth:  1,
		CellHeight: 1,
	})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

// noiseGrid is a reproducible rough surface.
func noiseGrid(t *testing.T, width, height int, seed int64) *raster.Grid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	return rampGrid(t, width, height, func(col, row int) float64 {
		return rng.Float64() * 100
	})
}

// magnitudeField builds a field whose magnitudes are 1..width*height in
// row-major order and whose orientation is taken from orient.
func magnitudeField(width, height int, orient func(i int) float64) *Field {
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
	for i := 0; i < n; i++ {
		f.Magnitude[i] = float64(i + 1)
		f.Valid[i] = true
		if orient != nil {
			f.Orientation[i] = orient(i)
		}
	}
	return f
}

func unitMetrics(height int) *raster.Metrics {
	m := &raster.Metrics{CellSize: 1, RowArea: make([]float64, height)}
	for i := range m.RowArea {
		m.RowArea[i] = 1
	}
	return m
}

// axialDiff is the separation of two strikes on the half circle.
func axialDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, 180-d)
}
