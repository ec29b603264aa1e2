package association

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// unitGrid is a projected grid of unit cells with its top-left corner at
// (0, height).
func unitGrid(t *testing.T, width, height int) *raster.Grid {
	t.Helper()
	g, err := raster.NewGrid(width, height, make([]float64, width*height), nil, raster.GeoRef{
		OriginY:    float64(height),
		CellWidth:  1,
		CellHeight: 1,
	})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

// fieldFrom builds a gradient field with the given magnitudes.
func fieldFrom(width, height int, magnitude func(col, row int) float64) *lineament.Field {
	n := width * height
	f := &lineament.Field{
		Width:       width,
		Height:      height,
		Gx:          make([]float64, n),
		Gy:          make([]float64, n),
		Magnitude:   make([]float64, n),
		Orientation: make([]float64, n),
		Valid:       make([]bool, n),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			f.Magnitude[i] = magnitude(col, row)
			f.Valid[i] = true
		}
	}
	return f
}

// rectMask sets cells with col in [c0,c1) and row in [r0,r1).
func rectMask(width, height, c0, r0, c1, r1 int) *raster.Mask {
	m := raster.NewMask(width, height)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			m.Bits[row*width+col] = true
		}
	}
	return m
}

// pointAt returns a feature at the centre of (col,row) on g.
func pointAt(g *raster.Grid, id string, col, row int) Feature {
	return Feature{ID: id, Geometry: g.CellCenter(col, row)}
}

func pointFeature(id string, x, y float64) Feature {
	return Feature{ID: id, Geometry: orb.Point{x, y}}
}

func rectPolygon(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}
