package raster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Metrics holds the length and area scale of a grid.
//
// Cells of a geographic grid shrink towards the poles, so area is kept per
// row rather than as a single constant. All cells of one row share a
// latitude band and therefore an area.
type Metrics struct {
	// CellSize is the nominal cell edge length in length units (metres for
	// geographic grids). Distances measured in cells are scaled by it.
	CellSize float64 `json:"cell_size"`

	// RowArea[row] is the area of any single cell on that row.
	RowArea []float64 `json:"-"`
}

// Metrics computes the grid's length and area scale.
//
// A positive cellSizeOverride replaces both the nominal length (used for
// distances) and the cell area, which becomes cellSizeOverride². Otherwise
// projected grids use CellWidth and CellWidth*CellHeight, and geographic
// grids use the geodesic width of one cell at the central latitude and the
// geodesic area of each row's cell polygon.
func (g *Grid) Metrics(cellSizeOverride float64) *Metrics {
	m := &Metrics{RowArea: make([]float64, g.Height)}

	if cellSizeOverride > 0 {
		m.CellSize = cellSizeOverride
		for r := range m.RowArea {
			m.RowArea[r] = cellSizeOverride * cellSizeOverride
		}
		return m
	}

	if !g.Ref.Geographic {
		m.CellSize = g.Ref.CellWidth
		a := g.Ref.CellWidth * g.Ref.CellHeight
		for r := range m.RowArea {
			m.RowArea[r] = a
		}
		return m
	}

	c := g.Bound().Center()
	m.CellSize = geo.Distance(
		orb.Point{c[0] - g.Ref.CellWidth/2, c[1]},
		orb.Point{c[0] + g.Ref.CellWidth/2, c[1]},
	)
	for r := range m.RowArea {
		top := g.Ref.OriginY - float64(r)*g.Ref.CellHeight
		cell := orb.Bound{
			Min: orb.Point{g.Ref.OriginX, top - g.Ref.CellHeight},
			Max: orb.Point{g.Ref.OriginX + g.Ref.CellWidth, top},
		}
		m.RowArea[r] = math.Abs(geo.Area(cell.ToPolygon()))
	}
	return m
}

// CellArea returns the area of cell index i on a grid of the given width.
func (m *Metrics) CellArea(i, width int) float64 {
	return m.RowArea[i/width]
}

// MaskArea sums the area of every true cell in mask.
func (m *Metrics) MaskArea(mask *Mask) float64 {
	var total float64
	for i, b := range mask.Bits {
		if b {
			total += m.RowArea[i/mask.Width]
		}
	}
	return total
}
