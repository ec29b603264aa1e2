package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

var (
	// ErrShape is returned when grid dimensions and sample counts disagree.
	ErrShape = errors.New("raster: grid shape mismatch")

	// ErrNonFinite is returned when a valid cell holds NaN or Inf.
	ErrNonFinite = errors.New("raster: non-finite value in valid cell")

	// ErrInvalidGeometry is returned for malformed vector input.
	ErrInvalidGeometry = errors.New("raster: invalid geometry")
)

// GeoRef anchors a grid in world coordinates.
type GeoRef struct {
	// OriginX is the X (easting or longitude) of the top-left corner.
	OriginX float64 `json:"origin_x"`

	// OriginY is the Y (northing or latitude) of the top-left corner.
	OriginY float64 `json:"origin_y"`

	// CellWidth is the cell extent along X in CRS units. Must be > 0.
	CellWidth float64 `json:"cell_width"`

	// CellHeight is the cell extent along Y in CRS units. Must be > 0.
	CellHeight float64 `json:"cell_height"`

	// CRS is an informational coordinate reference label (e.g. "EPSG:32643").
	CRS string `json:"crs,omitempty"`

	// Geographic is true when coordinates are longitude/latitude degrees.
	// Cell areas and lengths are then computed geodesically.
	Geographic bool `json:"geographic"`
}

// Grid is an elevation raster with its georeference.
//
// Values is row-major, len(Values) == Width*Height. Valid may be nil, in
// which case every cell holds data.
type Grid struct {
	Width  int
	Height int
	Values []float64
	Valid  []bool
	Ref    GeoRef
}

// NewGrid wraps values into a grid. The slices are not copied.
func NewGrid(width, height int, values []float64, valid []bool, ref GeoRef) (*Grid, error) {
	g := &Grid{Width: width, Height: height, Values: values, Valid: valid, Ref: ref}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks shape, georeference and finiteness of valid samples.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrShape, g.Width, g.Height)
	}
	n := g.Width * g.Height
	if len(g.Values) != n {
		return fmt.Errorf("%w: %d values for %dx%d grid", ErrShape, len(g.Values), g.Width, g.Height)
	}
	if g.Valid != nil && len(g.Valid) != n {
		return fmt.Errorf("%w: %d validity flags for %dx%d grid", ErrShape, len(g.Valid), g.Width, g.Height)
	}
	if !(g.Ref.CellWidth > 0) || !(g.Ref.CellHeight > 0) {
		return fmt.Errorf("%w: cell size %gx%g must be positive", ErrShape, g.Ref.CellWidth, g.Ref.CellHeight)
	}
	for i, v := range g.Values {
		if g.Valid != nil && !g.Valid[i] {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: cell (%d,%d)", ErrNonFinite, i%g.Width, i/g.Width)
		}
	}
	return nil
}

// Index returns the row-major index of (col, row).
func (g *Grid) Index(col, row int) int {
	return row*g.Width + col
}

// InBounds reports whether (col, row) lies on the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.Width && row >= 0 && row < g.Height
}

// IsValid reports whether cell i holds data.
func (g *Grid) IsValid(i int) bool {
	return g.Valid == nil || g.Valid[i]
}

// CellCenter returns the world coordinate of the centre of (col, row).
func (g *Grid) CellCenter(col, row int) orb.Point {
	return orb.Point{
		g.Ref.OriginX + (float64(col)+0.5)*g.Ref.CellWidth,
		g.Ref.OriginY - (float64(row)+0.5)*g.Ref.CellHeight,
	}
}

// CellAt returns the cell containing p (nearest-cell sampling).
// ok is false when p lies outside the grid extent.
func (g *Grid) CellAt(p orb.Point) (col, row int, ok bool) {
	fx := (p[0] - g.Ref.OriginX) / g.Ref.CellWidth
	fy := (g.Ref.OriginY - p[1]) / g.Ref.CellHeight
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, 0, false
	}
	col = int(math.Floor(fx))
	row = int(math.Floor(fy))
	if !g.InBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

// Bound returns the world extent of the grid.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.Ref.OriginX, g.Ref.OriginY - float64(g.Height)*g.Ref.CellHeight},
		Max: orb.Point{g.Ref.OriginX + float64(g.Width)*g.Ref.CellWidth, g.Ref.OriginY},
	}
}

// Planar returns a projection from grid world coordinates into planar
// length units. Projected grids are returned unchanged; geographic grids
// use a local equirectangular projection scaled at the grid's central
// latitude so one unit equals one metre.
func (g *Grid) Planar() orb.Projection {
	if !g.Ref.Geographic {
		return func(p orb.Point) orb.Point { return p }
	}
	c := g.Bound().Center()
	kx := geo.Distance(orb.Point{c[0] - 0.5, c[1]}, orb.Point{c[0] + 0.5, c[1]})
	ky := geo.Distance(orb.Point{c[0], c[1] - 0.5}, orb.Point{c[0], c[1] + 0.5})
	return func(p orb.Point) orb.Point {
		return orb.Point{p[0] * kx, p[1] * ky}
	}
}

// Mask is a boolean raster over a grid lattice.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// ValidMask returns the grid's data mask as a Mask. A grid without a
// validity slice yields an all-true mask.
func (g *Grid) ValidMask() *Mask {
	m := NewMask(g.Width, g.Height)
	for i := range m.Bits {
		m.Bits[i] = g.IsValid(i)
	}
	return m
}

// Get reports the mask value at (col, row); out-of-bounds cells are false.
func (m *Mask) Get(col, row int) bool {
	if col < 0 || col >= m.Width || row < 0 || row >= m.Height {
		return false
	}
	return m.Bits[row*m.Width+col]
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Equal reports whether two masks have the same shape and bits.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Bits {
		if m.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}
