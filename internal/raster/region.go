package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RegionMask rasterizes a region of interest onto the grid.
//
// A cell belongs to the region when it holds data and its centre lies inside
// the region. A nil region selects every valid cell. The region must be a
// Polygon, MultiPolygon or Bound in the grid's coordinate system.
func RegionMask(g *Grid, region orb.Geometry) (*Mask, error) {
	if region == nil {
		return g.ValidMask(), nil
	}

	var contains func(orb.Point) bool
	switch r := region.(type) {
	case orb.Polygon:
		contains = func(p orb.Point) bool { return planar.PolygonContains(r, p) }
	case orb.MultiPolygon:
		contains = func(p orb.Point) bool { return planar.MultiPolygonContains(r, p) }
	case orb.Bound:
		contains = r.Contains
	default:
		return nil, fmt.Errorf("%w: region must be a polygon, got %s", ErrInvalidGeometry, region.GeoJSONType())
	}
	if err := ValidateGeometry(region); err != nil {
		return nil, err
	}

	bound := region.Bound()
	m := NewMask(g.Width, g.Height)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			i := g.Index(col, row)
			if !g.IsValid(i) {
				continue
			}
			p := g.CellCenter(col, row)
			if !bound.Contains(p) {
				continue
			}
			m.Bits[i] = contains(p)
		}
	}
	return m, nil
}

// ValidateGeometry rejects geometries with non-finite coordinates, open or
// degenerate rings and empty line strings.
func ValidateGeometry(g orb.Geometry) error {
	switch v := g.(type) {
	case nil:
		return fmt.Errorf("%w: nil geometry", ErrInvalidGeometry)
	case orb.Point:
		return validatePoint(v)
	case orb.MultiPoint:
		for _, p := range v {
			if err := validatePoint(p); err != nil {
				return err
			}
		}
	case orb.LineString:
		if len(v) < 2 {
			return fmt.Errorf("%w: line string with %d points", ErrInvalidGeometry, len(v))
		}
		return validatePoints(v)
	case orb.MultiLineString:
		for _, ls := range v {
			if err := ValidateGeometry(ls); err != nil {
				return err
			}
		}
	case orb.Ring:
		if len(v) < 4 || !v.Closed() {
			return fmt.Errorf("%w: ring must be closed with at least 4 points", ErrInvalidGeometry)
		}
		return validatePoints(v)
	case orb.Polygon:
		if len(v) == 0 {
			return fmt.Errorf("%w: empty polygon", ErrInvalidGeometry)
		}
		for _, r := range v {
			if err := ValidateGeometry(r); err != nil {
				return err
			}
		}
	case orb.MultiPolygon:
		for _, p := range v {
			if err := ValidateGeometry(p); err != nil {
				return err
			}
		}
	case orb.Collection:
		for _, c := range v {
			if err := ValidateGeometry(c); err != nil {
				return err
			}
		}
	case orb.Bound:
		if err := validatePoints([]orb.Point{v.Min, v.Max}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unsupported geometry %T", ErrInvalidGeometry, g)
	}
	return nil
}

func validatePoints(ps []orb.Point) error {
	for _, p := range ps {
		if err := validatePoint(p); err != nil {
			return err
		}
	}
	return nil
}

func validatePoint(p orb.Point) error {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidGeometry, p)
		}
	}
	return nil
}
