package association

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// ErrOutOfCoverage marks a feature located outside the raster extent.
var ErrOutOfCoverage = errors.New("association: feature outside raster coverage")

// ErrNotPoint is returned when a point analysis receives another geometry.
var ErrNotPoint = errors.New("association: feature geometry is not a point")

// Coverage classifies where a feature falls relative to the analysed region.
type Coverage string

const (
	// Covered features lie on a valid cell of the analysed region.
	Covered Coverage = "covered"

	// OutOfCoverage features lie outside the raster extent.
	OutOfCoverage Coverage = "out_of_coverage"

	// NoData features lie inside the extent but on a cell with no data or
	// outside the region of interest.
	NoData Coverage = "no_data"
)

// FeatureRecord is the sampled state of one point feature.
//
// Records are created once per input feature, in input order, and are not
// modified afterwards. Only Covered records carry zone membership and
// distances; the other statuses leave them nil and are excluded from every
// aggregate.
type FeatureRecord struct {
	ID       string    `json:"id"`
	Location orb.Point `json:"location"`
	Coverage Coverage  `json:"coverage"`

	// Col and Row locate the sampled cell. Meaningless when OutOfCoverage.
	Col int `json:"col"`
	Row int `json:"row"`

	InsideZone     *bool    `json:"inside_zone,omitempty"`
	DistanceToZone *float64 `json:"distance_to_zone,omitempty"`
	DistanceToEdge *float64 `json:"distance_to_edge,omitempty"`

	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Err returns ErrOutOfCoverage for out-of-extent records and nil otherwise.
func (r *FeatureRecord) Err() error {
	if r.Coverage == OutOfCoverage {
		return ErrOutOfCoverage
	}
	return nil
}

// locate assigns each point feature to a grid cell.
func locate(g *raster.Grid, region *raster.Mask, features []Feature) ([]FeatureRecord, error) {
	if region == nil {
		region = g.ValidMask()
	}
	records := make([]FeatureRecord, len(features))
	for i, f := range features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: feature %s is a %s", ErrNotPoint, f.ID, geometryType(f.Geometry))
		}

		rec := FeatureRecord{ID: f.ID, Location: p, Properties: f.Properties}
		col, row, inExtent := g.CellAt(p)
		switch {
		case !inExtent:
			rec.Coverage = OutOfCoverage
		case !region.Bits[g.Index(col, row)]:
			rec.Coverage, rec.Col, rec.Row = NoData, col, row
		default:
			rec.Coverage, rec.Col, rec.Row = Covered, col, row
		}
		records[i] = rec
	}
	return records, nil
}

// SampleFeatures samples every point feature against a zone.
//
// Parameters:
//   - g: Grid supplying the georeference and extent.
//   - region: Valid analysis cells (see raster.RegionMask).
//   - zone: Zone mask for one threshold.
//   - dist: Distance field computed from zone.
//   - features: Point features. Any other geometry is an input error.
//
// Sampling is nearest-cell: the cell containing the point supplies mask
// membership, DistanceToZone (dist.Outside, 0 inside the zone) and
// DistanceToEdge (dist.Edge).
func SampleFeatures(g *raster.Grid, region *raster.Mask, zone *raster.Mask, dist *lineament.DistanceField, features []Feature) ([]FeatureRecord, error) {
	records, err := locate(g, region, features)
	if err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		if rec.Coverage != Covered {
			continue
		}
		idx := g.Index(rec.Col, rec.Row)
		inside := zone.Bits[idx]
		toZone := dist.Outside[idx]
		toEdge := dist.Edge[idx]
		rec.InsideZone = &inside
		rec.DistanceToZone = &toZone
		rec.DistanceToEdge = &toEdge
	}
	return records, nil
}

// SampleSummary aggregates a record set. Only Covered records are counted
// in Inside, InsidePercent and the distance statistics.
type SampleSummary struct {
	Total         int `json:"total"`
	Covered       int `json:"covered"`
	OutOfCoverage int `json:"out_of_coverage"`
	NoData        int `json:"no_data"`
	Inside        int `json:"inside"`

	// InsidePercent is Inside/Covered*100; nil when nothing is covered.
	InsidePercent *float64 `json:"inside_percent,omitempty"`

	MeanEdgeDistanceInside    *float64 `json:"mean_edge_distance_inside,omitempty"`
	MeanEdgeDistanceOutside   *float64 `json:"mean_edge_distance_outside,omitempty"`
	MedianEdgeDistanceInside  *float64 `json:"median_edge_distance_inside,omitempty"`
	MedianEdgeDistanceOutside *float64 `json:"median_edge_distance_outside,omitempty"`
	MeanDistanceToZone        *float64 `json:"mean_distance_to_zone,omitempty"`
}

// Summarize counts coverage classes and computes distance statistics.
func Summarize(records []FeatureRecord) SampleSummary {
	s := SampleSummary{Total: len(records)}
	var inEdge, outEdge, toZone []float64

	for _, r := range records {
		switch r.Coverage {
		case OutOfCoverage:
			s.OutOfCoverage++
			continue
		case NoData:
			s.NoData++
			continue
		}
		s.Covered++
		if r.InsideZone != nil && *r.InsideZone {
			s.Inside++
			if r.DistanceToEdge != nil {
				inEdge = append(inEdge, *r.DistanceToEdge)
			}
		} else if r.DistanceToEdge != nil {
			outEdge = append(outEdge, *r.DistanceToEdge)
		}
		if r.DistanceToZone != nil {
			toZone = append(toZone, *r.DistanceToZone)
		}
	}

	s.InsidePercent = percent(s.Inside, s.Covered)
	s.MeanEdgeDistanceInside = mean(inEdge)
	s.MeanEdgeDistanceOutside = mean(outEdge)
	s.MedianEdgeDistanceInside = median(inEdge)
	s.MedianEdgeDistanceOutside = median(outEdge)
	s.MeanDistanceToZone = mean(toZone)
	return s
}

func percent(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	v := float64(part) / float64(whole) * 100
	return &v
}

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	v := stat.Mean(xs, nil)
	return &v
}

func median(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	v := stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	return &v
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "nil geometry"
	}
	return g.GeoJSONType()
}
