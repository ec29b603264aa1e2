package association

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"golang.org/x/sync/errgroup"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// ErrDegenerateBuffer marks an overlap whose precision or recall
// denominator is zero.
var ErrDegenerateBuffer = errors.New("association: zero-area zone or reference buffer")

// ErrNegativeBuffer is returned for buffer distances below zero.
var ErrNegativeBuffer = errors.New("association: buffer distance must be non-negative")

// OverlapResult compares the zone with buffered reference geometry.
//
// Precision, Recall and F1 are percentages. Each is nil when undefined:
// precision when ZoneArea is 0, recall when ReferenceBufferArea is 0, and F1
// when either is undefined or both are 0.
type OverlapResult struct {
	BufferDistance      float64 `json:"buffer_distance"`
	ZoneArea            float64 `json:"zone_area"`
	ReferenceBufferArea float64 `json:"reference_buffer_area"`
	IntersectionArea    float64 `json:"intersection_area"`

	Precision *float64 `json:"precision,omitempty"`
	Recall    *float64 `json:"recall,omitempty"`
	F1        *float64 `json:"f1,omitempty"`

	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// OverlapInput holds the immutable data shared by every buffer run.
type OverlapInput struct {
	Grid    *raster.Grid
	Region  *raster.Mask
	Zone    *raster.Mask
	Metrics *raster.Metrics

	// References are line or polygon geometries in the grid's coordinates.
	References []orb.Geometry
}

// Overlap buffers the references by each distance and scores the zone
// against every buffer.
//
// Buffers are planar offsets measured in the grid's length unit (metres for
// geographic grids). A cell belongs to a buffer when its centre lies within
// the distance of any reference geometry, or inside a reference polygon.
// Only region cells are counted, so buffers never extend the study area.
//
// Distances run concurrently on up to workers goroutines and come back in
// input order. A failing distance is reported in its own entry.
func Overlap(ctx context.Context, in OverlapInput, distances []float64, workers int) ([]OverlapResult, error) {
	region := in.Region
	if region == nil {
		region = in.Grid.ValidMask()
	}

	maxDist := 0.0
	for _, d := range distances {
		if d > maxDist && !math.IsInf(d, 1) {
			maxDist = d
		}
	}
	near := referenceDistances(in.Grid, region, in.References, maxDist)

	results := make([]OverlapResult, len(distances))
	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, d := range distances {
		i, d := i, d
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = overlapRun(in, region, near, d)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overlap analysis: %w", err)
	}
	return results, nil
}

func overlapRun(in OverlapInput, region *raster.Mask, near []float64, d float64) OverlapResult {
	res := OverlapResult{BufferDistance: d, Status: StatusOK}
	if d < 0 || math.IsNaN(d) {
		res.Status = StatusError
		res.Err = fmt.Errorf("%w: got %g", ErrNegativeBuffer, d).Error()
		return res
	}

	w := region.Width
	for i, ok := range region.Bits {
		if !ok {
			continue
		}
		a := in.Metrics.RowArea[i/w]
		inZone := in.Zone.Bits[i]
		inBuffer := near[i] <= d
		if inZone {
			res.ZoneArea += a
		}
		if inBuffer {
			res.ReferenceBufferArea += a
		}
		if inZone && inBuffer {
			res.IntersectionArea += a
		}
	}

	res.Precision = ratioPercent(res.IntersectionArea, res.ZoneArea)
	res.Recall = ratioPercent(res.IntersectionArea, res.ReferenceBufferArea)
	res.F1 = F1(res.Precision, res.Recall)
	if res.Precision == nil || res.Recall == nil {
		res.Status = StatusDegenerate
		res.Err = ErrDegenerateBuffer.Error()
	}
	return res
}

// F1 is the harmonic mean of precision and recall, or nil when undefined.
func F1(precision, recall *float64) *float64 {
	if precision == nil || recall == nil {
		return nil
	}
	sum := *precision + *recall
	if sum == 0 {
		return nil
	}
	f := 2 * *precision * *recall / sum
	return &f
}

func ratioPercent(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den * 100
	return &v
}

// referenceDistances returns, for each region cell, the planar distance
// from its centre to the nearest reference geometry. Cells farther than
// limit from every reference's bounds are left at +Inf without a distance
// query.
func referenceDistances(g *raster.Grid, region *raster.Mask, refs []orb.Geometry, limit float64) []float64 {
	out := make([]float64, g.Width*g.Height)
	for i := range out {
		out[i] = math.Inf(1)
	}
	if len(refs) == 0 {
		return out
	}

	proj := g.Planar()
	planarRefs := make([]orb.Geometry, len(refs))
	bounds := make([]orb.Bound, len(refs))
	for i, r := range refs {
		planarRefs[i] = project.Geometry(orb.Clone(r), proj)
		bounds[i] = planarRefs[i].Bound().Pad(limit)
	}

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			i := g.Index(col, row)
			if !region.Bits[i] {
				continue
			}
			p := proj(g.CellCenter(col, row))
			for j, r := range planarRefs {
				if !bounds[j].Contains(p) {
					continue
				}
				if d := distanceTo(r, p); d < out[i] {
					out[i] = d
				}
			}
		}
	}
	return out
}

// distanceTo is the planar distance from p to g; 0 inside polygons.
func distanceTo(g orb.Geometry, p orb.Point) float64 {
	switch v := g.(type) {
	case orb.Polygon:
		if planar.PolygonContains(v, p) {
			return 0
		}
	case orb.MultiPolygon:
		if planar.MultiPolygonContains(v, p) {
			return 0
		}
	case orb.Bound:
		if v.Contains(p) {
			return 0
		}
		return planar.DistanceFrom(v.ToPolygon(), p)
	case orb.Collection:
		best := math.Inf(1)
		for _, c := range v {
			best = math.Min(best, distanceTo(c, p))
		}
		return best
	}
	return planar.DistanceFrom(g, p)
}
