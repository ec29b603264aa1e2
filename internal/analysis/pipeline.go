// Package analysis runs the lineament pipeline end to end.
//
// Run chains gradient, threshold, zone mask, orientation histogram,
// distance field, deposit sampling, enrichment, the percentile trade-off
// and fault overlap into a single Report. Prepare exposes the shared front
// of the pipeline for callers that need only part of it.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/association"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// Input is the loaded data for one run. It is read, never modified.
type Input struct {
	Grid *raster.Grid

	// Region is the area of interest; nil analyses every valid cell.
	Region orb.Geometry

	// Deposits are point features.
	Deposits []association.Feature

	// Faults are line or polygon reference geometries.
	Faults []orb.Geometry
}

// Stage is the prepared front of the pipeline: everything up to and
// including the zone mask.
type Stage struct {
	Grid      *raster.Grid
	Region    *raster.Mask
	Metrics   *raster.Metrics
	Field     *lineament.Field
	Threshold *lineament.Threshold
	Zone      *lineament.ZoneMask
}

// MagnitudeStats summarizes gradient magnitude over the region.
type MagnitudeStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ZoneSummary describes the zone mask of the main threshold.
type ZoneSummary struct {
	Cells                  int      `json:"cells"`
	RegionCells            int      `json:"region_cells"`
	Area                   float64  `json:"area"`
	TotalArea              float64  `json:"total_area"`
	SharePercent           *float64 `json:"share_percent,omitempty"`
	ComplementSharePercent *float64 `json:"complement_share_percent,omitempty"`
}

// DistanceSummary describes how the distance field was computed.
type DistanceSummary struct {
	CellSize    float64 `json:"cell_size"`
	Approximate bool    `json:"approximate"`
	Factor      int     `json:"factor"`
}

// Report is the outcome of one Run.
type Report struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`

	Params    Params               `json:"params"`
	CellSize  float64              `json:"cell_size"`
	Threshold *lineament.Threshold `json:"threshold,omitempty"`
	Magnitude *MagnitudeStats      `json:"magnitude,omitempty"`
	Zone      *ZoneSummary         `json:"zone,omitempty"`
	Histogram *lineament.Histogram `json:"histogram,omitempty"`
	Distance  *DistanceSummary     `json:"distance,omitempty"`

	Deposits     []association.FeatureRecord    `json:"deposits,omitempty"`
	DepositStats *association.SampleSummary     `json:"deposit_stats,omitempty"`
	Enrichment   *association.EnrichmentResult  `json:"enrichment,omitempty"`
	TradeOff     []association.EnrichmentResult `json:"trade_off,omitempty"`
	Overlap      []association.OverlapResult    `json:"overlap,omitempty"`

	// Stage holds the intermediate rasters for rendering. Nil when the
	// region was empty.
	Stage *Stage `json:"-"`
}

// ValidateInput rejects malformed grids and geometries before they reach
// the pipeline.
func ValidateInput(in Input) error {
	if in.Grid == nil {
		return fmt.Errorf("%w: no elevation grid", raster.ErrShape)
	}
	if err := in.Grid.Validate(); err != nil {
		return err
	}
	for _, d := range in.Deposits {
		if err := raster.ValidateGeometry(d.Geometry); err != nil {
			return fmt.Errorf("deposit %s: %w", d.ID, err)
		}
	}
	for i, f := range in.Faults {
		if err := raster.ValidateGeometry(f); err != nil {
			return fmt.Errorf("fault %d: %w", i, err)
		}
	}
	return nil
}

// Prepare validates the input and builds the zone mask for p.Percentile.
//
// The returned error wraps lineament.ErrEmptyRegion when the region holds
// no valid cells.
func Prepare(in Input, p Params) (*Stage, error) {
	s, err := prepareField(in, p)
	if err != nil {
		return nil, err
	}
	s.Threshold, err = s.Field.Percentile(s.Region, p.Percentile, p.MaxCellBudget)
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	s.Zone = lineament.BuildZoneMask(s.Field, s.Region, s.Threshold.Value, s.Metrics)
	return s, nil
}

// prepareField runs validation, region rasterization and the gradient.
func prepareField(in Input, p Params) (*Stage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	region, err := raster.RegionMask(in.Grid, in.Region)
	if err != nil {
		return nil, err
	}
	field := lineament.ComputeGradient(in.Grid)
	return &Stage{
		Grid:    in.Grid,
		Region:  analysisDomain(region, field),
		Metrics: in.Grid.Metrics(p.CellSizeOverride),
		Field:   field,
	}, nil
}

// analysisDomain restricts region to cells with a defined gradient. Zone
// area, feature coverage and buffer area are all counted over this mask, so
// cells next to voids or clipped borders drop out of every denominator.
func analysisDomain(region *raster.Mask, f *lineament.Field) *raster.Mask {
	m := raster.NewMask(region.Width, region.Height)
	for i, ok := range region.Bits {
		m.Bits[i] = ok && f.Valid[i]
	}
	return m
}

// Run executes the full pipeline.
//
// An empty region is not an error: the report comes back with status
// association.StatusEmptyRegion and no measurements. Batch entries that
// fail individually are reported in their own entries.
func Run(ctx context.Context, in Input, p Params) (*Report, error) {
	rep := &Report{
		RunID:  uuid.NewString(),
		Status: association.StatusOK,
		Params: p,
	}

	s, err := Prepare(in, p)
	if errors.Is(err, lineament.ErrEmptyRegion) {
		rep.Status = association.StatusEmptyRegion
		rep.Err = err.Error()
		return rep, nil
	}
	if err != nil {
		return nil, err
	}
	rep.Stage = s
	rep.CellSize = s.Metrics.CellSize
	rep.Threshold = s.Threshold
	rep.Magnitude = Magnitude(s.Field, s.Region)
	rep.Zone = summarizeZone(s.Zone)

	rep.Histogram, err = lineament.OrientationHistogram(s.Field, s.Zone.Mask, p.BinWidth)
	if err != nil {
		return nil, err
	}

	dist := lineament.ComputeDistance(s.Zone.Mask, s.Metrics.CellSize, p.MaxCellBudget)
	rep.Distance = &DistanceSummary{CellSize: dist.CellSize, Approximate: dist.Approximate, Factor: dist.Factor}

	if len(in.Deposits) > 0 {
		rep.Deposits, err = association.SampleFeatures(in.Grid, s.Region, s.Zone.Mask, dist, in.Deposits)
		if err != nil {
			return nil, err
		}
		summary := association.Summarize(rep.Deposits)
		rep.DepositStats = &summary
		enr := association.Enrichment(s.Threshold, s.Zone, rep.Deposits)
		rep.Enrichment = &enr

		if len(p.Percentiles) > 0 {
			rep.TradeOff, err = association.TradeOff(ctx, association.TradeOffInput{
				Grid:     in.Grid,
				Field:    s.Field,
				Region:   s.Region,
				Metrics:  s.Metrics,
				Features: in.Deposits,
				MaxCells: p.MaxCellBudget,
			}, p.Percentiles, p.Workers)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(in.Faults) > 0 && len(p.BufferDistances) > 0 {
		rep.Overlap, err = association.Overlap(ctx, association.OverlapInput{
			Grid:       in.Grid,
			Region:     s.Region,
			Zone:       s.Zone.Mask,
			Metrics:    s.Metrics,
			References: in.Faults,
		}, p.BufferDistances, p.Workers)
		if err != nil {
			return nil, err
		}
	}

	return rep, nil
}

// Magnitude summarizes the valid magnitudes inside region. Nil when no
// cell qualifies.
func Magnitude(f *lineament.Field, region *raster.Mask) *MagnitudeStats {
	var xs []float64
	for i, ok := range f.Valid {
		if ok && (region == nil || region.Bits[i]) {
			xs = append(xs, f.Magnitude[i])
		}
	}
	if len(xs) == 0 {
		return nil
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return &MagnitudeStats{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: std,
	}
}

func summarizeZone(z *lineament.ZoneMask) *ZoneSummary {
	s := &ZoneSummary{
		Cells:       z.ZoneCells,
		RegionCells: z.RegionCells,
		Area:        z.ZoneArea,
		TotalArea:   z.TotalArea,
	}
	if share, ok := z.SharePercent(); ok {
		s.SharePercent = &share
	}
	if share, ok := z.ComplementSharePercent(); ok {
		s.ComplementSharePercent = &share
	}
	return s
}
