package association

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// Result statuses shared by enrichment and overlap entries.
const (
	StatusOK          = "ok"
	StatusEmptyRegion = "empty_region"
	StatusDegenerate  = "degenerate_buffer"
	StatusError       = "error"
)

// EnrichmentResult is the zone/feature association at one percentile.
type EnrichmentResult struct {
	Percentile float64 `json:"percentile"`

	// ThresholdValue is the magnitude cutoff; nil when it could not be computed.
	ThresholdValue *float64 `json:"threshold_value,omitempty"`

	// Approximate is true when the threshold came from a budget-limited sample.
	Approximate bool `json:"approximate"`

	ZoneAreaSharePercent *float64 `json:"zone_area_share_percent,omitempty"`
	FeatureInsidePercent *float64 `json:"feature_inside_percent,omitempty"`

	// EnrichmentIndex is FeatureInsidePercent / ZoneAreaSharePercent.
	// 1 means no association, above 1 over-representation inside the zone.
	EnrichmentIndex *float64 `json:"enrichment_index,omitempty"`

	FeaturesCounted int `json:"features_counted"`
	FeaturesInside  int `json:"features_inside"`

	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// EnrichmentIndex divides the inside-feature share by the zone area share.
// The index is undefined when either share is undefined or the area share
// is zero.
func EnrichmentIndex(insidePercent, areaSharePercent *float64) *float64 {
	if insidePercent == nil || areaSharePercent == nil || *areaSharePercent == 0 {
		return nil
	}
	e := *insidePercent / *areaSharePercent
	return &e
}

// Enrichment computes one EnrichmentResult from an existing zone mask and
// sampled records.
func Enrichment(threshold *lineament.Threshold, zone *lineament.ZoneMask, records []FeatureRecord) EnrichmentResult {
	res := EnrichmentResult{
		Percentile:  threshold.Percentile,
		Approximate: threshold.Approximate,
		Status:      StatusOK,
	}
	v := threshold.Value
	res.ThresholdValue = &v

	if share, ok := zone.SharePercent(); ok {
		res.ZoneAreaSharePercent = &share
	}

	for _, r := range records {
		if r.Coverage != Covered {
			continue
		}
		res.FeaturesCounted++
		if zone.Bits[r.Row*zone.Width+r.Col] {
			res.FeaturesInside++
		}
	}
	res.FeatureInsidePercent = percent(res.FeaturesInside, res.FeaturesCounted)
	res.EnrichmentIndex = EnrichmentIndex(res.FeatureInsidePercent, res.ZoneAreaSharePercent)
	return res
}

// TradeOffInput holds the immutable data shared by every trade-off run.
type TradeOffInput struct {
	Grid     *raster.Grid
	Field    *lineament.Field
	Region   *raster.Mask
	Metrics  *raster.Metrics
	Features []Feature

	// MaxCells is the percentile cell budget (0 = unlimited).
	MaxCells int
}

// TradeOff repeats threshold, mask and enrichment for every percentile.
//
// Each percentile is an independent run against the same magnitude field and
// features. Runs execute on up to workers goroutines (workers <= 0 means one
// per percentile). Results are returned in the order of percentiles. A run
// that fails records its status and error; it does not stop the others.
//
// The returned error is non-nil only for input errors that affect every run
// (e.g. non-point features) or when ctx is cancelled.
func TradeOff(ctx context.Context, in TradeOffInput, percentiles []float64, workers int) ([]EnrichmentResult, error) {
	records, err := locate(in.Grid, in.Region, in.Features)
	if err != nil {
		return nil, err
	}

	results := make([]EnrichmentResult, len(percentiles))
	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, p := range percentiles {
		i, p := i, p
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// errors are recorded per entry; siblings keep running
			results[i] = enrichmentRun(in, records, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("trade-off analysis: %w", err)
	}
	return results, nil
}

func enrichmentRun(in TradeOffInput, records []FeatureRecord, p float64) EnrichmentResult {
	th, err := in.Field.Percentile(in.Region, p, in.MaxCells)
	if err != nil {
		status := StatusError
		if errors.Is(err, lineament.ErrEmptyRegion) {
			status = StatusEmptyRegion
		}
		return EnrichmentResult{Percentile: p, Status: status, Err: err.Error()}
	}
	zone := lineament.BuildZoneMask(in.Field, in.Region, th.Value, in.Metrics)
	return Enrichment(th, zone, records)
}
