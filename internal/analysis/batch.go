package analysis

import (
	"context"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/association"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
)

// OrientationReport is the strike distribution of one zone.
type OrientationReport struct {
	Threshold *lineament.Threshold `json:"threshold"`
	Zone      *ZoneSummary         `json:"zone"`
	Histogram *lineament.Histogram `json:"histogram"`
}

// Orientation builds the zone for p.Percentile and bins its strikes.
func Orientation(in Input, p Params) (*OrientationReport, error) {
	s, err := Prepare(in, p)
	if err != nil {
		return nil, err
	}
	h, err := lineament.OrientationHistogram(s.Field, s.Zone.Mask, p.BinWidth)
	if err != nil {
		return nil, err
	}
	return &OrientationReport{
		Threshold: s.Threshold,
		Zone:      summarizeZone(s.Zone),
		Histogram: h,
	}, nil
}

// TradeOff runs enrichment for every p.Percentiles entry against the
// deposits. An empty region is reported in each entry, not as an error.
func TradeOff(ctx context.Context, in Input, p Params) ([]association.EnrichmentResult, error) {
	s, err := prepareField(in, p)
	if err != nil {
		return nil, err
	}
	return association.TradeOff(ctx, association.TradeOffInput{
		Grid:     in.Grid,
		Field:    s.Field,
		Region:   s.Region,
		Metrics:  s.Metrics,
		Features: in.Deposits,
		MaxCells: p.MaxCellBudget,
	}, p.Percentiles, p.Workers)
}

// Overlap builds the zone for p.Percentile and scores it against the
// faults buffered by each of p.BufferDistances.
func Overlap(ctx context.Context, in Input, p Params) ([]association.OverlapResult, error) {
	s, err := Prepare(in, p)
	if err != nil {
		return nil, err
	}
	return association.Overlap(ctx, association.OverlapInput{
		Grid:       in.Grid,
		Region:     s.Region,
		Zone:       s.Zone.Mask,
		Metrics:    s.Metrics,
		References: in.Faults,
	}, p.BufferDistances, p.Workers)
}
