package association

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
)

func TestSampleFeatures(t *testing.T) {
	g := unitGrid(t, 20, 20)
	zone := rectMask(20, 20, 5, 5, 15, 15)
	dist := lineament.ComputeDistance(zone, 1, 0)

	// Column 0 is outside the study region.
	region := rectMask(20, 20, 1, 0, 20, 20)

	features := []Feature{
		pointAt(g, "boundary", 5, 7),
		pointAt(g, "core", 10, 10),
		pointAt(g, "west", 2, 10),
		pointFeature("far", -5, 5),
		pointAt(g, "excluded", 0, 0),
	}

	records, err := SampleFeatures(g, region, zone, dist, features)
	if err != nil {
		t.Fatalf("SampleFeatures failed: %v", err)
	}
	if len(records) != len(features) {
		t.Fatalf("records: got %d, want %d", len(records), len(features))
	}
	for i, r := range records {
		if r.ID != features[i].ID {
			t.Errorf("record %d: got ID %q, want %q", i, r.ID, features[i].ID)
		}
	}

	tests := []struct {
		id       string
		coverage Coverage
		inside   bool
		toZone   float64
		toEdge   float64
	}{
		{"boundary", Covered, true, 0, 0},
		{"core", Covered, true, 0, 4},
		{"west", Covered, false, 3, 2},
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := records[i]
			if r.Coverage != tt.coverage {
				t.Fatalf("coverage: got %s, want %s", r.Coverage, tt.coverage)
			}
			if r.InsideZone == nil || *r.InsideZone != tt.inside {
				t.Errorf("inside: got %v, want %v", r.InsideZone, tt.inside)
			}
			if r.DistanceToZone == nil || math.Abs(*r.DistanceToZone-tt.toZone) > 1e-9 {
				t.Errorf("distance to zone: got %v, want %g", r.DistanceToZone, tt.toZone)
			}
			if r.DistanceToEdge == nil || math.Abs(*r.DistanceToEdge-tt.toEdge) > 1e-9 {
				t.Errorf("distance to edge: got %v, want %g", r.DistanceToEdge, tt.toEdge)
			}
		})
	}

	far := records[3]
	if far.Coverage != OutOfCoverage {
		t.Errorf("far coverage: got %s, want %s", far.Coverage, OutOfCoverage)
	}
	if !errors.Is(far.Err(), ErrOutOfCoverage) {
		t.Errorf("far Err: got %v, want ErrOutOfCoverage", far.Err())
	}
	if far.InsideZone != nil || far.DistanceToEdge != nil {
		t.Error("out-of-coverage record should carry no measurements")
	}

	excluded := records[4]
	if excluded.Coverage != NoData {
		t.Errorf("excluded coverage: got %s, want %s", excluded.Coverage, NoData)
	}
	if excluded.Err() != nil {
		t.Errorf("no-data record Err: got %v, want nil", excluded.Err())
	}
}

func TestSampleFeatures_NotPoint(t *testing.T) {
	g := unitGrid(t, 4, 4)
	zone := rectMask(4, 4, 0, 0, 2, 2)
	dist := lineament.ComputeDistance(zone, 1, 0)

	features := []Feature{{ID: "fault", Geometry: orb.LineString{{0, 0}, {1, 1}}}}
	_, err := SampleFeatures(g, nil, zone, dist, features)
	if !errors.Is(err, ErrNotPoint) {
		t.Errorf("error: got %v, want ErrNotPoint", err)
	}
}

func TestSummarize(t *testing.T) {
	g := unitGrid(t, 20, 20)
	zone := rectMask(20, 20, 5, 5, 15, 15)
	dist := lineament.ComputeDistance(zone, 1, 0)
	region := rectMask(20, 20, 1, 0, 20, 20)

	records, err := SampleFeatures(g, region, zone, dist, []Feature{
		pointAt(g, "boundary", 5, 7),
		pointAt(g, "core", 10, 10),
		pointAt(g, "west", 2, 10),
		pointFeature("far", 100, 100),
		pointAt(g, "excluded", 0, 3),
	})
	if err != nil {
		t.Fatalf("SampleFeatures failed: %v", err)
	}

	s := Summarize(records)
	if s.Total != 5 || s.Covered != 3 || s.OutOfCoverage != 1 || s.NoData != 1 {
		t.Errorf("counts: got %+v", s)
	}
	if s.Inside != 2 {
		t.Errorf("inside: got %d, want 2", s.Inside)
	}
	if s.InsidePercent == nil || math.Abs(*s.InsidePercent-200.0/3) > 1e-9 {
		t.Errorf("inside percent: got %v, want %g", s.InsidePercent, 200.0/3)
	}
	if s.MeanEdgeDistanceInside == nil || *s.MeanEdgeDistanceInside != 2 {
		t.Errorf("mean edge distance inside: got %v, want 2", s.MeanEdgeDistanceInside)
	}
	if s.MedianEdgeDistanceOutside == nil || *s.MedianEdgeDistanceOutside != 2 {
		t.Errorf("median edge distance outside: got %v, want 2", s.MedianEdgeDistanceOutside)
	}
	if s.MeanDistanceToZone == nil || *s.MeanDistanceToZone != 1 {
		t.Errorf("mean distance to zone: got %v, want 1", s.MeanDistanceToZone)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.InsidePercent != nil {
		t.Errorf("inside percent with no records: got %v, want nil", *s.InsidePercent)
	}
	if s.MeanEdgeDistanceInside != nil || s.MedianEdgeDistanceOutside != nil {
		t.Error("distance statistics should be nil with no records")
	}

	s = Summarize([]FeatureRecord{{ID: "x", Coverage: OutOfCoverage}})
	if s.OutOfCoverage != 1 || s.InsidePercent != nil {
		t.Errorf("out-of-coverage only: got %+v", s)
	}
}
