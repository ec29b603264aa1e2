package raster

import (
	"math"
	"testing"
)

func TestMetrics_Projected(t *testing.T) {
	g, err := NewGrid(3, 2, make([]float64, 6), nil, GeoRef{CellWidth: 30, CellHeight: 20})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	m := g.Metrics(0)
	if m.CellSize != 30 {
		t.Errorf("CellSize: got %v, want 30", m.CellSize)
	}
	for r, a := range m.RowArea {
		if a != 600 {
			t.Errorf("RowArea[%d]: got %v, want 600", r, a)
		}
	}
	if got := m.MaskArea(g.ValidMask()); got != 3600 {
		t.Errorf("MaskArea: got %v, want 3600", got)
	}
}

func TestMetrics_Override(t *testing.T) {
	g, err := NewGrid(2, 2, make([]float64, 4), nil, GeoRef{CellWidth: 0.001, CellHeight: 0.001, Geographic: true})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	m := g.Metrics(90)
	if m.CellSize != 90 {
		t.Errorf("CellSize: got %v, want 90", m.CellSize)
	}
	if m.CellArea(3, g.Width) != 8100 {
		t.Errorf("CellArea: got %v, want 8100", m.CellArea(3, g.Width))
	}
}

func TestMetrics_GeographicPerRow(t *testing.T) {
	// rows span 0°..60°N in 20° bands
	g, err := NewGrid(1, 3, make([]float64, 3), nil, GeoRef{
		OriginX: 0, OriginY: 60, CellWidth: 1, CellHeight: 20, Geographic: true,
	})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	m := g.Metrics(0)
	if !(m.RowArea[0] < m.RowArea[1] && m.RowArea[1] < m.RowArea[2]) {
		t.Errorf("row areas should grow towards the equator: %v", m.RowArea)
	}

	// 1° x 20° band starting at the equator on a sphere of radius 6378137 m
	r := 6378137.0
	want := r * r * (math.Pi / 180) * math.Sin(20*math.Pi/180)
	if rel := math.Abs(m.RowArea[2]-want) / want; rel > 0.01 {
		t.Errorf("equatorial row area: got %.4g, want %.4g (rel err %.3f)", m.RowArea[2], want, rel)
	}

	// one degree of longitude at 30°N is about 96.5 km
	if m.CellSize < 95000 || m.CellSize > 98000 {
		t.Errorf("CellSize: got %.0f, want ~96.5 km", m.CellSize)
	}
}
