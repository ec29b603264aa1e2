package association

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

const depositsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "dep-1", "geometry": {"type": "Point", "coordinates": [1.5, 2.5]}, "properties": {"commodity": "Cu"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {"name": "Aktogay"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [5, 6]}, "properties": {}}
  ]
}`

func TestParseFeatures(t *testing.T) {
	fs, err := ParseFeatures([]byte(depositsJSON))
	if err != nil {
		t.Fatalf("ParseFeatures failed: %v", err)
	}
	if len(fs) != 3 {
		t.Fatalf("features: got %d, want 3", len(fs))
	}

	wantIDs := []string{"dep-1", "Aktogay", "2"}
	for i, want := range wantIDs {
		if fs[i].ID != want {
			t.Errorf("feature %d ID: got %q, want %q", i, fs[i].ID, want)
		}
	}
	if p, ok := fs[0].Geometry.(orb.Point); !ok || p != (orb.Point{1.5, 2.5}) {
		t.Errorf("geometry: got %v", fs[0].Geometry)
	}
	if fs[0].Properties["commodity"] != "Cu" {
		t.Errorf("properties: got %v", fs[0].Properties)
	}
}

func TestParseFeatures_Invalid(t *testing.T) {
	if _, err := ParseFeatures([]byte(`{"type": "nope"`)); err == nil {
		t.Error("expected decode error")
	}

	bad := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0]]}, "properties": {}}
	]}`
	_, err := ParseFeatures([]byte(bad))
	if !errors.Is(err, raster.ErrInvalidGeometry) {
		t.Errorf("error: got %v, want ErrInvalidGeometry", err)
	}
}

func TestLoadFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deposits.geojson")
	if err := os.WriteFile(path, []byte(depositsJSON), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	fs, err := LoadFeatures(path)
	if err != nil {
		t.Fatalf("LoadFeatures failed: %v", err)
	}
	if len(fs) != 3 {
		t.Errorf("features: got %d, want 3", len(fs))
	}

	if _, err := LoadFeatures(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRegionFromFeatures(t *testing.T) {
	square := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	fs := []Feature{
		{ID: "a", Geometry: square},
		{ID: "b", Geometry: orb.MultiPolygon{square, square}},
		{ID: "c", Geometry: orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{3, 3}}},
	}
	mp, err := RegionFromFeatures(fs)
	if err != nil {
		t.Fatalf("RegionFromFeatures failed: %v", err)
	}
	if len(mp) != 4 {
		t.Errorf("polygons: got %d, want 4", len(mp))
	}

	_, err = RegionFromFeatures([]Feature{{ID: "p", Geometry: orb.Point{0, 0}}})
	if !errors.Is(err, raster.ErrInvalidGeometry) {
		t.Errorf("point region: got %v, want ErrInvalidGeometry", err)
	}
	if _, err := RegionFromFeatures(nil); err == nil {
		t.Error("empty region should be rejected")
	}
}

func TestGeometries(t *testing.T) {
	fs := []Feature{pointFeature("a", 1, 2), pointFeature("b", 3, 4)}
	gs := Geometries(fs)
	if len(gs) != 2 || gs[1] != (orb.Point{3, 4}) {
		t.Errorf("Geometries: got %v", gs)
	}
}
