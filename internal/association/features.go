package association

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// Feature is one reference observation.
type Feature struct {
	ID         string                 `json:"id"`
	Geometry   orb.Geometry           `json:"-"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// FeaturesFromCollection converts a GeoJSON feature collection.
//
// Feature identity is taken from the GeoJSON id, then from an "id" or "name"
// property, and finally from the feature's position in the collection.
// Every geometry is validated; the first malformed one aborts conversion.
func FeaturesFromCollection(fc *geojson.FeatureCollection) ([]Feature, error) {
	out := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if err := raster.ValidateGeometry(f.Geometry); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, Feature{
			ID:         featureID(f, i),
			Geometry:   f.Geometry,
			Properties: map[string]interface{}(f.Properties),
		})
	}
	return out, nil
}

// LoadFeatures reads a GeoJSON FeatureCollection from disk.
func LoadFeatures(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read features: %w", err)
	}
	return ParseFeatures(data)
}

// ParseFeatures decodes a GeoJSON FeatureCollection.
func ParseFeatures(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}
	return FeaturesFromCollection(fc)
}

// RegionFromFeatures merges the polygonal geometries of features into one
// region of interest. Non-polygonal geometries are rejected.
func RegionFromFeatures(features []Feature) (orb.MultiPolygon, error) {
	var mp orb.MultiPolygon
	for _, f := range features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		case orb.Bound:
			mp = append(mp, g.ToPolygon())
		default:
			return nil, fmt.Errorf("%w: region feature %s is a %s", raster.ErrInvalidGeometry, f.ID, f.Geometry.GeoJSONType())
		}
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("%w: region has no polygons", raster.ErrInvalidGeometry)
	}
	return mp, nil
}

// Geometries returns the geometry of every feature.
func Geometries(features []Feature) []orb.Geometry {
	out := make([]orb.Geometry, len(features))
	for i, f := range features {
		out[i] = f.Geometry
	}
	return out
}

func featureID(f *geojson.Feature, i int) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	for _, key := range []string{"id", "name"} {
		if v, ok := f.Properties[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return strconv.Itoa(i)
}
