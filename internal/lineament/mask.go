package lineament

import (
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// ZoneMask is the set of high-gradient cells for one threshold.
type ZoneMask struct {
	// Mask is true where the cell is in the region, has a valid magnitude
	// and magnitude >= Threshold.
	*raster.Mask

	// Threshold is the magnitude cutoff that produced the mask.
	Threshold float64 `json:"threshold"`

	// ZoneCells and RegionCells count masked cells and all valid region cells.
	ZoneCells   int `json:"zone_cells"`
	RegionCells int `json:"region_cells"`

	// ZoneArea and TotalArea are summed per cell, so non-uniform cell areas
	// of geographic grids are honoured.
	ZoneArea  float64 `json:"zone_area"`
	TotalArea float64 `json:"total_area"`
}

// BuildZoneMask thresholds the magnitude within a region.
//
// region may be nil to use every valid cell. metrics supplies per-row cell
// areas for the area totals.
func BuildZoneMask(f *Field, region *raster.Mask, threshold float64, metrics *raster.Metrics) *ZoneMask {
	z := &ZoneMask{
		Mask:      raster.NewMask(f.Width, f.Height),
		Threshold: threshold,
	}
	for i, ok := range f.Valid {
		if !ok || !inRegion(region, i) {
			continue
		}
		a := metrics.RowArea[i/f.Width]
		z.RegionCells++
		z.TotalArea += a
		if f.Magnitude[i] >= threshold {
			z.Bits[i] = true
			z.ZoneCells++
			z.ZoneArea += a
		}
	}
	return z
}

// SharePercent returns the zone's share of the total area in percent.
// ok is false when the region has no area.
func (z *ZoneMask) SharePercent() (share float64, ok bool) {
	if z.TotalArea <= 0 {
		return 0, false
	}
	return z.ZoneArea / z.TotalArea * 100, true
}

// ComplementSharePercent returns the non-zone share of the region in percent.
func (z *ZoneMask) ComplementSharePercent() (share float64, ok bool) {
	if z.TotalArea <= 0 {
		return 0, false
	}
	return (z.TotalArea - z.ZoneArea) / z.TotalArea * 100, true
}
