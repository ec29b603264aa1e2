package lineament

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// ErrEmptyRegion is returned when a reduction covers no valid cells.
var ErrEmptyRegion = errors.New("lineament: region contains no valid cells")

// ErrPercentileRange is returned for percentiles outside [0, 100].
var ErrPercentileRange = errors.New("lineament: percentile must be within [0, 100]")

// Threshold is an adaptive magnitude cutoff.
type Threshold struct {
	// Percentile is the requested percentile P in [0, 100].
	Percentile float64 `json:"percentile"`

	// Value is the magnitude at or below which about P% of cells lie.
	Value float64 `json:"value"`

	// RegionCells is the number of valid cells in the region.
	RegionCells int `json:"region_cells"`

	// SampledCells is how many of them entered the computation.
	SampledCells int `json:"sampled_cells"`

	// Approximate is true when RegionCells exceeded the cell budget and a
	// stride sample was used instead of every cell.
	Approximate bool `json:"approximate"`
}

// Percentile computes the P-th percentile of magnitude over the region.
//
// Parameters:
//   - region: Cells to include; nil means every valid cell. Region cells
//     that have no valid magnitude are skipped.
//   - p: Percentile in [0, 100] (e.g. 85 keeps the top 15% as zone).
//   - maxCells: Full-resolution budget. When positive and exceeded, every
//     k-th region cell in row-major order is used, k = ceil(n/maxCells),
//     and the result is tagged Approximate.
//
// The percentile is the empirical quantile of the sorted sample: the
// smallest sampled value v such that at least P% of the sample is <= v.
//
// Returns ErrEmptyRegion when no valid cell falls inside the region.
func (f *Field) Percentile(region *raster.Mask, p float64, maxCells int) (*Threshold, error) {
	if p < 0 || p > 100 {
		return nil, fmt.Errorf("%w: got %g", ErrPercentileRange, p)
	}

	n := 0
	for i, ok := range f.Valid {
		if ok && inRegion(region, i) {
			n++
		}
	}
	if n == 0 {
		return nil, ErrEmptyRegion
	}

	stride := 1
	if maxCells > 0 && n > maxCells {
		stride = (n + maxCells - 1) / maxCells
	}

	sample := make([]float64, 0, (n+stride-1)/stride)
	k := 0
	for i, ok := range f.Valid {
		if !ok || !inRegion(region, i) {
			continue
		}
		if k%stride == 0 {
			sample = append(sample, f.Magnitude[i])
		}
		k++
	}
	sort.Float64s(sample)

	return &Threshold{
		Percentile:   p,
		Value:        stat.Quantile(p/100, stat.Empirical, sample, nil),
		RegionCells:  n,
		SampledCells: len(sample),
		Approximate:  stride > 1,
	}, nil
}

func inRegion(region *raster.Mask, i int) bool {
	return region == nil || region.Bits[i]
}
