package lineament

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// ErrInvalidBinWidth is returned when a bin width does not divide 180°.
var ErrInvalidBinWidth = errors.New("lineament: bin width must be positive and divide 180 evenly")

// Bin is one half-open orientation interval [Start, End).
type Bin struct {
	Start float64 `json:"bin_start"`
	End   float64 `json:"bin_end"`
	Count int     `json:"count"`
}

// Histogram is the strike distribution of zone cells.
type Histogram struct {
	BinWidth float64 `json:"bin_width"`

	// Bins are ordered by Start ascending and always cover [0, 180).
	Bins []Bin `json:"bins"`

	// Total is the number of zone cells with a defined orientation.
	// It equals the sum of all bin counts.
	Total int `json:"total"`

	// DominantStrike is the axial circular mean of the strikes in degrees.
	// Nil when Total is zero.
	DominantStrike *float64 `json:"dominant_strike,omitempty"`

	// MeanResultantLength measures concentration around DominantStrike, from
	// 0 (uniform) to 1 (all strikes identical). Nil when Total is zero.
	MeanResultantLength *float64 `json:"mean_resultant_length,omitempty"`
}

// ValidBinWidth reports whether w is positive and 180/w is an integer.
func ValidBinWidth(w float64) bool {
	if !(w > 0) || w > 180 {
		return false
	}
	n := 180 / w
	return math.Abs(n-math.Round(n)) < 1e-9
}

// OrientationHistogram bins the strikes of masked cells.
//
// Only cells that are set in zone and have a valid gradient contribute.
// Empty bins are reported with a zero count.
func OrientationHistogram(f *Field, zone *raster.Mask, binWidth float64) (*Histogram, error) {
	if !ValidBinWidth(binWidth) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidBinWidth, binWidth)
	}

	nbins := int(math.Round(180 / binWidth))
	h := &Histogram{
		BinWidth: binWidth,
		Bins:     make([]Bin, nbins),
	}
	for i := range h.Bins {
		h.Bins[i].Start = float64(i) * binWidth
		h.Bins[i].End = float64(i+1) * binWidth
	}

	// doubled angles turn axial data into ordinary circular data
	var doubled []float64
	for i, ok := range f.Valid {
		if !ok || !zone.Bits[i] {
			continue
		}
		o := f.Orientation[i]
		b := int(o / binWidth)
		if b >= nbins {
			b = nbins - 1
		}
		h.Bins[b].Count++
		h.Total++
		doubled = append(doubled, 2*o*math.Pi/180)
	}

	if h.Total > 0 {
		mean := stat.CircularMean(doubled, nil)
		strike := math.Mod(mean*180/math.Pi/2+180, 180)
		h.DominantStrike = &strike

		var c, s float64
		for _, a := range doubled {
			c += math.Cos(a)
			s += math.Sin(a)
		}
		r := math.Hypot(c, s) / float64(len(doubled))
		h.MeanResultantLength = &r
	}
	return h, nil
}
