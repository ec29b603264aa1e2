package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// QuicklookResult contains a rendered preview encoded as base64 PNG.
type QuicklookResult struct {
	// Width of the rendered image in pixels.
	Width int `json:"width"`

	// Height of the rendered image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the preview encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// rampStops is a perceptually ordered dark-to-bright palette.
var rampStops = []string{"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"}

// zoneColor tints zone cells in the overlay.
var zoneColor = color.RGBA{0, 255, 255, 255}

// Quicklook renders a scalar field with an optional mask overlay.
//
// Parameters:
//   - values: Row-major samples, len == width*height.
//   - valid: Optional validity flags; invalid cells render transparent black.
//   - overlay: Optional mask blended on top at 50% opacity.
//   - maxSize: Longest output edge in pixels; 0 keeps native resolution.
//
// Values are stretched linearly between their minimum and maximum over
// valid cells and coloured along a Lab-interpolated ramp.
func Quicklook(values []float64, valid []bool, overlay *Mask, width, height, maxSize int) (*QuicklookResult, error) {
	if width <= 0 || height <= 0 || len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d quicklook", ErrShape, len(values), width, height)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if !(span > 0) {
		span = 1
	}

	ramp, err := buildRamp()
	if err != nil {
		return nil, err
	}

	base := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		r, g, b := rampAt(ramp, (v-lo)/span).Clamped().RGB255()
		base.SetRGBA(i%width, i/width, color.RGBA{r, g, b, 255})
	}

	var out image.Image = base
	if overlay != nil {
		tinted := image.NewRGBA(base.Bounds())
		copy(tinted.Pix, base.Pix)
		for i, b := range overlay.Bits {
			if b {
				tinted.SetRGBA(i%width, i/width, zoneColor)
			}
		}
		out = blend.Opacity(base, tinted, 0.5)
	}

	if maxSize > 0 && (width > maxSize || height > maxSize) {
		out = imaging.Fit(out, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode quicklook: %w", err)
	}

	return &QuicklookResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func buildRamp() ([]colorful.Color, error) {
	ramp := make([]colorful.Color, len(rampStops))
	for i, hex := range rampStops {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid ramp colour %s: %w", hex, err)
		}
		ramp[i] = c
	}
	return ramp, nil
}

// rampAt interpolates the ramp at t in [0,1].
func rampAt(ramp []colorful.Color, t float64) colorful.Color {
	if t <= 0 {
		return ramp[0]
	}
	if t >= 1 {
		return ramp[len(ramp)-1]
	}
	pos := t * float64(len(ramp)-1)
	i := int(pos)
	return ramp[i].BlendLab(ramp[i+1], pos-float64(i))
}
