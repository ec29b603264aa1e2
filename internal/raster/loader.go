package raster

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// LoadOptions controls how a file is interpreted as an elevation grid.
type LoadOptions struct {
	// Geographic marks the file's coordinates as longitude/latitude degrees.
	Geographic bool `json:"geographic"`

	// CRS is an informational coordinate reference label.
	CRS string `json:"crs,omitempty"`

	// Heightmap settings, used only for image formats. Elevation is
	// Offset + Scale*sample, where sample is the 16-bit grey level.
	// A zero Scale defaults to 1.
	Scale  float64 `json:"scale,omitempty"`
	Offset float64 `json:"offset,omitempty"`

	// NoData marks a heightmap grey level as missing. Ignored when nil.
	NoData *float64 `json:"nodata,omitempty"`

	// Ref georeferences image heightmaps. ASCII grids carry their own.
	Ref GeoRef `json:"ref"`
}

// GridCache provides thread-safe caching of loaded grids so repeated tool
// calls against the same file do not re-read it.
//
// Grids are keyed by the exact path string passed to Load. Each entry keeps
// the options it was read with; a Load with different options re-reads the
// file and replaces the entry.
type GridCache struct {
	mu    sync.RWMutex
	grids map[string]cachedGrid
}

type cachedGrid struct {
	grid *Grid
	opts LoadOptions
}

// NewGridCache creates an empty grid cache.
func NewGridCache() *GridCache {
	return &GridCache{
		grids: make(map[string]cachedGrid),
	}
}

// Load retrieves a grid from the cache or reads it from disk.
//
// Supported formats are chosen by extension:
//   - ".asc": ESRI ASCII grid (georeference from its header)
//   - ".png", ".tif", ".tiff": grey heightmap (georeference from opts.Ref)
func (c *GridCache) Load(path string, opts LoadOptions) (*Grid, error) {
	c.mu.RLock()
	if e, ok := c.grids[path]; ok && e.opts.Equal(opts) {
		c.mu.RUnlock()
		return e.grid, nil
	}
	c.mu.RUnlock()

	g, err := LoadFile(path, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.grids[path] = cachedGrid{grid: g, opts: opts.clone()}
	c.mu.Unlock()

	return g, nil
}

// Evict removes a grid from the cache.
func (c *GridCache) Evict(path string) {
	c.mu.Lock()
	delete(c.grids, path)
	c.mu.Unlock()
}

// Clear removes every cached grid.
func (c *GridCache) Clear() {
	c.mu.Lock()
	c.grids = make(map[string]cachedGrid)
	c.mu.Unlock()
}

// Equal reports whether two option sets would load the same grid. NoData
// is compared by value.
func (o LoadOptions) Equal(other LoadOptions) bool {
	if (o.NoData == nil) != (other.NoData == nil) {
		return false
	}
	if o.NoData != nil && *o.NoData != *other.NoData {
		return false
	}
	a, b := o, other
	a.NoData, b.NoData = nil, nil
	return a == b
}

func (o LoadOptions) clone() LoadOptions {
	if o.NoData != nil {
		v := *o.NoData
		o.NoData = &v
	}
	return o
}

// LoadFile reads an elevation grid without caching.
func LoadFile(path string, opts LoadOptions) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open grid: %w", err)
		}
		defer f.Close()
		return ReadASCIIGrid(f, opts)
	case ".png", ".tif", ".tiff":
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode heightmap: %w", err)
		}
		return HeightmapGrid(img, opts)
	default:
		return nil, fmt.Errorf("unsupported grid format: %s", filepath.Ext(path))
	}
}

// ReadASCIIGrid parses an ESRI ASCII grid.
//
// Recognised header keys: ncols, nrows, xllcorner|xllcenter,
// yllcorner|yllcenter, cellsize (or dx and dy) and NODATA_value. Keys are
// case-insensitive. Samples follow row by row from north to south.
func ReadASCIIGrid(r io.Reader, opts LoadOptions) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("ascii grid: header key %q without value", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: header %q: %w", key, err)
		}
		header[key] = v
	}

	ncols, nrows := int(header["ncols"]), int(header["nrows"])
	if ncols <= 0 || nrows <= 0 {
		return nil, fmt.Errorf("ascii grid: %w: ncols=%d nrows=%d", ErrShape, ncols, nrows)
	}

	dx, dy := header["cellsize"], header["cellsize"]
	if v, ok := header["dx"]; ok {
		dx = v
	}
	if v, ok := header["dy"]; ok {
		dy = v
	}

	ref := GeoRef{CellWidth: dx, CellHeight: dy, CRS: opts.CRS, Geographic: opts.Geographic}
	if v, ok := header["xllcenter"]; ok {
		ref.OriginX = v - dx/2
	} else {
		ref.OriginX = header["xllcorner"]
	}
	if v, ok := header["yllcenter"]; ok {
		ref.OriginY = v - dy/2 + float64(nrows)*dy
	} else {
		ref.OriginY = header["yllcorner"] + float64(nrows)*dy
	}

	nodata, hasNoData := header["nodata_value"]

	n := ncols * nrows
	values := make([]float64, 0, n)
	valid := make([]bool, 0, n)
	push := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("ascii grid: sample %d: %w", len(values), err)
		}
		ok := !(hasNoData && v == nodata) && !math.IsNaN(v)
		if !ok {
			v = 0
		}
		values = append(values, v)
		valid = append(valid, ok)
		return nil
	}

	if first != "" {
		if err := push(first); err != nil {
			return nil, err
		}
	}
	for len(values) < n && sc.Scan() {
		if err := push(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if len(values) != n {
		return nil, fmt.Errorf("ascii grid: %w: read %d of %d samples", ErrShape, len(values), n)
	}

	return NewGrid(ncols, nrows, values, valid, ref)
}

// HeightmapGrid converts a grey image into an elevation grid.
//
// The image's luminance is read at 16-bit precision, so 16-bit grey PNGs
// keep their full range.
func HeightmapGrid(img image.Image, opts LoadOptions) (*Grid, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	ref := opts.Ref
	ref.Geographic = opts.Geographic || ref.Geographic
	if opts.CRS != "" {
		ref.CRS = opts.CRS
	}
	if ref.CellWidth == 0 && ref.CellHeight == 0 {
		ref.CellWidth, ref.CellHeight = 1, 1
	}

	values := make([]float64, width*height)
	valid := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			sample := math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
			i := y*width + x
			if opts.NoData != nil && sample == *opts.NoData {
				continue
			}
			values[i] = opts.Offset + scale*sample
			valid[i] = true
		}
	}

	return NewGrid(width, height, values, valid, ref)
}

// GridInfo summarises a loaded grid.
type GridInfo struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	ValidCells int     `json:"valid_cells"`
	MinValue   float64 `json:"min_value"`
	MaxValue   float64 `json:"max_value"`
	CellSize   float64 `json:"cell_size"`
	TotalArea  float64 `json:"total_area"`
	Ref        GeoRef  `json:"ref"`
}

// Info loads a grid through the cache and describes it.
func Info(cache *GridCache, path string, opts LoadOptions) (*GridInfo, error) {
	g, err := cache.Load(path, opts)
	if err != nil {
		return nil, err
	}

	info := &GridInfo{
		Width:    g.Width,
		Height:   g.Height,
		MinValue: math.Inf(1),
		MaxValue: math.Inf(-1),
		Ref:      g.Ref,
	}
	for i, v := range g.Values {
		if !g.IsValid(i) {
			continue
		}
		info.ValidCells++
		info.MinValue = math.Min(info.MinValue, v)
		info.MaxValue = math.Max(info.MaxValue, v)
	}
	if info.ValidCells == 0 {
		info.MinValue, info.MaxValue = 0, 0
	}

	m := g.Metrics(0)
	info.CellSize = m.CellSize
	info.TotalArea = m.MaskArea(g.ValidMask())
	return info, nil
}
