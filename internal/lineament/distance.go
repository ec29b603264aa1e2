package lineament

import (
	"math"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// edtInf stands in for infinity in the squared distance transform. It is
// finite so the parabola intersections stay well defined.
const edtInf = 1e20

// DistanceField holds Euclidean distances to the zone boundary in length
// units.
type DistanceField struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize float64 `json:"cell_size"`

	// Inside is, for zone cells, the distance to the nearest non-zone cell.
	// It is 0 for every non-zone cell.
	Inside []float64 `json:"-"`

	// Outside is, for non-zone cells, the distance to the nearest zone cell.
	// It is 0 for every zone cell.
	Outside []float64 `json:"-"`

	// Edge is the distance from each cell to the boundary between the two
	// classes: max(Inside, Outside) less one grid step, never negative. A
	// cell with a 4-neighbour of the opposite class reads exactly 0.
	Edge []float64 `json:"-"`

	// Approximate is true when the grid exceeded the cell budget and the
	// transform ran on a lattice coarsened by Factor.
	Approximate bool `json:"approximate"`
	Factor      int  `json:"factor"`
}

// ComputeDistance runs exact Euclidean distance transforms on both classes
// of the mask.
//
// Distances are measured between cell centres in cells, then scaled by
// cellSize. When the mask has no zone cells, or no non-zone cells, the
// missing distance is undefined; it is reported as the diagonal of the grid
// extent so every value stays finite.
//
// When maxCells is positive and the mask has more cells, the mask is sampled
// at the centre of k x k blocks, k = ceil(sqrt(cells/maxCells)), the
// transform runs on that lattice with cell size k*cellSize, and each cell
// takes the value of its block.
func ComputeDistance(mask *raster.Mask, cellSize float64, maxCells int) *DistanceField {
	w, h := mask.Width, mask.Height
	if maxCells <= 0 || w*h <= maxCells {
		d := exactDistance(mask, cellSize, math.Hypot(float64(w), float64(h))*cellSize)
		d.Factor = 1
		return d
	}

	k := int(math.Ceil(math.Sqrt(float64(w*h) / float64(maxCells))))
	if k < 2 {
		k = 2
	}
	cw, ch := (w+k-1)/k, (h+k-1)/k
	coarse := raster.NewMask(cw, ch)
	for r := 0; r < ch; r++ {
		for c := 0; c < cw; c++ {
			sc := clamp(c*k+k/2, 0, w-1)
			sr := clamp(r*k+k/2, 0, h-1)
			coarse.Bits[r*cw+c] = mask.Bits[sr*w+sc]
		}
	}

	cd := exactDistance(coarse, cellSize*float64(k), math.Hypot(float64(w), float64(h))*cellSize)

	d := &DistanceField{
		Width:       w,
		Height:      h,
		CellSize:    cellSize,
		Inside:      make([]float64, w*h),
		Outside:     make([]float64, w*h),
		Edge:        make([]float64, w*h),
		Approximate: true,
		Factor:      k,
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			src := (r/k)*cw + c/k
			i := r*w + c
			d.Inside[i] = cd.Inside[src]
			d.Outside[i] = cd.Outside[src]
			d.Edge[i] = cd.Edge[src]
		}
	}
	return d
}

func exactDistance(mask *raster.Mask, cellSize, extent float64) *DistanceField {
	w, h := mask.Width, mask.Height
	n := w * h
	d := &DistanceField{
		Width:    w,
		Height:   h,
		CellSize: cellSize,
		Inside:   make([]float64, n),
		Outside:  make([]float64, n),
		Edge:     make([]float64, n),
	}

	zone := mask.Count()
	switch {
	case zone == 0:
		for i := range d.Outside {
			d.Outside[i] = extent
			d.Edge[i] = extent
		}
		return d
	case zone == n:
		for i := range d.Inside {
			d.Inside[i] = extent
			d.Edge[i] = extent
		}
		return d
	}

	background := make([]bool, n)
	for i, b := range mask.Bits {
		background[i] = !b
	}
	toBackground := squaredEDT(background, w, h)
	toZone := squaredEDT(mask.Bits, w, h)

	for i, b := range mask.Bits {
		var cells float64
		if b {
			cells = math.Sqrt(toBackground[i])
			d.Inside[i] = cells * cellSize
		} else {
			cells = math.Sqrt(toZone[i])
			d.Outside[i] = cells * cellSize
		}
		d.Edge[i] = math.Max(cells-1, 0) * cellSize
	}
	return d
}

// squaredEDT returns, for every cell, the squared distance in cells to the
// nearest cell where features is true. Felzenszwalb & Huttenlocher's
// separable lower-envelope algorithm: columns first, then rows.
func squaredEDT(features []bool, w, h int) []float64 {
	out := make([]float64, w*h)
	for i, b := range features {
		if !b {
			out[i] = edtInf
		}
	}

	size := w
	if h > size {
		size = h
	}
	f := make([]float64, size)
	dt := make([]float64, size)
	v := make([]int, size)
	z := make([]float64, size+1)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = out[y*w+x]
		}
		edt1D(f[:h], dt[:h], v, z)
		for y := 0; y < h; y++ {
			out[y*w+x] = dt[y]
		}
	}

	for y := 0; y < h; y++ {
		copy(f[:w], out[y*w:(y+1)*w])
		edt1D(f[:w], dt[:w], v, z)
		copy(out[y*w:(y+1)*w], dt[:w])
	}
	return out
}

// edt1D computes the 1-D squared distance transform of sampled function f
// into d. v and z are scratch buffers of at least len(f) and len(f)+1.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// intersect returns the abscissa where the parabolas rooted at q and p meet.
func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}

// Extent returns the distance used when one mask class is absent.
func (d *DistanceField) Extent() float64 {
	return math.Hypot(float64(d.Width), float64(d.Height)) * d.CellSize
}
