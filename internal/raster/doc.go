// Package raster provides the gridded inputs of the lineament pipeline.
//
// This package holds the elevation grid, its georeference, boolean masks over
// the same lattice, per-cell area, region-of-interest rasterization and the
// loaders that bring elevation data into memory. Nothing in this package
// performs analysis; it only describes where cells are and how large they are.
//
// # Coordinate System
//
// Grids are stored row-major with row 0 at the top (north) edge:
//   - col: horizontal index (0 = westernmost column)
//   - row: vertical index (0 = northernmost row)
//   - Index = row*Width + col
//
// The georeference anchors the top-left corner of cell (0,0) at
// (OriginX, OriginY). Cell widths and heights are positive; Y decreases as
// the row index increases. Cell centres are used whenever a world coordinate
// has to be assigned to a cell.
//
// # Valid Data
//
// Every grid carries an optional validity mask. A nil mask means all cells
// hold data. Values in valid cells must be finite; Validate rejects grids
// that violate this before they reach the pipeline.
//
// # Thread Safety
//
// Grid, Mask and Metrics are never mutated after construction and may be
// shared between goroutines. GridCache is safe for concurrent use.
package raster
