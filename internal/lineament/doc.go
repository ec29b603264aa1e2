// Package lineament derives high-gradient lineament zones from an elevation
// grid.
//
// The package implements the raster half of the morphostructural analysis:
//
//  1. Gradient: Sobel derivatives, magnitude and strike orientation
//  2. Threshold: adaptive magnitude cutoff at a percentile of the region
//  3. Zone mask: cells at or above the cutoff, with area bookkeeping
//  4. Orientation histogram: strike distribution of zone cells
//  5. Distance field: Euclidean distance to the zone boundary
//
// Every stage is a pure function of its inputs. Results are new values; no
// stage mutates a grid or mask it was given, so results from one stage can be
// shared by concurrent consumers.
//
// # Orientation Convention
//
// Orientations are strikes in degrees folded into [0, 180). The gradient
// direction is perpendicular to the lineament it marks, so the raw gradient
// angle is rotated by 90° before folding. Orientation is measured
// counter-clockwise from the grid's +X (column) axis with +Y pointing down
// the rows, matching the Sobel kernels.
//
// # Resource Budget
//
// Percentile and distance computations accept a maximum cell count. Above
// it they fall back to a deterministic coarser computation and tag their
// result as approximate; they never fail because a grid is large.
package lineament
