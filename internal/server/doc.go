// Package server implements the MCP (Model Context Protocol) server for lineament analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes the lineament
// pipeline through the MCP protocol, so an MCP client can load a DEM, derive
// high-gradient zones and test them against deposit and fault datasets.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Grid Information:
//   - dem_load: Load a DEM and describe its extent, elevation range and area
//
// Lineament Analysis:
//   - lineament_analyze: Full pipeline, one report per call with a run ID
//   - lineament_tradeoff: Zone share and deposit enrichment per percentile
//   - lineament_orientation: Strike histogram of the zone
//   - lineament_overlap: Precision, recall and F1 against buffered faults
//   - lineament_quicklook: Magnitude preview with the zone overlaid
//
// DEMs are read from ESRI ASCII grids or 16-bit grey heightmaps. Region,
// deposit and fault inputs are paths to GeoJSON FeatureCollections in the
// DEM's coordinate system.
//
// # Defaults
//
// Analysis parameters omitted from a call (percentile, trade-off list, bin
// width, buffer distances, cell budget, cell size override) are taken from
// the config.Config the server was created with.
//
// # Grid Caching
//
// The server maintains an in-memory cache of loaded DEMs keyed by path.
// Georeferencing options apply on first load only. The cache persists for
// the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (malformed params) or
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Per-percentile and per-buffer failures are not tool errors; they are
// reported in the status of their own result entry.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
