package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/analysis"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/association"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/raster"
)

// defaultQuicklookSize is the longest preview edge when max_size is omitted.
const defaultQuicklookSize = 1024

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dem_load", "lineament_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if s.cfg.Debug() {
		log.Printf("tools/call %s", params.Name)
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("tools/call %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills omitted analysis parameters from the server configuration
//  3. Loads the DEM from cache and any GeoJSON inputs from disk
//  4. Calls the analysis pipeline
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "dem_load":
		return s.handleDemLoad(args)
	case "lineament_analyze":
		return s.handleAnalyze(args)
	case "lineament_tradeoff":
		return s.handleTradeOff(args)
	case "lineament_orientation":
		return s.handleOrientation(args)
	case "lineament_overlap":
		return s.handleOverlap(args)
	case "lineament_quicklook":
		return s.handleQuicklook(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument Decoding ===

type demArgs struct {
	Path       string   `json:"path"`
	Geographic bool     `json:"geographic"`
	CRS        string   `json:"crs"`
	Scale      float64  `json:"scale"`
	Offset     float64  `json:"offset"`
	NoData     *float64 `json:"nodata"`
	OriginX    float64  `json:"origin_x"`
	OriginY    float64  `json:"origin_y"`
	CellSize   float64  `json:"cell_size"`
}

func (a demArgs) options() raster.LoadOptions {
	cell := a.CellSize
	if cell == 0 {
		cell = 1.0
	}
	return raster.LoadOptions{
		Geographic: a.Geographic,
		CRS:        a.CRS,
		Scale:      a.Scale,
		Offset:     a.Offset,
		NoData:     a.NoData,
		Ref: raster.GeoRef{
			OriginX:    a.OriginX,
			OriginY:    a.OriginY,
			CellWidth:  cell,
			CellHeight: cell,
			CRS:        a.CRS,
			Geographic: a.Geographic,
		},
	}
}

type analysisArgs struct {
	demArgs

	Region   string `json:"region"`
	Deposits string `json:"deposits"`
	Faults   string `json:"faults"`

	Percentile       *float64  `json:"percentile"`
	Percentiles      []float64 `json:"percentiles"`
	BinWidth         *float64  `json:"bin_width"`
	BufferDistances  []float64 `json:"buffer_distances"`
	MaxCellBudget    *int      `json:"max_cell_budget"`
	CellSizeOverride *float64  `json:"cell_size_override"`

	IncludeRecords bool `json:"include_records"`
	MaxSize        int  `json:"max_size"`
}

// params overlays the call's arguments on the configured defaults.
func (s *Server) params(a *analysisArgs) analysis.Params {
	p := analysis.DefaultParams(s.cfg)
	if a.Percentile != nil {
		p.Percentile = *a.Percentile
	}
	if a.Percentiles != nil {
		p.Percentiles = a.Percentiles
	}
	if a.BinWidth != nil {
		p.BinWidth = *a.BinWidth
	}
	if a.BufferDistances != nil {
		p.BufferDistances = a.BufferDistances
	}
	if a.MaxCellBudget != nil {
		p.MaxCellBudget = *a.MaxCellBudget
	}
	if a.CellSizeOverride != nil {
		p.CellSizeOverride = *a.CellSizeOverride
	}
	return p
}

// input loads the DEM through the cache and reads the GeoJSON files named
// by the arguments.
func (s *Server) input(a *analysisArgs) (analysis.Input, error) {
	var in analysis.Input
	if a.Path == "" {
		return in, fmt.Errorf("path is required")
	}

	g, err := s.cache.Load(a.Path, a.options())
	if err != nil {
		return in, err
	}
	in.Grid = g

	if a.Region != "" {
		fs, err := association.LoadFeatures(a.Region)
		if err != nil {
			return in, fmt.Errorf("region: %w", err)
		}
		region, err := association.RegionFromFeatures(fs)
		if err != nil {
			return in, fmt.Errorf("region: %w", err)
		}
		in.Region = region
	}

	if a.Deposits != "" {
		in.Deposits, err = association.LoadFeatures(a.Deposits)
		if err != nil {
			return in, fmt.Errorf("deposits: %w", err)
		}
	}

	if a.Faults != "" {
		fs, err := association.LoadFeatures(a.Faults)
		if err != nil {
			return in, fmt.Errorf("faults: %w", err)
		}
		in.Faults = association.Geometries(fs)
	}
	return in, nil
}

func (s *Server) decodeAnalysis(args json.RawMessage) (*analysisArgs, analysis.Input, analysis.Params, error) {
	var a analysisArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, analysis.Input{}, analysis.Params{}, err
	}
	in, err := s.input(&a)
	if err != nil {
		return nil, analysis.Input{}, analysis.Params{}, err
	}
	return &a, in, s.params(&a), nil
}

// === DEM Handlers ===

func (s *Server) handleDemLoad(args json.RawMessage) (interface{}, error) {
	var a demArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return raster.Info(s.cache, a.Path, a.options())
}

// === Lineament Handlers ===

func (s *Server) handleAnalyze(args json.RawMessage) (interface{}, error) {
	a, in, p, err := s.decodeAnalysis(args)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.Run(context.Background(), in, p)
	if err != nil {
		return nil, err
	}
	if !a.IncludeRecords {
		rep.Deposits = nil
	}
	if s.cfg.Debug() {
		log.Printf("run %s: status %s", rep.RunID, rep.Status)
	}
	return rep, nil
}

func (s *Server) handleTradeOff(args json.RawMessage) (interface{}, error) {
	_, in, p, err := s.decodeAnalysis(args)
	if err != nil {
		return nil, err
	}
	if len(in.Deposits) == 0 {
		return nil, fmt.Errorf("deposits are required")
	}
	results, err := analysis.TradeOff(context.Background(), in, p)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"percentiles": p.Percentiles,
		"results":     results,
	}, nil
}

func (s *Server) handleOrientation(args json.RawMessage) (interface{}, error) {
	_, in, p, err := s.decodeAnalysis(args)
	if err != nil {
		return nil, err
	}
	return analysis.Orientation(in, p)
}

func (s *Server) handleOverlap(args json.RawMessage) (interface{}, error) {
	_, in, p, err := s.decodeAnalysis(args)
	if err != nil {
		return nil, err
	}
	if len(in.Faults) == 0 {
		return nil, fmt.Errorf("faults are required")
	}
	results, err := analysis.Overlap(context.Background(), in, p)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"buffer_distances": p.BufferDistances,
		"results":          results,
	}, nil
}

func (s *Server) handleQuicklook(args json.RawMessage) (interface{}, error) {
	a, in, p, err := s.decodeAnalysis(args)
	if err != nil {
		return nil, err
	}
	if a.MaxSize == 0 {
		a.MaxSize = defaultQuicklookSize
	}
	st, err := analysis.Prepare(in, p)
	if err != nil {
		return nil, err
	}
	f := st.Field
	return raster.Quicklook(f.Magnitude, f.Valid, st.Zone.Mask, f.Width, f.Height, a.MaxSize)
}
