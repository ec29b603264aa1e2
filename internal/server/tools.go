package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// demProperties describes how a DEM file is located and georeferenced.
// Every tool that reads a DEM accepts them.
func demProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the DEM (.asc ESRI ASCII grid, or .png/.tif 16-bit heightmap)",
		},
		"geographic": map[string]interface{}{
			"type":        "boolean",
			"description": "Coordinates are longitude/latitude degrees; areas and distances become geodesic metres",
		},
		"crs": map[string]interface{}{
			"type":        "string",
			"description": "Coordinate reference label, informational only (e.g. EPSG:32643)",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: metres per grey level. Default 1",
		},
		"offset": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: elevation of grey level 0",
		},
		"nodata": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: grey level that marks missing data",
		},
		"origin_x": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: X of the top-left corner",
		},
		"origin_y": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: Y of the top-left corner",
		},
		"cell_size": map[string]interface{}{
			"type":        "number",
			"description": "Heightmap only: cell edge in CRS units. Default 1",
		},
	}
}

// analysisProperties extends the DEM properties with the shared analysis
// parameters. Omitted parameters fall back to the server configuration.
func analysisProperties(extra map[string]interface{}) map[string]interface{} {
	props := demProperties()
	props["region"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional GeoJSON FeatureCollection of polygons bounding the study area",
	}
	props["percentile"] = map[string]interface{}{
		"type":        "number",
		"description": "Magnitude percentile used as zone threshold (85 keeps the top 15%)",
		"minimum":     0,
		"maximum":     100,
	}
	props["max_cell_budget"] = map[string]interface{}{
		"type":        "integer",
		"description": "Cell count above which percentile and distance computations are approximated",
	}
	props["cell_size_override"] = map[string]interface{}{
		"type":        "number",
		"description": "Nominal cell size in metres, replacing the georeferenced one",
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var (
	depositsProperty = map[string]interface{}{
		"type":        "string",
		"description": "GeoJSON FeatureCollection of deposit points",
	}
	faultsProperty = map[string]interface{}{
		"type":        "string",
		"description": "GeoJSON FeatureCollection of fault lines or polygons",
	}
	percentilesProperty = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "number"},
		"description": "Percentiles for the trade-off table, reported in this order (e.g. [70,75,80,85,90,95])",
	}
	bufferDistancesProperty = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "number"},
		"description": "Fault buffer distances in metres (grid units for projected grids), e.g. [1000,3000,6000]",
	}
	binWidthProperty = map[string]interface{}{
		"type":        "number",
		"description": "Orientation bin width in degrees; must divide 180. Default 10",
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "dem_load",
			Description: "Load a DEM and return its size, elevation range, georeference, cell size and total area. The grid stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": demProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "lineament_analyze",
			Description: "Run the full lineament pipeline: Sobel gradient, percentile threshold, zone mask, strike histogram, edge distances, deposit sampling and enrichment, percentile trade-off and fault buffer overlap.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": analysisProperties(map[string]interface{}{
					"deposits":         depositsProperty,
					"faults":           faultsProperty,
					"percentiles":      percentilesProperty,
					"buffer_distances": bufferDistancesProperty,
					"bin_width":        binWidthProperty,
					"include_records": map[string]interface{}{
						"type":        "boolean",
						"description": "Return one record per deposit with zone membership and distances",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "lineament_tradeoff",
			Description: "Repeat threshold, zone mask and deposit enrichment for each percentile. Shows how zone area share and enrichment index trade off.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": analysisProperties(map[string]interface{}{
					"deposits":    depositsProperty,
					"percentiles": percentilesProperty,
				}),
				"required": []string{"path", "deposits"},
			},
		},
		{
			Name:        "lineament_orientation",
			Description: "Histogram of lineament strike (0-180 degrees) over the high-gradient zone, with the dominant strike.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": analysisProperties(map[string]interface{}{
					"bin_width": binWidthProperty,
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "lineament_overlap",
			Description: "Buffer fault geometry by each distance and score the zone against it with area precision, recall and F1.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": analysisProperties(map[string]interface{}{
					"faults":           faultsProperty,
					"buffer_distances": bufferDistancesProperty,
				}),
				"required": []string{"path", "faults"},
			},
		},
		{
			Name:        "lineament_quicklook",
			Description: "Render gradient magnitude as a colour-ramped PNG with the zone mask blended on top. Returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": analysisProperties(map[string]interface{}{
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest edge of the preview in pixels. Default 1024",
						"default":     1024,
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
