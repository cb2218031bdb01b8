package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties returns the schema properties shared by every tool
// that takes an image.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the scan image (PNG, JPEG or GIF). Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Scan image as base64 (a data: URL prefix is accepted). Used when path is empty.",
		},
	}
}

// withProperties merges extra into the image source properties.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := imageSourceProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var confidenceProperty = map[string]interface{}{
	"type":        "number",
	"minimum":     0,
	"maximum":     1,
	"description": "Classifier confidence between 0 and 1",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load a scan image and return its dimensions, format, size and the reference length that seeds region detection.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a scan image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},

		// Overlay Operations
		{
			Name:        "overlay_process",
			Description: "Build the review overlay for a classified scan: tinted base, dark wash, edge highlights and a ruler grid. Positive scans also get regions of interest, outlined on the image unless annotate is false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"positive": map[string]interface{}{
						"type":        "boolean",
						"description": "Classification result. Regions are only detected for positive scans.",
					},
					"confidence": confidenceProperty,
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline detected regions on the returned image. Defaults to the server setting.",
					},
				}),
				"required": []string{"positive", "confidence"},
			},
		},
		{
			Name:        "overlay_scan_view",
			Description: "Render the plain tinted scan with a dense 20px measurement grid, without edges or regions.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},
		{
			Name:        "overlay_edges",
			Description: "Return the edge highlight layer: pale cyan where the Sobel gradient magnitude exceeds 30, transparent elsewhere.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"raw": map[string]interface{}{
						"type":        "boolean",
						"description": "Detect edges on the original pixels instead of the tinted scan. Default false.",
						"default":     false,
					},
				}),
			},
		},

		// Region Operations
		{
			Name:        "overlay_detect_regions",
			Description: "Detect regions of interest on the 384x384 reference canvas. Placement is deterministic for a given reference length and confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"reference_length": map[string]interface{}{
						"type":        "integer",
						"description": "Seed length. Defaults to the base64 length of the given image.",
					},
					"confidence": confidenceProperty,
				}),
				"required": []string{"confidence"},
			},
		},
		{
			Name:        "overlay_zoom_region",
			Description: "Crop one detected region out of the overlay and enlarge it for closer review. Also reports the mean and dominant colors of that region in the source scan.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"confidence": confidenceProperty,
					"region_id": map[string]interface{}{
						"type":        "integer",
						"description": "1-based region id. Default 1.",
						"default":     1,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the crop. Default 2.0",
						"default":     2.0,
					},
				}),
				"required": []string{"confidence"},
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
