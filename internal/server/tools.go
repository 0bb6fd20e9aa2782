package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool's "path" argument.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the comic page image (PNG, JPEG, GIF, BMP, TIFF or WebP)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "bubble_page_info",
			Description: "Load a comic page and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "bubble_find_text",
			Description: "Find the speech bubble around a pixel and return bounding boxes of the glyphs inside it, in page coordinates. Returns found=false when no bubble with enough text exists there.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate of a pixel inside the bubble (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate of a pixel inside the bubble (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "bubble_scan_page",
			Description: "Scan a whole comic page for speech bubbles and return every bubble's boundary and glyph bounding boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "bubble_render_overlay",
			Description: "Scan a comic page and write a PNG copy with every glyph bounding box outlined.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Path of the PNG file to write",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as #RRGGBB. Defaults to the configured colour",
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw each bubble's index next to it",
						"default":     false,
					},
				},
				"required": []string{"path", "output"},
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
