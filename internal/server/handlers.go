package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/bubbleseg/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "bubble_find_text").
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

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool execution failed")
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "bubble_page_info":
		return s.handlePageInfo(args)
	case "bubble_find_text":
		return s.handleFindText(args)
	case "bubble_scan_page":
		return s.handleScanPage(args)
	case "bubble_render_overlay":
		return s.handleRenderOverlay(args)
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePageInfo(args json.RawMessage) (interface{}, error) {
	var a pageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type findTextArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleFindText(args json.RawMessage) (interface{}, error) {
	var a findTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	grid, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	return s.segmenter.FindText(grid, a.X, a.Y)
}

func (s *Server) handleScanPage(args json.RawMessage) (interface{}, error) {
	var a pageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	grid, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	return s.segmenter.ScanPage(grid), nil
}

type renderOverlayArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Color  string `json:"color"`
	Labels *bool  `json:"labels"`
}

type renderOverlayResult struct {
	Output string `json:"output"`
	*imaging.OverlayResult
}

func (s *Server) handleRenderOverlay(args json.RawMessage) (interface{}, error) {
	var a renderOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if a.Color == "" {
		a.Color = s.overlay.Color
	}
	labels := s.overlay.Labels
	if a.Labels != nil {
		labels = *a.Labels
	}

	page, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	grid, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}

	report := s.segmenter.ScanPage(grid)
	canvas, res, err := imaging.RenderOverlay(page, report.Bubbles, imaging.OverlayOptions{
		BoxColor: a.Color,
		Margin:   s.segmenter.Params().CharMargin,
		Labels:   labels,
	})
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveOverlay(a.Output, canvas); err != nil {
		return nil, err
	}
	return &renderOverlayResult{Output: a.Output, OverlayResult: res}, nil
}
