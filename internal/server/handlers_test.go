package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/bubbleseg/internal/detection"
)

// createBubblePage writes a 200x150 grey page holding one white bubble
// (y 20..99, x 20..139) with two 10x10 ink squares at y 50..59, x 50..59 and
// x 80..89. It returns the PNG path.
func createBubblePage(t *testing.T) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 200, 150))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	fill := func(y0, y1, x0, x1 int, v uint8) {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				img.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
	fill(20, 99, 20, 139, 255)
	fill(50, 59, 50, 59, 0)
	fill(50, 59, 80, 89, 0)

	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode page: %v", err)
	}
	return path
}

var wantBubbleBoxes = []detection.Boundary{
	{YMin: 50, YMax: 59, XMin: 50, XMax: 59},
	{YMin: 50, YMax: 59, XMin: 80, XMax: 89},
}

// callTool runs one tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func assertBoxes(t *testing.T, got []detection.Boundary) {
	t.Helper()
	if len(got) != len(wantBubbleBoxes) {
		t.Fatalf("got %d boxes %v, want %v", len(got), got, wantBubbleBoxes)
	}
	for i := range wantBubbleBoxes {
		if got[i] != wantBubbleBoxes[i] {
			t.Errorf("box %d: got %v, want %v", i, got[i], wantBubbleBoxes[i])
		}
	}
}

func TestHandleToolsCall_PageInfo(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)

	var info struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Format    string `json:"format"`
		Grayscale bool   `json:"grayscale"`
	}
	resp := callTool(t, s, "bubble_page_info", map[string]interface{}{"path": path}, &info)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if !info.Grayscale {
		t.Error("grey PNG should report grayscale")
	}
}

func TestHandleToolsCall_FindText(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)

	interior := detection.Boundary{YMin: 20, YMax: 99, XMin: 20, XMax: 139}
	tests := []struct {
		name     string
		x, y     int
		boundary detection.Boundary
	}{
		{"seed inside bubble", 30, 30, interior},
		{"seed on ink", 55, 55, interior},
		// The seed itself is part of the boundary.
		{"seed on page background", 5, 5, detection.Boundary{YMin: 5, YMax: 99, XMin: 5, XMax: 139}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res detection.BubbleText
			resp := callTool(t, s, "bubble_find_text", map[string]interface{}{
				"path": path, "x": tt.x, "y": tt.y,
			}, &res)
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %+v", resp.Error)
			}
			if !res.Found {
				t.Fatal("expected a bubble to be found")
			}
			if res.Boundary != tt.boundary {
				t.Errorf("boundary: got %v, want %v", res.Boundary, tt.boundary)
			}
			assertBoxes(t, res.Boxes)
		})
	}
}

func TestHandleToolsCall_FindTextOutOfBounds(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)

	resp := callTool(t, s, "bubble_find_text", map[string]interface{}{
		"path": path, "x": 500, "y": 10,
	}, nil)
	if resp.Error == nil {
		t.Fatal("expected an error for a seed outside the page")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_ScanPage(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)

	var report detection.ScanReport
	resp := callTool(t, s, "bubble_scan_page", map[string]interface{}{"path": path}, &report)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	if report.Width != 200 || report.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", report.Width, report.Height)
	}
	if report.Count != 1 || len(report.Bubbles) != 1 {
		t.Fatalf("got %d bubbles, want 1", report.Count)
	}
	if report.Bubbles[0].Index != 1 {
		t.Errorf("index: got %d, want 1", report.Bubbles[0].Index)
	}
	assertBoxes(t, report.Bubbles[0].Boxes)
}

func TestHandleToolsCall_RenderOverlay(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)
	output := filepath.Join(t.TempDir(), "overlay.png")

	var res struct {
		Output  string `json:"output"`
		Bubbles int    `json:"bubbles"`
		Boxes   int    `json:"boxes"`
	}
	resp := callTool(t, s, "bubble_render_overlay", map[string]interface{}{
		"path": path, "output": output, "color": "#FF0000",
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	if res.Output != output || res.Bubbles != 1 || res.Boxes != 2 {
		t.Errorf("result: got %+v", res)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("overlay not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("overlay is not a PNG: %v", err)
	}

	// First box expanded by the two-pixel character margin.
	r, g, b, _ := img.At(48, 48).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("outline pixel: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t)
	path := createBubblePage(t)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
		{"missing file", "bubble_scan_page", map[string]interface{}{"path": "/nonexistent/page.png"}},
		{"missing output", "bubble_render_overlay", map[string]interface{}{"path": path}},
		{"bad color", "bubble_render_overlay", map[string]interface{}{
			"path": path, "output": filepath.Join(t.TempDir(), "x.png"), "color": "green",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}
