package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"bubble_page_info",
		"bubble_find_text",
		"bubble_scan_page",
		"bubble_render_overlay",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if tool.InputSchema["properties"] == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"bubble_page_info", []string{"path"}},
		{"bubble_find_text", []string{"path", "x", "y"}},
		{"bubble_scan_page", []string{"path"}},
		{"bubble_render_overlay", []string{"path", "output"}},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := toolMap[tt.tool]
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			have := make(map[string]bool)
			for _, r := range required {
				have[r] = true
			}
			for _, r := range tt.required {
				if !have[r] {
					t.Errorf("%s should require '%s'", tt.tool, r)
				}
			}
			if len(required) != len(tt.required) {
				t.Errorf("required: got %v, want %v", required, tt.required)
			}
		})
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools: got %T, want []Tool", result["tools"])
	}
	if len(tools) != 4 {
		t.Errorf("got %d tools, want 4", len(tools))
	}
}
