// Package server implements the MCP (Model Context Protocol) server for the
// bubble segmentation pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes speech-bubble
// location and glyph segmentation through the MCP protocol, so MCP clients
// can ask where the characters inside a comic bubble are before running
// their own recognition.
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
//   - bubble_page_info: Load a page and get its metadata
//   - bubble_find_text: Glyph boxes of the bubble around a pixel
//   - bubble_scan_page: Glyph boxes of every bubble on the page
//   - bubble_render_overlay: Write a PNG with every glyph box outlined
//
// # Image Caching
//
// Decoded pages and their grayscale grids are cached by path for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A seed that finds no bubble is not an error: bubble_find_text returns a
// result with found=false.
package server
