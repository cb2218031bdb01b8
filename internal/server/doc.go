// Package server implements the MCP (Model Context Protocol) server for scan overlays.
//
// This package provides a JSON-RPC 2.0 server that exposes the overlay pipeline
// to MCP-compatible clients, so a reviewing application can hand over a scan and
// its classification and get back an annotated overlay plus the flagged regions.
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
// Image Information:
//   - image_load: Load a scan and get metadata
//   - image_dimensions: Get width and height
//
// Overlay Operations:
//   - overlay_process: Full overlay for a classified scan
//   - overlay_scan_view: Tinted scan with a measurement grid
//   - overlay_edges: Edge highlight layer only
//
// Region Operations:
//   - overlay_detect_regions: Regions of interest on the reference canvas
//   - overlay_zoom_region: Enlarged crop of one region, with its source colors
//
// Every tool accepts the scan either as a file path or as an inline base64
// payload. Both forms seed region detection with the base64 length, so they
// yield the same regions for the same image.
//
// # Image Caching
//
// Images loaded by path are cached, up to a configurable number of entries.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
package server
