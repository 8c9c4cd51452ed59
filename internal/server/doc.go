// Package server implements the MCP (Model Context Protocol) server for image data.
//
// This package provides a JSON-RPC 2.0 server that loads image files as
// imagedata.ImageData values and exposes their queries, metadata and rendering to
// MCP-compatible clients.
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
// Loading and shape queries:
//   - imagedata_load: Load a file and summarize it
//   - imagedata_bounds: Value bounds (min, max)
//   - imagedata_array_bounds: Index ranges along X and Y
//   - imagedata_data_mask: Always fails; masking is not supported
//
// Sampling:
//   - imagedata_sample: Values at one or more pixels
//   - imagedata_region_stats: Per-channel min, max and mean over a region
//
// Metadata:
//   - imagedata_metadata_get: Read the mapping
//   - imagedata_metadata_set: Set one entry
//   - imagedata_metadata_delete: Delete one entry
//   - imagedata_metadata_replace: Replace the whole mapping
//
// Rendering:
//   - imagedata_render: PNG preview of the whole image or a region, optionally written to disk
//
// Cache management:
//   - imagedata_evict: Drop cached data for a path
//
// # Image Data Cache
//
// Loaded data is kept in an imagedata.Store keyed by path, so metadata edits and
// the transposed flag persist across tool calls until the entry is evicted or pushed
// out by the configured cache limit.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(config.Default())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
