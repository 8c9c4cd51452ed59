package server

import "github.com/ironsheep/imagedata-mcp/internal/imagedata"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var regionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Half-open pixel rectangle [x1, x2) x [y1, y2) in display coordinates",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

// pathOnlySchema is the input schema of tools that take nothing but a path.
func pathOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": pathProperty,
		},
		"required": []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Loading and shape queries
		{
			Name:        "imagedata_load",
			Description: "Load an image file as image data and return its width, height, size, value depth, value bounds and array bounds. Loaded data is cached by path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"transposed": map[string]interface{}{
						"type":        "boolean",
						"description": "Optional. Set the transposed flag, which swaps width and height. Omit to keep the current setting.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "imagedata_bounds",
			Description: "Get the minimum and maximum values held by the image data. Empty data reports (0, 0).",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "imagedata_array_bounds",
			Description: "Get the index ranges ((0, width), (0, height)) of the image data, honoring the transposed flag.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "imagedata_data_mask",
			Description: "Request the data mask. Masking is not supported, so this always reports an error.",
			InputSchema: pathOnlySchema(),
		},

		// Sampling
		{
			Name:        "imagedata_sample",
			Description: "Read the values stored at one or more pixels. X runs along the width and Y along the height. Three- and four-channel samples also report a hex color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Pixels to sample, in order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label echoed in the result"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "imagedata_region_stats",
			Description: "Per-channel minimum, maximum and mean over a rectangular region. NaN values are skipped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
				},
				"required": []string{"path", "region"},
			},
		},

		// Metadata
		{
			Name:        "imagedata_metadata_get",
			Description: "Get the metadata mapping attached to the image data. New data starts with empty 'annotations' and 'selections' lists.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "imagedata_metadata_set",
			Description: "Set a single metadata entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Metadata key",
					},
					"value": map[string]interface{}{
						"description": "Any JSON value",
					},
				},
				"required": []string{"path", "key", "value"},
			},
		},
		{
			Name:        "imagedata_metadata_delete",
			Description: "Delete a single metadata entry. Deleting a missing key does nothing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Metadata key",
					},
				},
				"required": []string{"path", "key"},
			},
		},
		{
			Name:        "imagedata_metadata_replace",
			Description: "Replace the whole metadata mapping.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"metadata": map[string]interface{}{
						"type":        "object",
						"description": "New metadata mapping",
					},
				},
				"required": []string{"path", "metadata"},
			},
		},

		// Rendering
		{
			Name:        "imagedata_render",
			Description: "Render the image data to a PNG returned as base64. Single-channel data are mapped through a colormap normalized by the value bounds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"colormap": map[string]interface{}{
						"type":        "string",
						"enum":        imagedata.ColormapNames(),
						"description": "Optional colormap for single-channel data. Defaults to the server setting.",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional. Also write the PNG to this path.",
					},
					"region": regionProperty,
				},
				"required": []string{"path"},
			},
		},

		// Cache management
		{
			Name:        "imagedata_evict",
			Description: "Drop cached image data for a path. The next call reloads the file, resetting metadata and the transposed flag.",
			InputSchema: pathOnlySchema(),
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
