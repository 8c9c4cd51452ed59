package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/imagedata-mcp/internal/imagedata"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "imagedata_load", "imagedata_bounds").
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Loads image data from the store
//  3. Calls the matching ImageData operation
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Loading and shape queries
	case "imagedata_load":
		return s.handleLoad(args)
	case "imagedata_bounds":
		return s.handleBounds(args)
	case "imagedata_array_bounds":
		return s.handleArrayBounds(args)
	case "imagedata_data_mask":
		return s.handleDataMask(args)

	// Sampling
	case "imagedata_sample":
		return s.handleSample(args)
	case "imagedata_region_stats":
		return s.handleRegionStats(args)

	// Metadata
	case "imagedata_metadata_get":
		return s.handleMetadataGet(args)
	case "imagedata_metadata_set":
		return s.handleMetadataSet(args)
	case "imagedata_metadata_delete":
		return s.handleMetadataDelete(args)
	case "imagedata_metadata_replace":
		return s.handleMetadataReplace(args)

	// Rendering
	case "imagedata_render":
		return s.handleRender(args)

	// Cache management
	case "imagedata_evict":
		return s.handleEvict(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// loadPath decodes the common {"path": ...} argument and loads the image data.
func (s *Server) loadPath(args json.RawMessage) (string, *imagedata.ImageData, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", nil, err
	}
	if a.Path == "" {
		return "", nil, errors.New("path is required")
	}
	d, err := s.store.Load(a.Path)
	if err != nil {
		return "", nil, err
	}
	return a.Path, d, nil
}

// === Loading and Shape Handlers ===

type loadArgs struct {
	Path       string `json:"path"`
	Transposed *bool  `json:"transposed,omitempty"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	if a.Transposed != nil {
		d.SetTransposed(*a.Transposed)
	}
	return imagedata.Summarize(path, d), nil
}

func (s *Server) handleBounds(args json.RawMessage) (interface{}, error) {
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	return d.Bounds(), nil
}

func (s *Server) handleArrayBounds(args json.RawMessage) (interface{}, error) {
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	return d.ArrayBounds(), nil
}

func (s *Server) handleDataMask(args json.RawMessage) (interface{}, error) {
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	_, _, err = d.DataMask()
	return nil, err
}

// === Sampling Handlers ===

type sampleArgs struct {
	Path   string            `json:"path"`
	Points []imagedata.Point `json:"points"`
}

// SampleResults contains the samples in request order.
type SampleResults struct {
	Samples []imagedata.SampleResult `json:"samples"`
}

func (s *Server) handleSample(args json.RawMessage) (interface{}, error) {
	var a sampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("points must not be empty")
	}
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	samples, err := imagedata.SampleMulti(d, a.Points)
	if err != nil {
		return nil, err
	}
	return &SampleResults{Samples: samples}, nil
}

type regionArgs struct {
	Path   string            `json:"path"`
	Region *imagedata.Region `json:"region"`
}

func (s *Server) handleRegionStats(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Region == nil {
		return nil, errors.New("region is required")
	}
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	return imagedata.Stats(d, *a.Region)
}

// === Metadata Handlers ===

// MetadataResult is the metadata mapping of one image.
type MetadataResult struct {
	Path     string                 `json:"path"`
	Keys     []string               `json:"keys"`
	Metadata map[string]interface{} `json:"metadata"`
}

func metadataResult(path string, d *imagedata.ImageData) *MetadataResult {
	return &MetadataResult{
		Path:     path,
		Keys:     d.Metadata().Keys(),
		Metadata: d.Metadata().Snapshot(),
	}
}

func (s *Server) handleMetadataGet(args json.RawMessage) (interface{}, error) {
	path, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	return metadataResult(path, d), nil
}

type metadataSetArgs struct {
	Path  string      `json:"path"`
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func (s *Server) handleMetadataSet(args json.RawMessage) (interface{}, error) {
	var a metadataSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Key == "" {
		return nil, errors.New("key is required")
	}
	path, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	d.Metadata().Set(a.Key, a.Value)
	return metadataResult(path, d), nil
}

type metadataDeleteArgs struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

func (s *Server) handleMetadataDelete(args json.RawMessage) (interface{}, error) {
	var a metadataDeleteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	d.Metadata().Delete(a.Key)
	return metadataResult(path, d), nil
}

type metadataReplaceArgs struct {
	Path     string                 `json:"path"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *Server) handleMetadataReplace(args json.RawMessage) (interface{}, error) {
	var a metadataReplaceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Metadata == nil {
		return nil, errors.New("metadata is required")
	}
	path, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	d.SetMetadata(a.Metadata)
	return metadataResult(path, d), nil
}

// === Rendering Handlers ===

type renderArgs struct {
	Path       string            `json:"path"`
	Colormap   string            `json:"colormap"`
	OutputPath string            `json:"output_path"`
	Region     *imagedata.Region `json:"region"`
}

// RenderResult contains rendered image data
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Colormap    string `json:"colormap,omitempty"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	OutputPath  string `json:"output_path,omitempty"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Colormap == "" {
		a.Colormap = s.cfg.Colormap
	}
	cmap, err := imagedata.LookupColormap(a.Colormap)
	if err != nil {
		return nil, err
	}
	_, d, err := s.loadPath(args)
	if err != nil {
		return nil, err
	}
	if a.Region != nil {
		if d, err = imagedata.Crop(d, *a.Region); err != nil {
			return nil, err
		}
	}

	img, err := imagedata.Render(d, cmap)
	if err != nil {
		return nil, err
	}
	encoded, err := imagedata.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imagedata.SaveImage(a.OutputPath, img); err != nil {
			return nil, err
		}
	}

	res := &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		OutputPath:  a.OutputPath,
	}
	// The colormap only applies to single-channel data.
	if d.ValueDepth() == 1 {
		res.Colormap = cmap.Name
	}
	return res, nil
}

// === Cache Management Handlers ===

// EvictResult reports the evicted path and how many entries are still cached.
type EvictResult struct {
	Evicted string `json:"evicted"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleEvict(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.store.Evict(a.Path)
	return &EvictResult{Evicted: a.Path, Cached: s.store.Len()}, nil
}
