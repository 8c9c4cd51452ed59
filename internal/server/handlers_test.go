package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/imagedata-mcp/internal/imagedata"
)

// createTestImageFile writes a solid width x height PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createGradientFile writes a grayscale horizontal gradient PNG.
func createGradientFile(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / (width - 1))})
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

func TestHandleToolsCall_Load(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var sum imagedata.Summary
	decodeResult(t, callTool(t, s, "imagedata_load", map[string]interface{}{"path": imgPath}), &sum)

	if sum.Path != imgPath {
		t.Errorf("Path: got %s, want %s", sum.Path, imgPath)
	}
	if sum.Format != "png" {
		t.Errorf("Format: got %s, want png", sum.Format)
	}
	if sum.Dimension != "image" {
		t.Errorf("Dimension: got %s, want image", sum.Dimension)
	}
	if sum.Width != 100 || sum.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", sum.Width, sum.Height)
	}
	if sum.Size != 8000 {
		t.Errorf("Size: got %d, want 8000", sum.Size)
	}
	if sum.ValueDepth != 3 {
		t.Errorf("ValueDepth: got %d, want 3", sum.ValueDepth)
	}
	if sum.Bounds != (imagedata.Bounds{Low: 0, High: 255}) {
		t.Errorf("Bounds: got %+v, want {0 255}", sum.Bounds)
	}
	if sum.Masked {
		t.Error("Masked should be false")
	}
}

func TestHandleToolsCall_LoadTransposed(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 40, 10, color.RGBA{0, 255, 0, 255})

	var sum imagedata.Summary
	decodeResult(t, callTool(t, s, "imagedata_load", map[string]interface{}{
		"path":       imgPath,
		"transposed": true,
	}), &sum)
	if !sum.Transposed || sum.Width != 10 || sum.Height != 40 {
		t.Errorf("transposed summary: got %+v", sum)
	}

	// The flag sticks to the cached data until changed again.
	var ab imagedata.ArrayBounds
	decodeResult(t, callTool(t, s, "imagedata_array_bounds", map[string]interface{}{"path": imgPath}), &ab)
	want := imagedata.ArrayBounds{X: imagedata.Range{Low: 0, High: 10}, Y: imagedata.Range{Low: 0, High: 40}}
	if ab != want {
		t.Errorf("ArrayBounds: got %+v, want %+v", ab, want)
	}

	decodeResult(t, callTool(t, s, "imagedata_load", map[string]interface{}{
		"path":       imgPath,
		"transposed": false,
	}), &sum)
	if sum.Transposed || sum.Width != 40 {
		t.Errorf("restored summary: got %+v", sum)
	}
}

func TestHandleToolsCall_Bounds(t *testing.T) {
	s := New(nil)
	imgPath := createGradientFile(t, 16, 4)

	var b imagedata.Bounds
	decodeResult(t, callTool(t, s, "imagedata_bounds", map[string]interface{}{"path": imgPath}), &b)
	if b.Low != 0 || b.High != 255 {
		t.Errorf("Bounds: got %+v, want {0 255}", b)
	}
}

func TestHandleToolsCall_DataMask(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 8, 8, color.White)

	resp := callTool(t, s, "imagedata_data_mask", map[string]interface{}{"path": imgPath})
	if resp.Error == nil {
		t.Fatal("expected an error: masking is not supported")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, imagedata.ErrNotSupported.Error()) {
		t.Errorf("Error data: got %q, want it to mention %q", data, imagedata.ErrNotSupported)
	}
}

func TestHandleToolsCall_Sample(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 6, 4, color.RGBA{255, 128, 0, 255})

	var res SampleResults
	decodeResult(t, callTool(t, s, "imagedata_sample", map[string]interface{}{
		"path": imgPath,
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "origin"},
			{"x": 5, "y": 3},
		},
	}), &res)

	if len(res.Samples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(res.Samples))
	}
	if res.Samples[0].Label != "origin" {
		t.Errorf("Label: got %q, want origin", res.Samples[0].Label)
	}
	for _, sm := range res.Samples {
		if sm.Hex != "#FF8000" {
			t.Errorf("(%d,%d) Hex: got %s, want #FF8000", sm.X, sm.Y, sm.Hex)
		}
		if len(sm.Values) != 3 {
			t.Errorf("(%d,%d) Values: got %v, want 3 channels", sm.X, sm.Y, sm.Values)
		}
	}

	tests := []struct {
		name   string
		points interface{}
	}{
		{"out of bounds", []map[string]int{{"x": 6, "y": 0}}},
		{"no points", []map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "imagedata_sample", map[string]interface{}{"path": imgPath, "points": tt.points})
			if resp.Error == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestHandleToolsCall_RegionStats(t *testing.T) {
	s := New(nil)
	imgPath := createGradientFile(t, 16, 4)

	var st imagedata.RegionStats
	decodeResult(t, callTool(t, s, "imagedata_region_stats", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 1, "y2": 4},
	}), &st)
	if st.Pixels != 4 {
		t.Errorf("Pixels: got %d, want 4", st.Pixels)
	}
	if len(st.Mean) != 1 || st.Mean[0] != 0 {
		t.Errorf("Mean: got %v, want [0] for the dark edge", st.Mean)
	}

	resp := callTool(t, s, "imagedata_region_stats", map[string]interface{}{"path": imgPath})
	if resp.Error == nil {
		t.Error("expected an error without a region")
	}
}

func TestHandleToolsCall_Metadata(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 8, 8, color.Black)
	path := map[string]interface{}{"path": imgPath}

	var md MetadataResult
	decodeResult(t, callTool(t, s, "imagedata_metadata_get", path), &md)
	if len(md.Keys) != 2 || md.Keys[0] != "annotations" || md.Keys[1] != "selections" {
		t.Fatalf("default keys: got %v, want [annotations selections]", md.Keys)
	}

	md = MetadataResult{}
	decodeResult(t, callTool(t, s, "imagedata_metadata_set", map[string]interface{}{
		"path":  imgPath,
		"key":   "label",
		"value": "scan 7",
	}), &md)
	if md.Metadata["label"] != "scan 7" {
		t.Errorf("label: got %v, want scan 7", md.Metadata["label"])
	}

	// A later query sees the edit on the cached data.
	md = MetadataResult{}
	decodeResult(t, callTool(t, s, "imagedata_metadata_get", path), &md)
	if len(md.Keys) != 3 {
		t.Errorf("keys after set: got %v", md.Keys)
	}

	md = MetadataResult{}
	decodeResult(t, callTool(t, s, "imagedata_metadata_delete", map[string]interface{}{
		"path": imgPath,
		"key":  "annotations",
	}), &md)
	if _, ok := md.Metadata["annotations"]; ok {
		t.Error("annotations should be deleted")
	}

	md = MetadataResult{}
	decodeResult(t, callTool(t, s, "imagedata_metadata_replace", map[string]interface{}{
		"path":     imgPath,
		"metadata": map[string]interface{}{"source": "camera"},
	}), &md)
	if len(md.Keys) != 1 || md.Keys[0] != "source" {
		t.Errorf("keys after replace: got %v, want [source]", md.Keys)
	}
}

func TestHandleToolsCall_MetadataErrors(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 4, 4, color.Black)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"set without key", "imagedata_metadata_set", map[string]interface{}{"path": imgPath, "value": 1}},
		{"replace without metadata", "imagedata_metadata_replace", map[string]interface{}{"path": imgPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil || resp.Error.Code != -32000 {
				t.Errorf("Error: got %+v, want code -32000", resp.Error)
			}
		})
	}
}

func TestHandleToolsCall_Render(t *testing.T) {
	s := New(nil)
	imgPath := createGradientFile(t, 32, 8)
	outPath := filepath.Join(t.TempDir(), "render.png")

	var res RenderResult
	decodeResult(t, callTool(t, s, "imagedata_render", map[string]interface{}{
		"path":        imgPath,
		"colormap":    "hot",
		"output_path": outPath,
	}), &res)

	if res.Width != 32 || res.Height != 8 {
		t.Errorf("size: got %dx%d, want 32x8", res.Width, res.Height)
	}
	if res.Colormap != "hot" {
		t.Errorf("Colormap: got %s, want hot", res.Colormap)
	}
	if res.MimeType != "image/png" || res.ImageBase64 == "" {
		t.Errorf("image: got mime %s, %d bytes", res.MimeType, len(res.ImageBase64))
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output file not written: %v", err)
	}
}

func TestHandleToolsCall_RenderRegion(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 20, 10, color.RGBA{0, 0, 255, 255})

	var res RenderResult
	decodeResult(t, callTool(t, s, "imagedata_render", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]int{"x1": 2, "y1": 1, "x2": 12, "y2": 4},
	}), &res)
	if res.Width != 10 || res.Height != 3 {
		t.Errorf("size: got %dx%d, want 10x3", res.Width, res.Height)
	}

	resp := callTool(t, s, "imagedata_render", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 30, "y2": 4},
	})
	if resp.Error == nil {
		t.Error("expected an error for a region outside the image")
	}
}

func TestHandleToolsCall_RenderDefaults(t *testing.T) {
	s := New(nil)

	// Single-channel data fall back to the configured colormap.
	var res RenderResult
	decodeResult(t, callTool(t, s, "imagedata_render", map[string]interface{}{
		"path": createGradientFile(t, 8, 8),
	}), &res)
	if res.Colormap != s.cfg.Colormap {
		t.Errorf("Colormap: got %s, want %s", res.Colormap, s.cfg.Colormap)
	}

	// Colour data are drawn as-is and report no colormap.
	res = RenderResult{}
	decodeResult(t, callTool(t, s, "imagedata_render", map[string]interface{}{
		"path": createTestImageFile(t, 8, 8, color.RGBA{10, 20, 30, 255}),
	}), &res)
	if res.Colormap != "" {
		t.Errorf("Colormap: got %s, want empty", res.Colormap)
	}

	resp := callTool(t, s, "imagedata_render", map[string]interface{}{
		"path":     createGradientFile(t, 8, 8),
		"colormap": "rainbow",
	})
	if resp.Error == nil {
		t.Error("expected an error for an unknown colormap")
	}
}

func TestHandleToolsCall_Evict(t *testing.T) {
	s := New(nil)
	imgPath := createTestImageFile(t, 4, 4, color.White)

	callTool(t, s, "imagedata_metadata_set", map[string]interface{}{
		"path": imgPath, "key": "note", "value": true,
	})

	var ev EvictResult
	decodeResult(t, callTool(t, s, "imagedata_evict", map[string]interface{}{"path": imgPath}), &ev)
	if ev.Evicted != imgPath || ev.Cached != 0 {
		t.Errorf("Evict: got %+v", ev)
	}

	// Reloading starts from fresh metadata.
	var md MetadataResult
	decodeResult(t, callTool(t, s, "imagedata_metadata_get", map[string]interface{}{"path": imgPath}), &md)
	if _, ok := md.Metadata["note"]; ok {
		t.Error("metadata should reset after eviction")
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"non-existent file", "imagedata_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"missing path", "imagedata_bounds", map[string]interface{}{}},
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected an error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid json}`),
	})

	if resp.Error == nil {
		t.Fatal("expected an error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(nil)
	imgPath := createGradientFile(t, 10, 10)

	// Every listed tool is dispatched; only data_mask is expected to fail.
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			args := map[string]interface{}{"path": imgPath}
			switch tool.Name {
			case "imagedata_metadata_set":
				args["key"], args["value"] = "k", 1
			case "imagedata_metadata_delete":
				args["key"] = "k"
			case "imagedata_metadata_replace":
				args["metadata"] = map[string]interface{}{}
			case "imagedata_sample":
				args["points"] = []map[string]int{{"x": 1, "y": 2}}
			case "imagedata_region_stats":
				args["region"] = map[string]int{"x1": 0, "y1": 0, "x2": 5, "y2": 5}
			}
			raw, _ := json.Marshal(args)

			_, err := s.executeTool(tool.Name, raw)
			if tool.Name == "imagedata_data_mask" {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Errorf("executeTool(%s) error = %v", tool.Name, err)
			}
		})
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil)
	if _, err := s.executeTool("imagedata_load", json.RawMessage(`{bad`)); err == nil {
		t.Error("expected an error for invalid JSON arguments")
	}
}
