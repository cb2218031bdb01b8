package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/scan-overlay-mcp/internal/detection"
	"github.com/ironsheep/scan-overlay-mcp/internal/imaging"
	"github.com/ironsheep/scan-overlay-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "overlay_process", "image_load").
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

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	s.debugf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Overlay Operations
	case "overlay_process":
		return s.handleOverlayProcess(args)
	case "overlay_scan_view":
		return s.handleOverlayScanView(args)
	case "overlay_edges":
		return s.handleOverlayEdges(args)

	// Region Operations
	case "overlay_detect_regions":
		return s.handleOverlayDetectRegions(args)
	case "overlay_zoom_region":
		return s.handleOverlayZoomRegion(args)

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

// imageSource names an image either by file path or by inline payload.
type imageSource struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

var errNoImage = errors.New("either path or image_base64 is required")

// load resolves an imageSource. File images go through the cache.
func (s *Server) load(src imageSource) (*imaging.LoadedImage, error) {
	switch {
	case src.Path != "":
		return s.cache.Load(src.Path)
	case src.ImageBase64 != "":
		return imaging.DecodeBase64(src.ImageBase64)
	default:
		return nil, errNoImage
	}
}

// === Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}
	return img.Info(), nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}
	return img.Dimensions(), nil
}

// === Overlay Handlers ===

// OverlayResult is the tool result for overlay_process.
type OverlayResult struct {
	Positive    bool                 `json:"positive"`
	Confidence  float64              `json:"confidence"`
	RegionCount int                  `json:"region_count"`
	Regions     []detection.Region   `json:"regions"`
	Annotated   bool                 `json:"annotated"`
	Image       *imaging.ImageResult `json:"image"`
}

type overlayProcessArgs struct {
	imageSource
	Positive   bool    `json:"positive"`
	Confidence float64 `json:"confidence"`
	Annotate   *bool   `json:"annotate,omitempty"`
}

func (s *Server) handleOverlayProcess(args json.RawMessage) (interface{}, error) {
	var a overlayProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Process(pipeline.Input{
		Image:           img.Buffer,
		Positive:        a.Positive,
		Confidence:      a.Confidence,
		ReferenceLength: img.EncodedLen,
	})
	if err != nil {
		return nil, err
	}

	annotate := s.cfg.Annotate
	if a.Annotate != nil {
		annotate = *a.Annotate
	}
	out := res.Composite
	if annotate && len(res.Regions) > 0 {
		out, err = pipeline.Annotate(res.Composite, res.Regions, s.cfg.BoxColor)
		if err != nil {
			return nil, err
		}
	}

	encoded, err := imaging.EncodeResult(out)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Positive:    a.Positive,
		Confidence:  a.Confidence,
		RegionCount: len(res.Regions),
		Regions:     res.Regions,
		Annotated:   annotate && len(res.Regions) > 0,
		Image:       encoded,
	}, nil
}

func (s *Server) handleOverlayScanView(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}
	view, err := pipeline.ScanView(img.Buffer)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeResult(view)
}

type overlayEdgesArgs struct {
	imageSource
	Raw bool `json:"raw"`
}

func (s *Server) handleOverlayEdges(args json.RawMessage) (interface{}, error) {
	var a overlayEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	src := img.Buffer
	if !a.Raw {
		if src, err = imaging.ToneTransform(src.Clone()); err != nil {
			return nil, err
		}
	}
	edges, err := imaging.ExtractEdges(src)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeResult(edges)
}

// === Region Handlers ===

// RegionsResult is the tool result for overlay_detect_regions.
type RegionsResult struct {
	ReferenceLength int                `json:"reference_length"`
	Seed            float64            `json:"seed"`
	Count           int                `json:"count"`
	Regions         []detection.Region `json:"regions"`
}

type overlayDetectRegionsArgs struct {
	imageSource
	ReferenceLength int     `json:"reference_length"`
	Confidence      float64 `json:"confidence"`
}

func (s *Server) handleOverlayDetectRegions(args json.RawMessage) (interface{}, error) {
	var a overlayDetectRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return nil, fmt.Errorf("%w: got %v", pipeline.ErrInvalidConfidence, a.Confidence)
	}

	refLength := a.ReferenceLength
	if refLength <= 0 {
		img, err := s.load(a.imageSource)
		if err != nil {
			return nil, fmt.Errorf("reference_length or an image is required: %w", err)
		}
		refLength = img.EncodedLen
	}

	regions := s.detector.Detect(refLength, a.Confidence)
	return &RegionsResult{
		ReferenceLength: refLength,
		Seed:            detection.Seed(refLength, a.Confidence),
		Count:           len(regions),
		Regions:         regions,
	}, nil
}

// ZoomResult is the tool result for overlay_zoom_region.
type ZoomResult struct {
	Region detection.Region      `json:"region"`
	Image  *imaging.ImageResult  `json:"image"`
	Colors *imaging.RegionColors `json:"colors"` // sampled from the source scan
}

type overlayZoomRegionArgs struct {
	imageSource
	Confidence float64 `json:"confidence"`
	RegionID   int     `json:"region_id"`
	Scale      float64 `json:"scale"`
}

func (s *Server) handleOverlayZoomRegion(args json.RawMessage) (interface{}, error) {
	var a overlayZoomRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 2.0
	}
	if a.RegionID == 0 {
		a.RegionID = 1
	}
	img, err := s.load(a.imageSource)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Process(pipeline.Input{
		Image:           img.Buffer,
		Positive:        true,
		Confidence:      a.Confidence,
		ReferenceLength: img.EncodedLen,
	})
	if err != nil {
		return nil, err
	}

	for _, r := range res.Regions {
		if r.ID != a.RegionID {
			continue
		}
		rect := r.Rect(res.Composite.Width, res.Composite.Height)
		crop, err := imaging.CropRect(res.Composite, rect, a.Scale)
		if err != nil {
			return nil, err
		}
		colors, err := imaging.SampleRegionColors(img.Buffer, rect, 5)
		if err != nil {
			return nil, err
		}
		return &ZoomResult{Region: r, Image: crop, Colors: colors}, nil
	}
	return nil, fmt.Errorf("region %d not found (%d regions detected)", a.RegionID, len(res.Regions))
}
