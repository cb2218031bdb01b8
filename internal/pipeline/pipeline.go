// Package pipeline sequences the overlay stages for one classified scan.
//
// It is the composition root of the core: it imports imaging and detection,
// neither of which imports pipeline.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/ironsheep/scan-overlay-mcp/internal/detection"
	"github.com/ironsheep/scan-overlay-mcp/internal/imaging"
)

// ErrInvalidConfidence is returned when a confidence is NaN or outside [0, 1].
var ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")

// Input is one classified scan.
type Input struct {
	// Image is the decoded scan. Process does not modify it.
	Image *imaging.PixelBuffer

	// Positive is the binary classification result. Regions are only
	// detected for positive scans.
	Positive bool

	// Confidence is the classifier confidence in [0, 1].
	Confidence float64

	// ReferenceLength is the length of the encoded payload the image came
	// from and seeds region detection. Zero falls back to len(Image.Pix).
	ReferenceLength int
}

// Result is the review overlay for one scan. The caller owns every field.
type Result struct {
	Composite *imaging.PixelBuffer
	Regions   []detection.Region
}

// Pipeline turns classified scans into review overlays.
//
// A Pipeline is safe for concurrent use as long as its detector's Jitter is.
type Pipeline struct {
	detector *detection.Detector
}

// New returns a Pipeline using d for region detection. A nil d uses a
// detector backed by the process-wide random source.
func New(d *detection.Detector) *Pipeline {
	if d == nil {
		d = detection.NewDetector(nil)
	}
	return &Pipeline{detector: d}
}

// Process builds the overlay for in.
//
// Region detection and the tint, edge and composite chain share no data and
// run concurrently; both finish before Process returns. Either a complete
// Result is returned or an error, never a partial result.
//
// # Errors
//
//   - imaging.ErrInvalidBuffer if in.Image is nil or malformed
//   - ErrInvalidConfidence if in.Confidence is NaN or outside [0, 1]
func (p *Pipeline) Process(in Input) (*Result, error) {
	if err := in.Image.Validate(); err != nil {
		return nil, err
	}
	if err := checkConfidence(in.Confidence); err != nil {
		return nil, err
	}

	refLength := in.ReferenceLength
	if refLength <= 0 {
		refLength = len(in.Image.Pix)
	}

	regions := []detection.Region{}
	var wg sync.WaitGroup
	if in.Positive {
		wg.Add(1)
		go func() {
			defer wg.Done()
			regions = p.detector.Detect(refLength, in.Confidence)
		}()
	}

	composite, err := render(in.Image)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	return &Result{Composite: composite, Regions: regions}, nil
}

// render runs tint, edges and composite on a private copy of img.
func render(img *imaging.PixelBuffer) (*imaging.PixelBuffer, error) {
	tinted, err := imaging.ToneTransform(img.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to tint image: %w", err)
	}
	edges, err := imaging.ExtractEdges(tinted)
	if err != nil {
		return nil, fmt.Errorf("failed to extract edges: %w", err)
	}
	composite, err := imaging.Compose(tinted, edges)
	if err != nil {
		return nil, fmt.Errorf("failed to compose overlay: %w", err)
	}
	return composite, nil
}

// ScanView renders the plain tinted scan with the dense measurement grid and
// no edges or regions. img is not modified.
func ScanView(img *imaging.PixelBuffer) (*imaging.PixelBuffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	tinted, err := imaging.ToneTransform(img.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to tint image: %w", err)
	}
	return imaging.DrawGrid(tinted, imaging.SimpleGrid)
}

// Annotate returns a copy of composite with each region outlined in col,
// scaled from the reference canvas to the composite size.
func Annotate(composite *imaging.PixelBuffer, regions []detection.Region, col imaging.RGBA) (*imaging.PixelBuffer, error) {
	if err := composite.Validate(); err != nil {
		return nil, err
	}
	out := composite.Clone()
	if len(regions) == 0 {
		return out, nil
	}

	rects := RegionRects(regions, out.Width, out.Height)
	thickness := max(1, min(out.Width, out.Height)/detection.ReferenceSize*2)
	if err := imaging.DrawBoxes(out, rects, col, thickness); err != nil {
		return nil, err
	}
	return out, nil
}

// RegionRects scales regions from the reference canvas to a width x height
// image.
func RegionRects(regions []detection.Region, width, height int) []image.Rectangle {
	rects := make([]image.Rectangle, len(regions))
	for i, r := range regions {
		rects[i] = r.Rect(width, height)
	}
	return rects
}

func checkConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidConfidence, c)
	}
	return nil
}
