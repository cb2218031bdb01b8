package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// EdgeThreshold is the gradient magnitude a pixel must exceed to be marked
// as an edge.
const EdgeThreshold = 30.0

// EdgeHighlight is the pale cyan written for edge pixels. Everything else in
// an edge layer is fully transparent.
var EdgeHighlight = RGBA{R: 220, G: 240, B: 255, A: 180}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// ExtractEdges computes a Sobel edge mask of buf as a new highlight layer.
//
// Parameters:
//   - buf: Source buffer, typically the output of ToneTransform. It is not
//     modified.
//
// Returns:
//   - *PixelBuffer: A layer of the same size where pixels whose gradient
//     magnitude exceeds EdgeThreshold are EdgeHighlight and all others are
//     (0,0,0,0).
//   - error: Non-nil if buf is not a valid PixelBuffer.
//
// # Algorithm
//
//  1. Grayscale: g = (R+G+B)/3, unweighted.
//  2. Gradients from the 3x3 Sobel kernels, neighbours clamped to the buffer:
//     gx = -TL -2L -BL +TR +2R +BR
//     gy = -TL -2T -TR +BL +2B +BR
//  3. magnitude = sqrt(gx² + gy²), hard-thresholded at EdgeThreshold.
//
// Only interior pixels are evaluated. The one-pixel border is always left
// transparent, so buffers narrower or shorter than 3 pixels produce an empty
// layer.
func ExtractEdges(buf *PixelBuffer) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	width, height := buf.Width, buf.Height
	out, err := NewPixelBuffer(width, height)
	if err != nil {
		return nil, err
	}

	gray := make([]float64, width*height)
	for i := range gray {
		p := i * 4
		gray[i] = (float64(buf.Pix[p]) + float64(buf.Pix[p+1]) + float64(buf.Pix[p+2])) / 3
	}

	if width < 3 || height < 3 {
		return out, nil
	}

	// Bands cover rows 1..height-2; parallel.Line hands out [start, end) over
	// the interior row count.
	parallel.Line(height-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < width-1; x++ {
				var gx, gy float64
				for ky := -1; ky <= 1; ky++ {
					py := clamp(y+ky, 0, height-1)
					for kx := -1; kx <= 1; kx++ {
						px := clamp(x+kx, 0, width-1)
						g := gray[py*width+px]
						gx += g * sobelX[ky+1][kx+1]
						gy += g * sobelY[ky+1][kx+1]
					}
				}
				if math.Sqrt(gx*gx+gy*gy) > EdgeThreshold {
					out.Set(x, y, EdgeHighlight)
				}
			}
		}
	})

	return out, nil
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
