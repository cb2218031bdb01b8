package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRect cuts rect out of buf and optionally scales it, for zooming into a
// flagged region during review.
//
// rect is clipped to the buffer first, because scaled regions may run past
// the right or bottom edge. A scale of 0 or 1 leaves the crop at its native
// size.
func CropRect(buf *PixelBuffer, rect image.Rectangle, scale float64) (*ImageResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %v: must not be negative", scale)
	}

	bounds := image.Rect(0, 0, buf.Width, buf.Height)
	clipped := rect.Canon().Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(buf.NRGBA(), clipped)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	out, err := FromImage(cropped)
	if err != nil {
		return nil, err
	}
	return EncodeResult(out)
}
