package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ImageResult carries an encoded image back to a caller.
type ImageResult struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG writes buf to w as a PNG.
func EncodePNG(w io.Writer, buf *PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if err := imaging.Encode(w, buf.NRGBA(), imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// EncodeResult encodes buf as base64 PNG.
func EncodeResult(buf *PixelBuffer) (*ImageResult, error) {
	var out bytes.Buffer
	if err := EncodePNG(&out, buf); err != nil {
		return nil, err
	}
	return &ImageResult{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}
