package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidBuffer is returned (wrapped in a *BufferError) when a PixelBuffer
// has non-positive dimensions or a pixel slice whose length does not match
// Width*Height*4.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// BufferError describes why a PixelBuffer was rejected.
//
// It matches ErrInvalidBuffer with errors.Is.
type BufferError struct {
	Width  int
	Height int
	Len    int
	Reason string
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("invalid pixel buffer %dx%d (len %d): %s", e.Width, e.Height, e.Len, e.Reason)
}

func (e *BufferError) Unwrap() error {
	return ErrInvalidBuffer
}

// PixelBuffer is an in-memory RGBA raster.
//
// Pix holds straight (non-premultiplied) RGBA quadruplets in row-major order,
// so the pixel at (x, y) starts at Pix[(y*Width+x)*4]. A valid buffer always
// satisfies len(Pix) == Width*Height*4 with Width and Height greater than zero.
//
// A PixelBuffer has a single owner at a time. Stages documented as working
// "in place" mutate the buffer they are given and return the same pointer;
// the others allocate a new buffer.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a fully transparent buffer of the given size.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &BufferError{Width: width, Height: height, Reason: "dimensions must be positive"}
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// Validate reports whether b satisfies the PixelBuffer invariants.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return &BufferError{Reason: "nil buffer"}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return &BufferError{Width: b.Width, Height: b.Height, Len: len(b.Pix), Reason: "dimensions must be positive"}
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return &BufferError{
			Width:  b.Width,
			Height: b.Height,
			Len:    len(b.Pix),
			Reason: fmt.Sprintf("expected %d bytes", b.Width*b.Height*4),
		}
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// SameSize reports whether b and o have identical dimensions.
func (b *PixelBuffer) SameSize(o *PixelBuffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// At returns the RGBA value at (x, y). The caller guarantees the coordinates
// are in range.
func (b *PixelBuffer) At(x, y int) RGBA {
	i := (y*b.Width + x) * 4
	return RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// Set stores c at (x, y). The caller guarantees the coordinates are in range.
func (b *PixelBuffer) Set(x, y int, c RGBA) {
	i := (y*b.Width + x) * 4
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// NRGBA returns an *image.NRGBA that shares b's pixel memory.
//
// Drawing through the returned image mutates b, which is how the ruler labels
// and region outlines are rendered with the standard image/draw machinery.
func (b *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage copies any image.Image into a new PixelBuffer with its origin
// moved to (0, 0).
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil {
		return nil, &BufferError{Reason: "nil image"}
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, &BufferError{Width: bounds.Dx(), Height: bounds.Dy(), Reason: "empty image"}
	}

	nrgba := imaging.Clone(img)
	buf := &PixelBuffer{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pix:    nrgba.Pix,
	}
	if nrgba.Stride != buf.Width*4 {
		// Compact rows if the clone came back padded.
		buf.Pix = make([]uint8, buf.Width*buf.Height*4)
		for y := 0; y < buf.Height; y++ {
			copy(buf.Pix[y*buf.Width*4:(y+1)*buf.Width*4], nrgba.Pix[y*nrgba.Stride:])
		}
	}
	return buf, nil
}
