package imaging

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is an 8-bit straight-alpha color, the unit stored in a PixelBuffer.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Paint is a color with a fractional opacity, the CSS rgba(r,g,b,a) form used
// for washes and grid lines.
type Paint struct {
	R, G, B uint8
	Alpha   float64
}

// ParseHexColor parses "#RRGGBB" (or "#RGB") into a Paint with the given
// opacity.
func ParseHexColor(hex string, alpha float64) (Paint, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Paint{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Paint{R: r, G: g, B: b, Alpha: alpha}, nil
}

// store converts a channel value to a byte the way a canvas image-data array
// does: clamp to 0..255, round half to even.
func store(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// blendAt composites (r, g, b) with opacity a over the pixel at byte offset i.
//
// Source over destination: out = src*a + dst*(1-a). For translucent
// destinations the standard straight-alpha form is used, which reduces to the
// former when the destination is opaque.
func blendAt(pix []uint8, i int, r, g, b, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	da := float64(pix[i+3]) / 255
	outA := a + da*(1-a)
	if outA == 0 {
		return
	}
	k := da * (1 - a)
	pix[i] = store((r*a + float64(pix[i])*k) / outA)
	pix[i+1] = store((g*a + float64(pix[i+1])*k) / outA)
	pix[i+2] = store((b*a + float64(pix[i+2])*k) / outA)
	pix[i+3] = store(outA * 255)
}

// Wash blends a uniform translucent color over every pixel of buf, in place.
func Wash(buf *PixelBuffer, p Paint) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	r, g, b := float64(p.R), float64(p.G), float64(p.B)
	stride := buf.Width * 4
	parallel.Line(buf.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += 4 {
			blendAt(buf.Pix, i, r, g, b, p.Alpha)
		}
	})
	return buf, nil
}

// OverLayer blends layer over dst pixel by pixel, scaling each layer pixel's
// own alpha by opacity. dst is modified in place.
func OverLayer(dst, layer *PixelBuffer, opacity float64) error {
	if err := dst.Validate(); err != nil {
		return err
	}
	if err := layer.Validate(); err != nil {
		return err
	}
	if !dst.SameSize(layer) {
		return &BufferError{
			Width:  layer.Width,
			Height: layer.Height,
			Len:    len(layer.Pix),
			Reason: fmt.Sprintf("layer size does not match %dx%d destination", dst.Width, dst.Height),
		}
	}

	stride := dst.Width * 4
	parallel.Line(dst.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += 4 {
			la := layer.Pix[i+3]
			if la == 0 {
				continue
			}
			a := float64(la) / 255 * opacity
			blendAt(dst.Pix, i, float64(layer.Pix[i]), float64(layer.Pix[i+1]), float64(layer.Pix[i+2]), a)
		}
	})
	return nil
}
