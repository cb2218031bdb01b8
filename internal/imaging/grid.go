package imaging

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GridStyle configures a measurement grid.
type GridStyle struct {
	// Spacing is the distance in pixels between adjacent lines. Lines are
	// drawn at 0, Spacing, 2*Spacing, ... in both directions.
	Spacing int

	// Line is the line color, blended directly onto the target buffer.
	Line Paint

	// Labels enables ruler labels along the top and left edges, placed on
	// every second line and reading round(coordinate/10).
	Labels bool

	// Label is the ruler text color. Ignored when Labels is false.
	Label color.NRGBA
}

var (
	// SimpleGrid is the dense grid of the plain scan view.
	SimpleGrid = GridStyle{
		Spacing: 20,
		Line:    Paint{R: 0, G: 255, B: 150, Alpha: 0.2},
	}

	// CompositeGrid is the ruler grid drawn over the final overlay.
	CompositeGrid = GridStyle{
		Spacing: 30,
		Line:    Paint{R: 200, G: 255, B: 255, Alpha: 0.15},
		Labels:  true,
		Label:   color.NRGBA{R: 200, G: 255, B: 255, A: 153},
	}
)

// DrawGrid draws style onto buf in place and returns buf.
func DrawGrid(buf *PixelBuffer, style GridStyle) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if style.Spacing <= 0 {
		return buf, nil
	}

	width, height := buf.Width, buf.Height
	r, g, b := float64(style.Line.R), float64(style.Line.G), float64(style.Line.B)

	// Vertical lines
	for x := 0; x < width; x += style.Spacing {
		for y := 0; y < height; y++ {
			blendAt(buf.Pix, (y*width+x)*4, r, g, b, style.Line.Alpha)
		}
	}

	// Horizontal lines
	for y := 0; y < height; y += style.Spacing {
		for x := 0; x < width; x++ {
			blendAt(buf.Pix, (y*width+x)*4, r, g, b, style.Line.Alpha)
		}
	}

	if style.Labels {
		drawRulerLabels(buf, style)
	}
	return buf, nil
}

// drawRulerLabels writes tick labels every second grid line: along the top
// edge for x positions and along the left edge for y positions.
func drawRulerLabels(buf *PixelBuffer, style GridStyle) {
	d := &font.Drawer{
		Dst:  buf.NRGBA(),
		Src:  image.NewUniform(style.Label),
		Face: basicfont.Face7x13,
	}
	ascent := basicfont.Face7x13.Ascent
	step := style.Spacing * 2

	for x := step; x < buf.Width; x += step {
		d.Dot = fixed.P(x+2, ascent)
		d.DrawString(rulerLabel(x))
	}
	for y := step; y < buf.Height; y += step {
		d.Dot = fixed.P(2, y+ascent+1)
		d.DrawString(rulerLabel(y))
	}
}

// rulerLabel formats a pixel coordinate as its tick value, round(coord/10).
func rulerLabel(coord int) string {
	return strconv.Itoa(int(math.Round(float64(coord) / 10)))
}
