package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex  string   `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGBA RGBA     `json:"rgba"` // 8-bit components with alpha
	HSL  HSLColor `json:"hsl"`  // HSL representation
}

// ColorFrequency represents a quantized color and its share of a region.
type ColorFrequency struct {
	Hex        string  `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64 `json:"percentage"` // Percentage of pixels with this color (0-100)
}

// RegionColors summarises the pixels inside one rectangle of a scan.
type RegionColors struct {
	// Mean is the average color of the region, alpha included.
	Mean ColorResult `json:"mean"`

	// Dominant lists the most frequent quantized colors, most common first.
	Dominant []ColorFrequency `json:"dominant"`

	// Pixels is the number of pixels sampled after clipping to the buffer.
	Pixels int `json:"pixels"`
}

// NewColorResult describes c in hex, RGBA and HSL form.
func NewColorResult(c RGBA) ColorResult {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, l := cf.Hsl()
	if s == 0 {
		h = 0
	}
	return ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGBA: c,
		HSL:  HSLColor{H: int(h + 0.5), S: int(s*100 + 0.5), L: int(l*100 + 0.5)},
	}
}

// SampleRegionColors reports the mean and the count most common colors of
// buf inside rect.
//
// rect is clipped to the buffer; an empty intersection is an error.
//
// # Color Quantization
//
// Similar colors are grouped by dividing each component by 16 and rounding
// down, so #F0F0F0 and #FAFAFA both count as #F0F0F0. Ties in frequency are
// broken by hex value to keep the output stable.
func SampleRegionColors(buf *PixelBuffer, rect image.Rectangle, count int) (*RegionColors, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	clipped := rect.Canon().Intersect(image.Rect(0, 0, buf.Width, buf.Height))
	if clipped.Empty() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, buf.Width, buf.Height)
	}

	counts := make(map[RGBA]int)
	var sumR, sumG, sumB, sumA int
	total := 0

	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			p := buf.At(x, y)
			sumR += int(p.R)
			sumG += int(p.G)
			sumB += int(p.B)
			sumA += int(p.A)
			counts[RGBA{R: p.R / 16 * 16, G: p.G / 16 * 16, B: p.B / 16 * 16}]++
			total++
		}
	}

	dominant := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		dominant = append(dominant, ColorFrequency{
			Hex:        fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
			Percentage: float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(dominant, func(i, j int) bool {
		if dominant[i].Percentage != dominant[j].Percentage {
			return dominant[i].Percentage > dominant[j].Percentage
		}
		return dominant[i].Hex < dominant[j].Hex
	})
	if count > 0 && len(dominant) > count {
		dominant = dominant[:count]
	}

	mean := RGBA{
		R: uint8((sumR + total/2) / total),
		G: uint8((sumG + total/2) / total),
		B: uint8((sumB + total/2) / total),
		A: uint8((sumA + total/2) / total),
	}

	return &RegionColors{
		Mean:     NewColorResult(mean),
		Dominant: dominant,
		Pixels:   total,
	}, nil
}
