package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// ScanWash is the translucent green laid over the recolored scan.
var ScanWash = Paint{R: 0, G: 255, B: 100, Alpha: 0.1}

// Channel weights applied to the pixel average by ToneTransform.
const (
	toneRed   = 0.7
	toneGreen = 1.2
	toneBlue  = 0.7
)

// ToneTransform renders buf as a tinted, low-saturation scan, in place.
//
// Each pixel is desaturated to avg = (R+G+B)/3 and recolored as
// (avg*0.7, avg*1.2, avg*0.7), each channel capped at 255, with alpha left
// unchanged. ScanWash is then blended over the whole buffer.
//
// The returned pointer is buf itself.
func ToneTransform(buf *PixelBuffer) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	stride := buf.Width * 4
	pix := buf.Pix
	parallel.Line(buf.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += 4 {
			avg := (float64(pix[i]) + float64(pix[i+1]) + float64(pix[i+2])) / 3
			pix[i] = store(min(255, avg*toneRed))
			pix[i+1] = store(min(255, avg*toneGreen))
			pix[i+2] = store(min(255, avg*toneBlue))
		}
	})

	return Wash(buf, ScanWash)
}
